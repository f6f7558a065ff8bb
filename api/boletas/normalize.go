package boletas

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column labels as they appear in the spreadsheet, for error reporting.
const (
	colNumeroBoleta = "B"
	colEntidad      = "C"
	colFecha        = "D"
	colPeriodo      = "E"
	colHospital     = "F"
	colEdad         = "I"
	colCirujano     = "J"
	colFacturado    = "K"
	colCobrado      = "L"
	colDebitado     = "M"
)

// Fixed 0-indexed column layout of the billing export.
const (
	idxNumeroBoleta = 1
	idxEntidad      = 2
	idxFecha        = 3
	idxPeriodo      = 4
	idxHospital     = 5
	idxEdad         = 8
	idxCirujano     = 9
	idxFacturado    = 10
	idxCobrado      = 11
	idxDebitado     = 12
)

// The export repeats its header band mid-file; any row containing one of
// these phrases (after normalization) is skipped.
var headerPhrases = []string{
	"Nro / Nombre del Socio",
	"Boleta",
	"Nro / Nombre de Mutual",
	"Fec.Boleta",
	"Periodo",
	"Nro / Nombre de Hospital",
	"Nombre de Paciente",
	"NumAfiliado",
	"Edad",
	"Cirujano",
	"Facturado",
	"Cobrado",
	"Debitado",
}

var normalizedHeaderPhrases = func() []string {
	out := make([]string, 0, len(headerPhrases))
	for _, h := range headerPhrases {
		if n := normalizeHeaderText(h); n != "" {
			out = append(out, n)
		}
	}
	return out
}()

// normalizeHeaderText lowers the text and strips whitespace and the
// punctuation the header bands vary in, so "Fec. Boleta" and "Fec.Boleta"
// compare equal.
func normalizeHeaderText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		case r == '.' || r == '/' || r == '-':
		default:
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

// rowIsHeader reports whether the concatenated, normalized row text contains
// any known header phrase.
func rowIsHeader(cells []string) bool {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(normalizeHeaderText(strings.TrimSpace(c)))
	}
	row := b.String()
	for _, h := range normalizedHeaderPhrases {
		if strings.Contains(row, h) {
			return true
		}
	}
	return false
}

func rowIsEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cellAt tolerates short rows: excelize trims trailing empty cells.
func cellAt(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// parseFecha parses a service date of the form dd/MM/yyyy, tolerating a
// trailing time component after the year. The input locale is es-AR, so the
// first component is always the day. An impossible calendar date is fatal
// for the whole file: a wrong date would corrupt period bucketing silently.
func parseFecha(raw string) (time.Time, error) {
	partes := strings.Split(strings.TrimSpace(raw), "/")
	if len(partes) < 3 {
		return time.Time{}, fmt.Errorf("la fecha '%s' no es válida", raw)
	}

	anioTexto := partes[2]
	if len(anioTexto) > 4 {
		anioTexto = anioTexto[:4]
	}

	dia, err1 := strconv.Atoi(strings.TrimSpace(partes[0]))
	mes, err2 := strconv.Atoi(strings.TrimSpace(partes[1]))
	anio, err3 := strconv.Atoi(strings.TrimSpace(anioTexto))
	if err1 != nil || err2 != nil || err3 != nil || mes < 1 || mes > 12 {
		return time.Time{}, fmt.Errorf("la fecha '%s' no es válida", raw)
	}

	fecha := time.Date(anio, time.Month(mes), dia, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components (32/01 becomes 01/02);
	// reject anything that did not round-trip.
	if fecha.Year() != anio || fecha.Month() != time.Month(mes) || fecha.Day() != dia {
		return time.Time{}, fmt.Errorf("la fecha '%d/%d/%d' no es válida", dia, mes, anio)
	}
	return fecha, nil
}

var periodoLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
	"01/2006",
	"1/2006",
	"2006-01",
}

// parsePeriodo extracts (year, month) from the period cell. The cell is a
// critical field: an unparseable period aborts the file.
func parsePeriodo(raw string) (int, int, error) {
	s := strings.TrimSpace(raw)
	// Drop any time component the export may carry.
	if i := strings.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	for _, layout := range periodoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), int(t.Month()), nil
		}
	}
	return 0, 0, fmt.Errorf("el periodo '%s' no es válido", raw)
}

// PeriodoLabel formats a billing period the way every aggregate keys it.
func PeriodoLabel(anio, mes int) string {
	return fmt.Sprintf("%d - %02d", anio, mes)
}

// NormalizeRow turns one data row into a Boleta. It returns ok=false for
// rows that must be skipped (header bands, blank rows, rows missing a
// critical field) and a non-nil error for fatal format problems.
func NormalizeRow(cells []string, fila int, errs *CeldasProblematicas) (Boleta, bool, error) {
	if rowIsHeader(cells) {
		return Boleta{}, false, nil
	}
	if rowIsEmpty(cells) {
		return Boleta{}, false, nil
	}

	numeroRaw := cellAt(cells, idxNumeroBoleta)
	fechaRaw := cellAt(cells, idxFecha)
	periodoRaw := cellAt(cells, idxPeriodo)
	// Without ticket, date and period the record can be neither deduped nor
	// bucketed, so the row is useless.
	if numeroRaw == "" || fechaRaw == "" || periodoRaw == "" {
		return Boleta{}, false, nil
	}

	var b Boleta
	b.NumeroBoleta = ParseNumeroBoleta(numeroRaw, fila, colNumeroBoleta, errs)

	entidad, err := ResolverEntidad(cellAt(cells, idxEntidad))
	if err != nil {
		return Boleta{}, false, err
	}
	b.EntidadCodigo = entidad.Codigo
	b.EntidadNombre = entidad.Nombre

	b.Periodo = periodoRaw
	anio, mes, err := parsePeriodo(periodoRaw)
	if err != nil {
		return Boleta{}, false, err
	}
	b.PeriodoAnio = anio
	b.PeriodoMes = mes

	b.Fecha, err = parseFecha(fechaRaw)
	if err != nil {
		return Boleta{}, false, err
	}

	b.Hospital = cellAt(cells, idxHospital)
	b.Cirujano = cellAt(cells, idxCirujano)
	b.Edad = ParseEntero(cellAt(cells, idxEdad), fila, colEdad, errs)
	b.Facturado = ParseImporte(cellAt(cells, idxFacturado), fila, colFacturado, errs)
	b.Cobrado = ParseImporte(cellAt(cells, idxCobrado), fila, colCobrado, errs)
	b.Debitado = ParseImporte(cellAt(cells, idxDebitado), fila, colDebitado, errs)
	b.Saldo = b.Facturado.Sub(b.Cobrado.Add(b.Debitado))

	return b, true, nil
}
