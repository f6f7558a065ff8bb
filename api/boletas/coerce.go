package boletas

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CeldasProblematicas accumulates per-cell soft errors across a whole file
// so the caller can report every bad cell at once instead of failing on the
// first one. Entries look like "K12 (tiene formato Fecha, debería ser Número)".
type CeldasProblematicas struct {
	Celdas []string
}

func (c *CeldasProblematicas) add(col string, fila int, motivo string) {
	c.Celdas = append(c.Celdas, fmt.Sprintf("%s%d (%s)", col, fila, motivo))
}

func (c *CeldasProblematicas) Any() bool {
	return len(c.Celdas) > 0
}

// ExcelFormatError reports every malformed cell found during a full-file
// scan. It is raised only after the whole file has been read.
type ExcelFormatError struct {
	Celdas []string
}

func (e *ExcelFormatError) Error() string {
	return fmt.Sprintf("el archivo Excel tiene %d celdas con formato incorrecto: %s",
		len(e.Celdas), strings.Join(e.Celdas, "; "))
}

// looksLikeDate reports whether a cell value that failed numeric parsing is
// probably a date (slashes or Spanish AM/PM markers).
func looksLikeDate(s string) bool {
	return strings.Contains(s, "/") ||
		strings.Contains(s, "a. m.") ||
		strings.Contains(s, "p. m.")
}

// ParseImporte coerces a raw cell into a money amount. Decimal commas are
// normalized to dots before parsing. On failure the cell is recorded as
// problematic and the amount defaults to zero so the scan can continue.
func ParseImporte(raw string, fila int, col string, errs *CeldasProblematicas) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}

	s = strings.ReplaceAll(s, ",", ".")
	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}

	if looksLikeDate(s) {
		errs.add(col, fila, "tiene formato Fecha, debería ser Número")
		return decimal.Zero
	}

	errs.add(col, fila, fmt.Sprintf("valor '%s' no válido", s))
	return decimal.Zero
}

// ParseEntero coerces a raw cell into an integer, truncating decimal values
// (comma or dot separated). Failures are soft: recorded and defaulted to 0.
func ParseEntero(raw string, fila int, col string, errs *CeldasProblematicas) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n
	}

	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return int(f)
	}

	errs.add(col, fila, fmt.Sprintf("valor '%s' no válido para edad", s))
	return 0
}

// ParseNumeroBoleta coerces the ticket-number cell. Same soft-error
// discipline as ParseEntero but wide enough for ticket identifiers.
func ParseNumeroBoleta(raw string, fila int, col string, errs *CeldasProblematicas) int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}

	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return int64(f)
	}

	errs.add(col, fila, fmt.Sprintf("valor '%s' no válido", s))
	return 0
}
