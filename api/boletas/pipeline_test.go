package boletas

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"Facturacion/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildXLSX builds a minimal export in memory: a three-row title band, one
// header band, then the given data rows.
func buildXLSX(t *testing.T, dataRows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"LISTADO DE FACTURACION"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Dr. Ejemplo"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{""}))

	for i, row := range dataRows {
		cell := fmt.Sprintf("A%d", i+4)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func filaExcel(numero, entidad, fecha, periodo, facturado, cobrado, debitado string) []interface{} {
	return []interface{}{
		"", numero, entidad, fecha, periodo,
		"HOSPITAL CENTRAL", "", "", "50", "GOMEZ ANA",
		facturado, cobrado, debitado,
	}
}

type recordingSink struct {
	sent []int
}

func (r *recordingSink) Send(pct int) { r.sent = append(r.sent, pct) }

func TestIngestArchivoValido(t *testing.T) {
	data := buildXLSX(t, [][]interface{}{
		filaExcel("1001", "0096/OBRA SOCIAL UNO", "10/03/2024", "03/2024", "1000", "0", "0"),
		filaExcel("1002", "0500/IOMA", "11/03/2024", "03/2024", "2000,50", "2000,50", "0"),
	})

	sink := &recordingSink{}
	listado, err := NewPipeline(sink).Ingest(context.Background(), data, "marzo.xlsx")
	require.NoError(t, err)
	require.Len(t, listado, 2)

	assert.Equal(t, int64(1001), listado[0].NumeroBoleta)
	assert.Equal(t, 96, listado[0].EntidadCodigo)
	assert.Equal(t, int64(1002), listado[1].NumeroBoleta)
	assert.Equal(t, 500, listado[1].EntidadCodigo)

	// The final 100 is always delivered.
	require.NotEmpty(t, sink.sent)
	assert.Equal(t, 100, sink.sent[len(sink.sent)-1])
}

func TestIngestAcumulaCeldasProblematicas(t *testing.T) {
	data := buildXLSX(t, [][]interface{}{
		filaExcel("1001", "0096/OBRA SOCIAL UNO", "10/03/2024", "03/2024", "no-numero", "0", "0"),
		filaExcel("1002", "0500/IOMA", "11/03/2024", "03/2024", "1000", "otra-basura", "0"),
	})

	_, err := NewPipeline(nil).Ingest(context.Background(), data, "marzo.xlsx")
	require.Error(t, err)

	var formatErr *ExcelFormatError
	require.ErrorAs(t, err, &formatErr)
	require.Len(t, formatErr.Celdas, 2)
	assert.Equal(t, "K4 (valor 'no-numero' no válido)", formatErr.Celdas[0])
	assert.Equal(t, "L5 (valor 'otra-basura' no válido)", formatErr.Celdas[1])
}

func TestIngestErrorFatalEnviaCien(t *testing.T) {
	data := buildXLSX(t, [][]interface{}{
		filaExcel("1001", "entidad-sin-barra", "10/03/2024", "03/2024", "1000", "0", "0"),
	})

	sink := &recordingSink{}
	_, err := NewPipeline(sink).Ingest(context.Background(), data, "marzo.xlsx")
	require.Error(t, err)
	require.NotEmpty(t, sink.sent)
	assert.Equal(t, 100, sink.sent[len(sink.sent)-1])
}

func TestIngestSaltaBandasRepetidas(t *testing.T) {
	data := buildXLSX(t, [][]interface{}{
		filaExcel("1001", "0096/OBRA SOCIAL UNO", "10/03/2024", "03/2024", "1000", "0", "0"),
		{"", "Boleta", "Nro / Nombre de Mutual", "Fec.Boleta", "Periodo"},
		filaExcel("1002", "0500/IOMA", "11/03/2024", "03/2024", "500", "0", "0"),
	})

	listado, err := NewPipeline(progress.Discard).Ingest(context.Background(), data, "marzo.xlsx")
	require.NoError(t, err)
	require.Len(t, listado, 2)
}

func TestIngestArchivoIlegible(t *testing.T) {
	_, err := NewPipeline(nil).Ingest(context.Background(), []byte("no es un xlsx"), "roto.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no se pudo leer el archivo")
}
