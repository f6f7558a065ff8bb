package boletas

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filaCompleta() []string {
	return []string{
		"", "123456", "0096/OBRA SOCIAL UNO (CENTRAL)", "15/03/2024", "03/2024",
		"HOSPITAL ITALIANO", "", "", "45", "PEREZ JUAN",
		"1500,50", "0", "0",
	}
}

func TestNormalizeRowCompleta(t *testing.T) {
	var errs CeldasProblematicas
	b, ok, err := NormalizeRow(filaCompleta(), 4, &errs)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, errs.Any())

	assert.Equal(t, int64(123456), b.NumeroBoleta)
	assert.Equal(t, 96, b.EntidadCodigo)
	assert.Equal(t, "OBRA SOCIAL UNO", b.EntidadNombre)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), b.Fecha)
	assert.Equal(t, 2024, b.PeriodoAnio)
	assert.Equal(t, 3, b.PeriodoMes)
	assert.Equal(t, "HOSPITAL ITALIANO", b.Hospital)
	assert.Equal(t, "PEREZ JUAN", b.Cirujano)
	assert.Equal(t, 45, b.Edad)
	assert.True(t, b.Facturado.Equal(decimal.RequireFromString("1500.50")))
	assert.True(t, b.Saldo.Equal(decimal.RequireFromString("1500.50")))
}

func TestNormalizeRowSaldoRecalculado(t *testing.T) {
	fila := filaCompleta()
	fila[idxFacturado] = "1000"
	fila[idxCobrado] = "600"
	fila[idxDebitado] = "150"

	var errs CeldasProblematicas
	b, ok, err := NormalizeRow(fila, 4, &errs)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, b.Saldo.Equal(decimal.NewFromInt(250)))
}

func TestNormalizeRowBandaEncabezado(t *testing.T) {
	fila := []string{"", "Boleta", "Nro / Nombre de Mutual", "Fec.Boleta", "Periodo"}
	var errs CeldasProblematicas
	_, ok, err := NormalizeRow(fila, 10, &errs)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNormalizeRowVacia(t *testing.T) {
	var errs CeldasProblematicas
	_, ok, err := NormalizeRow([]string{"", "  ", ""}, 10, &errs)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNormalizeRowSinCamposCriticos(t *testing.T) {
	fila := filaCompleta()
	fila[idxPeriodo] = ""
	var errs CeldasProblematicas
	_, ok, err := NormalizeRow(fila, 10, &errs)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNormalizeRowFechaInvalidaEsFatal(t *testing.T) {
	fila := filaCompleta()
	fila[idxFecha] = "32/01/2024"
	var errs CeldasProblematicas
	_, _, err := NormalizeRow(fila, 10, &errs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no es válida")
}

func TestNormalizeRowPeriodoInvalidoEsFatal(t *testing.T) {
	fila := filaCompleta()
	fila[idxPeriodo] = "trimestre 1"
	var errs CeldasProblematicas
	_, _, err := NormalizeRow(fila, 10, &errs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "el periodo 'trimestre 1' no es válido")
}

func TestNormalizeRowImporteMaloEsSuave(t *testing.T) {
	fila := filaCompleta()
	fila[idxCobrado] = "15/03/2024 12:00 a. m."

	var errs CeldasProblematicas
	b, ok, err := NormalizeRow(fila, 12, &errs)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, b.Cobrado.IsZero())
	require.Len(t, errs.Celdas, 1)
	assert.Equal(t, "L12 (tiene formato Fecha, debería ser Número)", errs.Celdas[0])
}

func TestParseFechaMesFueraDeRango(t *testing.T) {
	for _, raw := range []string{"10/13/2024", "10/00/2024"} {
		_, err := parseFecha(raw)
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "no es válida")
	}
}

func TestParseFechaConHora(t *testing.T) {
	fecha, err := parseFecha("05/07/2023 10:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.July, 5, 0, 0, 0, 0, time.UTC), fecha)
}

func TestParsePeriodoFormatos(t *testing.T) {
	casos := map[string][2]int{
		"01/03/2024":       {2024, 3},
		"1/3/2024":         {2024, 3},
		"2024-03-01":       {2024, 3},
		"03/2024":          {2024, 3},
		"2024-03":          {2024, 3},
		"01/03/2024 00:00": {2024, 3},
	}
	for raw, esperado := range casos {
		anio, mes, err := parsePeriodo(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, esperado[0], anio, raw)
		assert.Equal(t, esperado[1], mes, raw)
	}
}

func TestPeriodoLabel(t *testing.T) {
	assert.Equal(t, "2024 - 03", PeriodoLabel(2024, 3))
	assert.Equal(t, "2023 - 12", PeriodoLabel(2023, 12))
}
