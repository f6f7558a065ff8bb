package boletas

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImporteComaDecimal(t *testing.T) {
	var errs CeldasProblematicas
	d := ParseImporte("1234,56", 5, colFacturado, &errs)
	assert.True(t, d.Equal(decimal.RequireFromString("1234.56")))
	assert.False(t, errs.Any())
}

func TestParseImporteVacio(t *testing.T) {
	var errs CeldasProblematicas
	d := ParseImporte("   ", 5, colFacturado, &errs)
	assert.True(t, d.IsZero())
	assert.False(t, errs.Any())
}

func TestParseImporteConFormatoFecha(t *testing.T) {
	var errs CeldasProblematicas
	d := ParseImporte("10/03/2023 12:00 a. m.", 12, colFacturado, &errs)

	assert.True(t, d.IsZero())
	require.Len(t, errs.Celdas, 1)
	assert.Equal(t, "K12 (tiene formato Fecha, debería ser Número)", errs.Celdas[0])
}

func TestParseImporteBasura(t *testing.T) {
	var errs CeldasProblematicas
	d := ParseImporte("abc", 3, colCobrado, &errs)

	assert.True(t, d.IsZero())
	require.Len(t, errs.Celdas, 1)
	assert.Equal(t, "L3 (valor 'abc' no válido)", errs.Celdas[0])
}

func TestParseImporteAcumulaVariasCeldas(t *testing.T) {
	var errs CeldasProblematicas
	ParseImporte("xx", 2, colFacturado, &errs)
	ParseImporte("yy", 7, colDebitado, &errs)

	require.Len(t, errs.Celdas, 2)
	assert.Equal(t, "K2 (valor 'xx' no válido)", errs.Celdas[0])
	assert.Equal(t, "M7 (valor 'yy' no válido)", errs.Celdas[1])
}

func TestParseEnteroTruncaDecimales(t *testing.T) {
	var errs CeldasProblematicas
	assert.Equal(t, 45, ParseEntero("45,9", 4, colEdad, &errs))
	assert.Equal(t, 45, ParseEntero("45.9", 4, colEdad, &errs))
	assert.False(t, errs.Any())
}

func TestParseEnteroInvalido(t *testing.T) {
	var errs CeldasProblematicas
	n := ParseEntero("sin dato", 9, colEdad, &errs)

	assert.Equal(t, 0, n)
	require.Len(t, errs.Celdas, 1)
	assert.Equal(t, "I9 (valor 'sin dato' no válido para edad)", errs.Celdas[0])
}

func TestParseNumeroBoleta(t *testing.T) {
	var errs CeldasProblematicas
	assert.Equal(t, int64(123456789), ParseNumeroBoleta("123456789", 2, colNumeroBoleta, &errs))
	assert.Equal(t, int64(42), ParseNumeroBoleta("42.0", 2, colNumeroBoleta, &errs))
	assert.False(t, errs.Any())
}
