package boletas

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSinCambios(t *testing.T) {
	fecha := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	existente := storedBoleta{
		ID:        7,
		IdEntidad: 3,
		Fecha:     fecha,
		Periodo:   "03/2024",
		Hospital:  "HOSPITAL CENTRAL",
		Facturado: decimal.NewFromInt(1000),
		Cobrado:   decimal.NewFromInt(400),
		Debitado:  decimal.Zero,
	}
	nueva := Boleta{
		IdEntidad: 3,
		Fecha:     fecha,
		Periodo:   "03/2024",
		Hospital:  "HOSPITAL CENTRAL",
		Facturado: decimal.NewFromInt(1000),
		Cobrado:   decimal.NewFromInt(400),
		Debitado:  decimal.Zero,
	}

	assert.True(t, sinCambios(existente, nueva))

	// Scale differences are not changes.
	nueva.Cobrado = decimal.RequireFromString("400.00")
	assert.True(t, sinCambios(existente, nueva))

	nueva.Cobrado = decimal.NewFromInt(1000)
	assert.False(t, sinCambios(existente, nueva))

	nueva.Cobrado = decimal.NewFromInt(400)
	nueva.Hospital = "OTRO HOSPITAL"
	assert.False(t, sinCambios(existente, nueva))
}

func TestPqUserFriendlyMessageGenerico(t *testing.T) {
	assert.Equal(t, "", PqUserFriendlyMessage(nil))
	msg := PqUserFriendlyMessage(assert.AnError)
	assert.Equal(t, "Ocurrió un error al procesar el archivo. Por favor, intente nuevamente.", msg)
}
