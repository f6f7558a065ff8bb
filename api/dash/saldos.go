package dash

import (
	"sort"

	"Facturacion/api/boletas"

	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

// SaldoMensual totals one period's billing. PorcentajeCobrado is capped at
// 100 even when collections plus corrections exceed the billed amount.
type SaldoMensual struct {
	Periodo           string          `json:"periodo"`
	Anio              int             `json:"anio"`
	Mes               int             `json:"mes"`
	Facturado         decimal.Decimal `json:"facturado"`
	Cobrado           decimal.Decimal `json:"cobrado"`
	Debitado          decimal.Decimal `json:"debitado"`
	Saldo             decimal.Decimal `json:"saldo"`
	PorcentajeCobrado decimal.Decimal `json:"porcentaje_cobrado"`
}

// GetSaldosMensuales groups the listing by period, newest first.
func GetSaldosMensuales(listado []boletas.Boleta) []SaldoMensual {
	type clave struct{ anio, mes int }
	acumulado := make(map[clave]*SaldoMensual)

	for _, b := range listado {
		k := clave{b.PeriodoAnio, b.PeriodoMes}
		s, ok := acumulado[k]
		if !ok {
			s = &SaldoMensual{
				Periodo:   boletas.PeriodoLabel(b.PeriodoAnio, b.PeriodoMes),
				Anio:      b.PeriodoAnio,
				Mes:       b.PeriodoMes,
				Facturado: decimal.Zero,
				Cobrado:   decimal.Zero,
				Debitado:  decimal.Zero,
				Saldo:     decimal.Zero,
			}
			acumulado[k] = s
		}
		s.Facturado = s.Facturado.Add(b.Facturado)
		s.Cobrado = s.Cobrado.Add(b.Cobrado)
		s.Debitado = s.Debitado.Add(b.Debitado)
		s.Saldo = s.Saldo.Add(b.Saldo)
	}

	saldos := make([]SaldoMensual, 0, len(acumulado))
	for _, s := range acumulado {
		s.PorcentajeCobrado = porcentajeCobrado(s.Cobrado.Add(s.Debitado), s.Facturado)
		saldos = append(saldos, *s)
	}
	sort.Slice(saldos, func(i, j int) bool {
		if saldos[i].Anio != saldos[j].Anio {
			return saldos[i].Anio > saldos[j].Anio
		}
		return saldos[i].Mes > saldos[j].Mes
	})
	return saldos
}

// porcentajeCobrado measures how much of the billed amount was resolved,
// counting debited corrections as resolved too.
func porcentajeCobrado(recuperado, facturado decimal.Decimal) decimal.Decimal {
	if facturado.IsZero() {
		return decimal.Zero
	}
	pct := recuperado.Div(facturado).Mul(cien)
	if pct.GreaterThan(cien) {
		pct = cien
	}
	return pct.Round(2)
}

// GetImportePendiente is the outstanding balance of the whole listing.
func GetImportePendiente(listado []boletas.Boleta) decimal.Decimal {
	pendiente := decimal.Zero
	for _, b := range listado {
		pendiente = pendiente.Add(b.Saldo)
	}
	return pendiente
}

// BoletaMayorValor returns the largest billed amount, rounded to cents. The
// second return is false when the listing is empty.
func BoletaMayorValor(listado []boletas.Boleta) (decimal.Decimal, bool) {
	if len(listado) == 0 {
		return decimal.Zero, false
	}
	mayor := listado[0].Facturado
	for _, b := range listado[1:] {
		if b.Facturado.GreaterThan(mayor) {
			mayor = b.Facturado
		}
	}
	return mayor.Round(2), true
}

// BoletaMenorValor returns the smallest billed amount, rounded to cents. The
// second return is false when the listing is empty.
func BoletaMenorValor(listado []boletas.Boleta) (decimal.Decimal, bool) {
	if len(listado) == 0 {
		return decimal.Zero, false
	}
	menor := listado[0].Facturado
	for _, b := range listado[1:] {
		if b.Facturado.LessThan(menor) {
			menor = b.Facturado
		}
	}
	return menor.Round(2), true
}

// GetBoletasParciales lists tickets collected in part: something was paid,
// less than billed, and nothing was debited.
func GetBoletasParciales(listado []boletas.Boleta) []boletas.Boleta {
	parciales := []boletas.Boleta{}
	for _, b := range listado {
		if b.Cobrado.IsPositive() && b.Cobrado.LessThan(b.Facturado) && b.Debitado.IsZero() {
			parciales = append(parciales, b)
		}
	}
	return parciales
}

// GetBoletasConDebitos lists tickets with any debited correction.
func GetBoletasConDebitos(listado []boletas.Boleta) []boletas.Boleta {
	debitadas := []boletas.Boleta{}
	for _, b := range listado {
		if !b.Debitado.IsZero() {
			debitadas = append(debitadas, b)
		}
	}
	return debitadas
}
