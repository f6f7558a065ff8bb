package dash

import (
	"sort"
	"time"

	"Facturacion/api/boletas"

	"github.com/shopspring/decimal"
)

type FacturacionUSD struct {
	Periodo string          `json:"periodo"`
	Importe decimal.Decimal `json:"importe_usd"`
}

type importeUSD struct {
	anio    int
	mes     int
	importe decimal.Decimal
}

// facturacionUSD converts each period's billed total using that month's
// average official rate. Months without a cached rate are omitted rather
// than converted with a stale or guessed value.
func facturacionUSD(listado []boletas.Boleta, rates map[time.Time]decimal.Decimal) []importeUSD {
	type clave struct{ anio, mes int }
	facturado := make(map[clave]decimal.Decimal)
	for _, b := range listado {
		k := clave{b.PeriodoAnio, b.PeriodoMes}
		facturado[k] = facturado[k].Add(b.Facturado)
	}

	importes := []importeUSD{}
	for k, total := range facturado {
		inicio := time.Date(k.anio, time.Month(k.mes), 1, 0, 0, 0, 0, time.UTC)
		rate, ok := rates[inicio]
		if !ok || rate.IsZero() {
			continue
		}
		importes = append(importes, importeUSD{
			anio:    k.anio,
			mes:     k.mes,
			importe: total.Div(rate).Round(2),
		})
	}
	return importes
}

// GetFacturacionEnUSD is the monthly USD income series, newest period first.
func GetFacturacionEnUSD(listado []boletas.Boleta, rates map[time.Time]decimal.Decimal) []FacturacionUSD {
	serie := facturacionUSD(listado, rates)
	sort.Slice(serie, func(i, j int) bool {
		if serie[i].anio != serie[j].anio {
			return serie[i].anio > serie[j].anio
		}
		return serie[i].mes > serie[j].mes
	})

	importes := make([]FacturacionUSD, 0, len(serie))
	for _, s := range serie {
		importes = append(importes, FacturacionUSD{
			Periodo: boletas.PeriodoLabel(s.anio, s.mes),
			Importe: s.importe,
		})
	}
	return importes
}

type MejorPeriodo struct {
	Periodo string          `json:"periodo"`
	Anio    int             `json:"anio"`
	Mes     int             `json:"mes"`
	Importe decimal.Decimal `json:"importe_usd"`
}

// GetMejorPeriodo finds the period with the highest USD-normalized income.
// Comparing in USD keeps high-inflation peso periods from dwarfing every
// older month. The second return is false when no period has a rate.
func GetMejorPeriodo(listado []boletas.Boleta, rates map[time.Time]decimal.Decimal) (MejorPeriodo, bool) {
	serie := facturacionUSD(listado, rates)
	if len(serie) == 0 {
		return MejorPeriodo{}, false
	}
	mejor := serie[0]
	for _, s := range serie[1:] {
		if s.importe.GreaterThan(mejor.importe) {
			mejor = s
		}
	}
	return MejorPeriodo{
		Periodo: boletas.PeriodoLabel(mejor.anio, mejor.mes),
		Anio:    mejor.anio,
		Mes:     mejor.mes,
		Importe: mejor.importe,
	}, true
}

// DiferenciaMejorPeriodo compares one period's USD income against the best
// period on record: the absolute gap and how large it is relative to the
// best period.
type DiferenciaMejorPeriodo struct {
	MejorPeriodo string          `json:"mejor_periodo"`
	MejorImporte decimal.Decimal `json:"mejor_importe_usd"`
	Diferencia   decimal.Decimal `json:"diferencia_usd"`
	Porcentaje   decimal.Decimal `json:"porcentaje"`
}

// GetDiferenciaMejorPeriodo measures the gap between a period's USD income
// and the best period's. The second return is false when the best period
// cannot be established, its income is zero, or the requested period has no
// rate.
func GetDiferenciaMejorPeriodo(listado []boletas.Boleta, rates map[time.Time]decimal.Decimal,
	anio, mes int) (DiferenciaMejorPeriodo, bool) {

	mejor, ok := GetMejorPeriodo(listado, rates)
	if !ok || mejor.Importe.IsZero() {
		return DiferenciaMejorPeriodo{}, false
	}

	var actual decimal.Decimal
	encontrado := false
	for _, s := range facturacionUSD(listado, rates) {
		if s.anio == anio && s.mes == mes {
			actual = s.importe
			encontrado = true
			break
		}
	}
	if !encontrado {
		return DiferenciaMejorPeriodo{}, false
	}

	diferencia := mejor.Importe.Sub(actual).Abs()
	return DiferenciaMejorPeriodo{
		MejorPeriodo: mejor.Periodo,
		MejorImporte: mejor.Importe,
		Diferencia:   diferencia,
		Porcentaje:   diferencia.Div(mejor.Importe).Mul(cien).Round(2),
	}, true
}
