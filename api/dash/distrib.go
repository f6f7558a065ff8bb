package dash

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"Facturacion/api/boletas"

	"github.com/shopspring/decimal"
)

// diasSemana in calendar order, matching time.Weekday numbering.
var diasSemana = [7]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

type ItemDia struct {
	Dia      string `json:"dia"`
	Cantidad int    `json:"cantidad"`
}

// CantidadBoletasDiaSemana counts tickets per weekday of their date, in
// domingo..sábado order. Days without tickets are omitted.
func CantidadBoletasDiaSemana(listado []boletas.Boleta) []ItemDia {
	var conteo [7]int
	for _, b := range listado {
		conteo[int(b.Fecha.Weekday())]++
	}
	items := []ItemDia{}
	for i, n := range conteo {
		if n > 0 {
			items = append(items, ItemDia{Dia: diasSemana[i], Cantidad: n})
		}
	}
	return items
}

type ItemSemana struct {
	Semana   string `json:"semana"`
	Cantidad int    `json:"cantidad"`
}

// CantidadBoletasSemanales counts tickets per calendar week (Sunday start)
// for the dates that fall in one month. Labels read "dd/MM/yyyy al
// dd/MM/yyyy".
func CantidadBoletasSemanales(listado []boletas.Boleta, anio, mes int) []ItemSemana {
	conteo := make(map[time.Time]int)
	for _, b := range listado {
		if b.Fecha.Year() != anio || int(b.Fecha.Month()) != mes {
			continue
		}
		inicio := b.Fecha.AddDate(0, 0, -int(b.Fecha.Weekday()))
		inicio = time.Date(inicio.Year(), inicio.Month(), inicio.Day(), 0, 0, 0, 0, b.Fecha.Location())
		conteo[inicio]++
	}

	inicios := make([]time.Time, 0, len(conteo))
	for inicio := range conteo {
		inicios = append(inicios, inicio)
	}
	sort.Slice(inicios, func(i, j int) bool { return inicios[i].Before(inicios[j]) })

	semanas := make([]ItemSemana, 0, len(inicios))
	for _, inicio := range inicios {
		fin := inicio.AddDate(0, 0, 6)
		semanas = append(semanas, ItemSemana{
			Semana:   inicio.Format("02/01/2006") + " al " + fin.Format("02/01/2006"),
			Cantidad: conteo[inicio],
		})
	}
	return semanas
}

type GrupoEtario struct {
	Grupo    string `json:"grupo"`
	Cantidad int    `json:"cantidad"`
}

// GetEdadesPromedio buckets patients into fixed age bands. Every band is
// emitted, empty ones included, so charts keep a stable axis.
func GetEdadesPromedio(listado []boletas.Boleta) []GrupoEtario {
	grupos := []GrupoEtario{
		{Grupo: "0 a 15 años"},
		{Grupo: "16 a 30 años"},
		{Grupo: "31 a 50 años"},
		{Grupo: "51 a 65 años"},
		{Grupo: "66 a 75 años"},
		{Grupo: "76 a 90 años"},
		{Grupo: "mayores de 90 años"},
	}
	for _, b := range listado {
		switch edad := b.Edad; {
		case edad <= 15:
			grupos[0].Cantidad++
		case edad <= 30:
			grupos[1].Cantidad++
		case edad <= 50:
			grupos[2].Cantidad++
		case edad <= 65:
			grupos[3].Cantidad++
		case edad <= 75:
			grupos[4].Cantidad++
		case edad <= 90:
			grupos[5].Cantidad++
		default:
			grupos[6].Cantidad++
		}
	}
	return grupos
}

type ConteoNombre struct {
	Nombre   string `json:"nombre"`
	Cantidad int    `json:"cantidad"`
}

// CantidadBoletasPorCirujano counts tickets per surgeon, most active first.
// Blank surgeons are dropped from the count view.
func CantidadBoletasPorCirujano(listado []boletas.Boleta) []ConteoNombre {
	return conteoPorNombre(listado, func(b boletas.Boleta) string { return b.Cirujano })
}

// CantidadBoletasPorHospital counts tickets per hospital, most active first.
func CantidadBoletasPorHospital(listado []boletas.Boleta) []ConteoNombre {
	return conteoPorNombre(listado, func(b boletas.Boleta) string { return b.Hospital })
}

func conteoPorNombre(listado []boletas.Boleta, campo func(boletas.Boleta) string) []ConteoNombre {
	conteo := make(map[string]int)
	for _, b := range listado {
		nombre := strings.TrimSpace(campo(b))
		if nombre == "" {
			continue
		}
		conteo[titleCase(nombre)]++
	}
	items := make([]ConteoNombre, 0, len(conteo))
	for nombre, n := range conteo {
		items = append(items, ConteoNombre{Nombre: nombre, Cantidad: n})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Cantidad != items[j].Cantidad {
			return items[i].Cantidad > items[j].Cantidad
		}
		return items[i].Nombre < items[j].Nombre
	})
	return items
}

type FacturacionCirujano struct {
	Cirujano   string          `json:"cirujano"`
	Monto      decimal.Decimal `json:"monto"`
	Porcentaje decimal.Decimal `json:"porcentaje"`
}

// FacturacionPorCirujano splits the billed total by surgeon, largest share
// first. Unlike the count views, blank surgeons still carry money and are
// reported as "Desconocido".
func FacturacionPorCirujano(listado []boletas.Boleta) []FacturacionCirujano {
	montos := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, b := range listado {
		nombre := strings.TrimSpace(b.Cirujano)
		if nombre == "" {
			nombre = "Desconocido"
		} else {
			nombre = titleCase(nombre)
		}
		montos[nombre] = montos[nombre].Add(b.Facturado)
		total = total.Add(b.Facturado)
	}

	items := make([]FacturacionCirujano, 0, len(montos))
	for nombre, monto := range montos {
		pct := decimal.Zero
		if !total.IsZero() {
			pct = monto.Div(total).Mul(cien).Round(2)
		}
		items = append(items, FacturacionCirujano{
			Cirujano:   nombre,
			Monto:      monto.Round(2),
			Porcentaje: pct,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Monto.Equal(items[j].Monto) {
			return items[i].Monto.GreaterThan(items[j].Monto)
		}
		return items[i].Cirujano < items[j].Cirujano
	})
	return items
}

// CirujanosDisponibles lists the distinct surgeons, uppercased and sorted,
// for filter dropdowns.
func CirujanosDisponibles(listado []boletas.Boleta) []string {
	return nombresDisponibles(listado, func(b boletas.Boleta) string { return b.Cirujano })
}

// HospitalesDisponibles lists the distinct hospitals, uppercased and sorted.
func HospitalesDisponibles(listado []boletas.Boleta) []string {
	return nombresDisponibles(listado, func(b boletas.Boleta) string { return b.Hospital })
}

func nombresDisponibles(listado []boletas.Boleta, campo func(boletas.Boleta) string) []string {
	vistos := make(map[string]struct{})
	nombres := []string{}
	for _, b := range listado {
		nombre := strings.ToUpper(strings.TrimSpace(campo(b)))
		if nombre == "" {
			continue
		}
		if _, ok := vistos[nombre]; ok {
			continue
		}
		vistos[nombre] = struct{}{}
		nombres = append(nombres, nombre)
	}
	sort.Strings(nombres)
	return nombres
}

type ResumenPeriodo struct {
	Periodo  string `json:"periodo"`
	Anio     int    `json:"anio"`
	Mes      int    `json:"mes"`
	Cantidad int    `json:"cantidad"`
}

// ResumenPorPeriodo counts tickets per period, most recent year first with
// months ascending inside each year.
func ResumenPorPeriodo(listado []boletas.Boleta) []ResumenPeriodo {
	type clave struct{ anio, mes int }
	conteo := make(map[clave]int)
	for _, b := range listado {
		conteo[clave{b.PeriodoAnio, b.PeriodoMes}]++
	}

	resumen := make([]ResumenPeriodo, 0, len(conteo))
	for k, n := range conteo {
		resumen = append(resumen, ResumenPeriodo{
			Periodo:  boletas.PeriodoLabel(k.anio, k.mes),
			Anio:     k.anio,
			Mes:      k.mes,
			Cantidad: n,
		})
	}
	sort.Slice(resumen, func(i, j int) bool {
		if resumen[i].Anio != resumen[j].Anio {
			return resumen[i].Anio > resumen[j].Anio
		}
		return resumen[i].Mes < resumen[j].Mes
	})
	return resumen
}

// titleCase capitalizes each word; names arrive fully uppercased in the
// export.
func titleCase(s string) string {
	palabras := strings.Fields(strings.ToLower(s))
	for i, p := range palabras {
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		palabras[i] = string(runes)
	}
	return strings.Join(palabras, " ")
}
