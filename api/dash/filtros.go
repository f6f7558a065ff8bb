package dash

import (
	"sort"
	"strings"

	"Facturacion/api/boletas"
)

// GetBoletasPorPeriodo filters the listing to one period label ("2024 - 03").
func GetBoletasPorPeriodo(listado []boletas.Boleta, periodo string) []boletas.Boleta {
	filtradas := []boletas.Boleta{}
	for _, b := range listado {
		if b.PeriodoLabel() == periodo {
			filtradas = append(filtradas, b)
		}
	}
	return filtradas
}

// GetBoletasPorCirujano filters by surgeon, case-insensitively.
func GetBoletasPorCirujano(listado []boletas.Boleta, cirujano string) []boletas.Boleta {
	return filtrarPorNombre(listado, cirujano, func(b boletas.Boleta) string { return b.Cirujano })
}

// GetBoletasPorHospital filters by hospital, case-insensitively.
func GetBoletasPorHospital(listado []boletas.Boleta, hospital string) []boletas.Boleta {
	return filtrarPorNombre(listado, hospital, func(b boletas.Boleta) string { return b.Hospital })
}

func filtrarPorNombre(listado []boletas.Boleta, nombre string, campo func(boletas.Boleta) string) []boletas.Boleta {
	objetivo := strings.ToUpper(strings.TrimSpace(nombre))
	filtradas := []boletas.Boleta{}
	for _, b := range listado {
		if strings.ToUpper(strings.TrimSpace(campo(b))) == objetivo {
			filtradas = append(filtradas, b)
		}
	}
	return filtradas
}

// GetPeriodosPrevios lists the distinct period labels, newest first, for
// the period selector.
func GetPeriodosPrevios(listado []boletas.Boleta) []string {
	type clave struct{ anio, mes int }
	vistos := make(map[clave]struct{})
	claves := []clave{}
	for _, b := range listado {
		k := clave{b.PeriodoAnio, b.PeriodoMes}
		if _, ok := vistos[k]; ok {
			continue
		}
		vistos[k] = struct{}{}
		claves = append(claves, k)
	}
	sort.Slice(claves, func(i, j int) bool {
		if claves[i].anio != claves[j].anio {
			return claves[i].anio > claves[j].anio
		}
		return claves[i].mes > claves[j].mes
	})
	periodos := make([]string, len(claves))
	for i, k := range claves {
		periodos[i] = boletas.PeriodoLabel(k.anio, k.mes)
	}
	return periodos
}
