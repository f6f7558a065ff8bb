package dash

import (
	"testing"
	"time"

	"Facturacion/api/boletas"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boletaFecha(fecha time.Time) boletas.Boleta {
	b := boleta(fecha.Year(), int(fecha.Month()), "100", "0", "0")
	b.Fecha = fecha
	return b
}

func TestCantidadBoletasDiaSemana(t *testing.T) {
	lunes := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	domingo := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	sabado := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

	items := CantidadBoletasDiaSemana([]boletas.Boleta{
		boletaFecha(lunes), boletaFecha(lunes), boletaFecha(domingo), boletaFecha(sabado),
	})

	// Calendar order, empty days omitted.
	require.Len(t, items, 3)
	assert.Equal(t, ItemDia{Dia: "domingo", Cantidad: 1}, items[0])
	assert.Equal(t, ItemDia{Dia: "lunes", Cantidad: 2}, items[1])
	assert.Equal(t, ItemDia{Dia: "sábado", Cantidad: 1}, items[2])
}

func TestCantidadBoletasSemanales(t *testing.T) {
	// March 2024: the 4th and 5th share a week (week of Sunday the 3rd);
	// the 12th falls in the week of Sunday the 10th.
	listado := []boletas.Boleta{
		boletaFecha(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)),
		boletaFecha(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)),
		boletaFecha(time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)),
		boletaFecha(time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)),
	}

	semanas := CantidadBoletasSemanales(listado, 2024, 3)
	require.Len(t, semanas, 2)
	assert.Equal(t, ItemSemana{Semana: "03/03/2024 al 09/03/2024", Cantidad: 2}, semanas[0])
	assert.Equal(t, ItemSemana{Semana: "10/03/2024 al 16/03/2024", Cantidad: 1}, semanas[1])
}

func TestGetEdadesPromedio(t *testing.T) {
	conEdad := func(edad int) boletas.Boleta {
		b := boleta(2024, 1, "100", "0", "0")
		b.Edad = edad
		return b
	}

	grupos := GetEdadesPromedio([]boletas.Boleta{
		conEdad(15), conEdad(16), conEdad(91),
	})

	// Every band is present even when empty.
	require.Len(t, grupos, 7)
	assert.Equal(t, GrupoEtario{Grupo: "0 a 15 años", Cantidad: 1}, grupos[0])
	assert.Equal(t, GrupoEtario{Grupo: "16 a 30 años", Cantidad: 1}, grupos[1])
	assert.Equal(t, GrupoEtario{Grupo: "31 a 50 años", Cantidad: 0}, grupos[2])
	assert.Equal(t, GrupoEtario{Grupo: "mayores de 90 años", Cantidad: 1}, grupos[6])
}

func TestGetEdadesPromedioLimitesDeBanda(t *testing.T) {
	conEdad := func(edad int) boletas.Boleta {
		b := boleta(2024, 1, "100", "0", "0")
		b.Edad = edad
		return b
	}

	// Upper edges land in their own band, not the next one.
	grupos := GetEdadesPromedio([]boletas.Boleta{
		conEdad(50), conEdad(65), conEdad(75),
	})
	require.Len(t, grupos, 7)
	assert.Equal(t, GrupoEtario{Grupo: "31 a 50 años", Cantidad: 1}, grupos[2])
	assert.Equal(t, GrupoEtario{Grupo: "51 a 65 años", Cantidad: 1}, grupos[3])
	assert.Equal(t, GrupoEtario{Grupo: "66 a 75 años", Cantidad: 1}, grupos[4])
}

func conCirujano(nombre string) boletas.Boleta {
	b := boleta(2024, 1, "100", "0", "0")
	b.Cirujano = nombre
	return b
}

func TestCantidadBoletasPorCirujano(t *testing.T) {
	items := CantidadBoletasPorCirujano([]boletas.Boleta{
		conCirujano("PEREZ JUAN"), conCirujano("perez juan"), conCirujano("GOMEZ ANA"),
		conCirujano(""),
	})

	// Blanks dropped, names title-cased, most active first.
	require.Len(t, items, 2)
	assert.Equal(t, ConteoNombre{Nombre: "Perez Juan", Cantidad: 2}, items[0])
	assert.Equal(t, ConteoNombre{Nombre: "Gomez Ana", Cantidad: 1}, items[1])
}

func TestFacturacionPorCirujano(t *testing.T) {
	a := conCirujano("PEREZ JUAN")
	a.Facturado = decimal.NewFromInt(750)
	b := conCirujano("")
	b.Facturado = decimal.NewFromInt(250)

	items := FacturacionPorCirujano([]boletas.Boleta{a, b})
	require.Len(t, items, 2)

	assert.Equal(t, "Perez Juan", items[0].Cirujano)
	assert.True(t, items[0].Monto.Equal(decimal.NewFromInt(750)))
	assert.True(t, items[0].Porcentaje.Equal(decimal.NewFromInt(75)))

	// Money with no surgeon still counts, under a stand-in name.
	assert.Equal(t, "Desconocido", items[1].Cirujano)
	assert.True(t, items[1].Porcentaje.Equal(decimal.NewFromInt(25)))
}

func TestCirujanosDisponibles(t *testing.T) {
	nombres := CirujanosDisponibles([]boletas.Boleta{
		conCirujano("perez juan"), conCirujano("PEREZ JUAN"), conCirujano("Gomez Ana"),
		conCirujano(""),
	})
	assert.Equal(t, []string{"GOMEZ ANA", "PEREZ JUAN"}, nombres)
}

func TestResumenPorPeriodo(t *testing.T) {
	listado := []boletas.Boleta{
		boleta(2023, 11, "100", "0", "0"),
		boleta(2024, 2, "100", "0", "0"),
		boleta(2024, 1, "100", "0", "0"),
		boleta(2024, 1, "100", "0", "0"),
	}

	resumen := ResumenPorPeriodo(listado)
	require.Len(t, resumen, 3)

	// Newest year first, months ascending inside it.
	assert.Equal(t, "2024 - 01", resumen[0].Periodo)
	assert.Equal(t, 2, resumen[0].Cantidad)
	assert.Equal(t, "2024 - 02", resumen[1].Periodo)
	assert.Equal(t, "2023 - 11", resumen[2].Periodo)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Hospital Italiano", titleCase("HOSPITAL ITALIANO"))
	assert.Equal(t, "Pérez", titleCase("pérez"))
}
