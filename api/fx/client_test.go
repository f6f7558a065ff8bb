package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDescartaEntradasMalformadas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"fecha":"2024-01-10","casa":"oficial","compra":800,"venta":820},
			{"fecha":"","casa":"oficial","compra":1,"venta":1},
			{"fecha":"no-es-fecha","casa":"oficial","compra":1,"venta":1},
			"esto no es un objeto",
			{"fecha":"2024-01-11","casa":"oficial","compra":810,"venta":830}
		]`))
	}))
	defer srv.Close()

	cotizaciones, err := NewClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, cotizaciones, 2)
	assert.Equal(t, "2024-01-10", cotizaciones[0].Fecha)
}

func TestFetchRespuestaNoLista(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"algo"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Fetch(context.Background())
	require.Error(t, err)
}

func TestFetchStatusNoOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Fetch(context.Background())
	require.Error(t, err)
}

func TestPromedioMensual(t *testing.T) {
	cotizaciones := []Cotizacion{
		{Fecha: "2024-01-10", Compra: decimal.NewFromInt(800), Venta: decimal.NewFromInt(820)},
		{Fecha: "2024-01-11", Compra: decimal.NewFromInt(810), Venta: decimal.NewFromInt(830)},
		{Fecha: "2024-02-01", Compra: decimal.NewFromInt(900), Venta: decimal.NewFromInt(900)},
	}

	// (810 + 820) / 2 = 815
	promedio, err := PromedioMensual(cotizaciones, 2024, 1)
	require.NoError(t, err)
	assert.True(t, promedio.Equal(decimal.NewFromInt(815)), "got %s", promedio)
}

func TestPromedioMensualSinDias(t *testing.T) {
	_, err := PromedioMensual(nil, 2024, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no hay cotizaciones para el periodo 2024-01")
}

func mustParse(t *testing.T, fecha string) time.Time {
	t.Helper()
	ref, err := time.Parse("2006-01-02", fecha)
	require.NoError(t, err)
	return ref
}

func TestRefreshMonth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"fecha":"2024-03-05","casa":"oficial","compra":850,"venta":870}]`))
	}))
	defer srv.Close()

	cache, err := OpenCache(t.TempDir() + "/c.json")
	require.NoError(t, err)

	ref := mustParse(t, "2024-03-15")
	require.NoError(t, RefreshMonth(context.Background(), NewClient(srv.URL), cache, ref))

	rate, ok := cache.Rate(2024, 3)
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromInt(860)))
}
