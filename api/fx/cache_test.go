package fx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheArchivoInexistente(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "no-existe.json"))
	require.NoError(t, err)
	_, ok := cache.Rate(2024, 1)
	assert.False(t, ok)
}

func TestCachePutSaveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cotizaciones.json")

	cache, err := OpenCache(path)
	require.NoError(t, err)
	cache.Put(2024, 1, decimal.RequireFromString("823.45"))
	require.NoError(t, cache.Save())

	reabierta, err := OpenCache(path)
	require.NoError(t, err)
	rate, ok := reabierta.Rate(2024, 1)
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("823.45")))
}

func TestCacheSaveFusionaConDisco(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cotizaciones.json")

	primera, err := OpenCache(path)
	require.NoError(t, err)
	primera.Put(2024, 1, decimal.NewFromInt(800))
	require.NoError(t, primera.Save())

	// A second writer that never saw January must not erase it.
	segunda, err := OpenCache(filepath.Join(t.TempDir(), "otra.json"))
	require.NoError(t, err)
	segunda.path = path
	segunda.Put(2024, 2, decimal.NewFromInt(850))
	require.NoError(t, segunda.Save())

	final, err := OpenCache(path)
	require.NoError(t, err)
	_, enero := final.Rate(2024, 1)
	_, febrero := final.Rate(2024, 2)
	assert.True(t, enero)
	assert.True(t, febrero)
}

func TestCacheArchivoCorrupto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roto.json")
	require.NoError(t, os.WriteFile(path, []byte("{no es json"), 0644))

	_, err := OpenCache(path)
	require.Error(t, err)
}

func TestCacheRates(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "c.json"))
	require.NoError(t, err)
	cache.Put(2024, 3, decimal.NewFromInt(900))

	rates := cache.Rates()
	require.Len(t, rates, 1)
	for mes, rate := range rates {
		assert.Equal(t, "2024-03-01", mes.Format("2006-01-02"))
		assert.True(t, rate.Equal(decimal.NewFromInt(900)))
	}
}
