package fx

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const monthKeyLayout = "2006-01-02"

// Cache is the durable mapping from a month-start date to the month's USD
// rate. It is append-only: rates are never invalidated, and Save merges
// with whatever is already on disk rather than replacing it.
//
// Writers must be serialized; the cache takes a process-local lock but two
// processes writing the same file fall back to last-writer-wins.
type Cache struct {
	mu    sync.Mutex
	path  string
	rates map[string]decimal.Decimal
}

// OpenCache loads the cache file; a missing file yields an empty cache.
func OpenCache(path string) (*Cache, error) {
	c := &Cache{path: path, rates: map[string]decimal.Decimal{}}
	loaded, err := readRatesFile(path)
	if err != nil {
		return nil, err
	}
	c.rates = loaded
	return c, nil
}

func monthKey(anio, mes int) string {
	return time.Date(anio, time.Month(mes), 1, 0, 0, 0, 0, time.UTC).Format(monthKeyLayout)
}

// Rate returns the cached rate for a period, if present.
func (c *Cache) Rate(anio, mes int) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rates[monthKey(anio, mes)]
	return r, ok
}

// Put records a rate in memory; call Save to persist.
func (c *Cache) Put(anio, mes int, rate decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[monthKey(anio, mes)] = rate
}

// Rates returns every cached rate keyed by month-start date.
func (c *Cache) Rates() map[time.Time]decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[time.Time]decimal.Decimal, len(c.rates))
	for k, v := range c.rates {
		if t, err := time.Parse(monthKeyLayout, k); err == nil {
			out[t] = v
		}
	}
	return out
}

// Save merges the in-memory rates over the file's current content and
// rewrites it atomically.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	onDisk, err := readRatesFile(c.path)
	if err != nil {
		return err
	}
	for k, v := range c.rates {
		onDisk[k] = v
	}
	c.rates = onDisk

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(onDisk, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

func readRatesFile(path string) (map[string]decimal.Decimal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]decimal.Decimal{}, nil
		}
		return nil, err
	}
	rates := map[string]decimal.Decimal{}
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}
