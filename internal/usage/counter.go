package usage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const dayKeyLayout = "2006-01-02"

// Counter persists a per-day count of successful ingestion runs in a small
// JSON file. Writes merge with whatever is already on disk so concurrent
// processes at worst lose one increment, never the whole history.
type Counter struct {
	mu   sync.Mutex
	path string
}

func NewCounter(path string) *Counter {
	return &Counter{path: path}
}

// Increment bumps the counter for the given day and returns the new value.
func (c *Counter) Increment(day time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts, err := c.load()
	if err != nil {
		return 0, err
	}
	key := day.Format(dayKeyLayout)
	counts[key]++
	if err := c.save(counts); err != nil {
		return 0, err
	}
	return counts[key], nil
}

// Get returns the count recorded for the given day, zero when absent.
func (c *Counter) Get(day time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts, err := c.load()
	if err != nil {
		return 0, err
	}
	return counts[day.Format(dayKeyLayout)], nil
}

func (c *Counter) load() (map[string]int, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]int{}, nil
		}
		return nil, err
	}
	counts := map[string]int{}
	if err := json.Unmarshal(data, &counts); err != nil {
		// A corrupt counter file should not block ingestion; start over.
		return map[string]int{}, nil
	}
	return counts, nil
}

func (c *Counter) save(counts map[string]int) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
