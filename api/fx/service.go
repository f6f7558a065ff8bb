package fx

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"Facturacion/internal/config"
	"Facturacion/internal/serviceiface"
)

type FXService struct {
	config map[string]interface{}
}

func NewFXService(cfg map[string]interface{}) serviceiface.Service {
	return &FXService{config: cfg}
}

func (s *FXService) Name() string {
	return "fx"
}

func (s *FXService) Start() error {
	go StartFXService(s.config)
	return nil
}

func (s *FXService) Stop() error {
	return nil
}

// StartFXService exposes the cached monthly rates and an on-demand refresh
// for periods not yet covered by the nightly job.
func StartFXService(cfg map[string]interface{}) {
	cachePath := config.DefaultCotizacionesFile
	if v, ok := cfg["cache_file"].(string); ok && v != "" {
		cachePath = v
	}
	baseURL := config.DefaultCotizacionesURL
	if v, ok := cfg["cotizaciones_url"].(string); ok && v != "" {
		baseURL = v
	}

	cache, err := OpenCache(cachePath)
	if err != nil {
		log.Fatalf("FX Service: no se pudo abrir la caché de cotizaciones: %v", err)
	}
	client := NewClient(baseURL)

	mux := http.NewServeMux()
	mux.HandleFunc("/fx/rates", func(w http.ResponseWriter, r *http.Request) {
		rates := cache.Rates()
		out := make(map[string]string, len(rates))
		for mes, rate := range rates {
			out[mes.Format("2006-01")] = rate.String()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/fx/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()
		if err := RefreshMonth(ctx, client, cache, time.Now()); err != nil {
			log.Printf("[fx] refresh manual falló: %v", err)
			http.Error(w, "no se pudieron actualizar las cotizaciones", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	addr := ":6203"
	if v, ok := cfg["addr"].(string); ok && v != "" {
		addr = v
	}
	log.Println("FX Service started on", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("FX Service failed: %v", err)
	}
}

// RefreshMonth fetches the quote history and stores the average for the
// month containing ref.
func RefreshMonth(ctx context.Context, client *Client, cache *Cache, ref time.Time) error {
	cotizaciones, err := client.Fetch(ctx)
	if err != nil {
		return err
	}
	promedio, err := PromedioMensual(cotizaciones, ref.Year(), int(ref.Month()))
	if err != nil {
		return err
	}
	cache.Put(ref.Year(), int(ref.Month()), promedio)
	return cache.Save()
}
