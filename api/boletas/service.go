package boletas

import (
	"log"
	"net/http"

	"Facturacion/internal/config"
	"Facturacion/internal/progress"
	"Facturacion/internal/serviceiface"
	"Facturacion/internal/usage"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BoletaService struct {
	config    map[string]interface{}
	pool      *pgxpool.Pool
	snapshots SnapshotPublisher
}

func NewBoletaService(cfg map[string]interface{}, pool *pgxpool.Pool, snapshots SnapshotPublisher) serviceiface.Service {
	return &BoletaService{config: cfg, pool: pool, snapshots: snapshots}
}

func (s *BoletaService) Name() string {
	return "boletas"
}

func (s *BoletaService) Start() error {
	go StartBoletaService(s.config, s.pool, s.snapshots)
	return nil
}

func (s *BoletaService) Stop() error {
	return nil
}

// StartBoletaService serves the ingestion endpoints: upload and the SSE
// progress stream.
func StartBoletaService(cfg map[string]interface{}, pool *pgxpool.Pool, snapshots SnapshotPublisher) {
	hub := progress.NewHub()

	usageFile := config.DefaultUsageFile
	if v, ok := cfg["usage_file"].(string); ok && v != "" {
		usageFile = v
	}

	handler := &Handler{
		Hub:       hub,
		Pool:      pool,
		Counter:   usage.NewCounter(usageFile),
		Snapshots: snapshots,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/boletas/upload", handler.HandleUpload)
	mux.HandleFunc("/boletas/progress", hub.HandleSSE)

	addr := ":6201"
	if v, ok := cfg["addr"].(string); ok && v != "" {
		addr = v
	}
	log.Println("Boletas Service started on", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Boletas Service failed: %v", err)
	}
}
