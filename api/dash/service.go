package dash

import (
	"database/sql"
	"log"
	"net/http"

	"Facturacion/api/boletas"
	"Facturacion/api/fx"
	"Facturacion/internal/config"
	"Facturacion/internal/serviceiface"
)

type DashService struct {
	config   map[string]interface{}
	db       *sql.DB
	sessions *SessionManager
}

func NewDashService(cfg map[string]interface{}, db *sql.DB, sessions *SessionManager) serviceiface.Service {
	return &DashService{config: cfg, db: db, sessions: sessions}
}

func (s *DashService) Name() string {
	return "dash"
}

func (s *DashService) Start() error {
	go StartDashService(s.config, s.db, s.sessions)
	return nil
}

func (s *DashService) Stop() error {
	return nil
}

// StartDashService serves the dashboard endpoints over the session snapshot
// or the persisted store.
func StartDashService(cfg map[string]interface{}, db *sql.DB, sessions *SessionManager) {
	cachePath := config.DefaultCotizacionesFile
	if v, ok := cfg["cache_file"].(string); ok && v != "" {
		cachePath = v
	}
	fxCache, err := fx.OpenCache(cachePath)
	if err != nil {
		log.Printf("Dash Service: sin caché de cotizaciones (%v); la vista USD quedará vacía", err)
		fxCache = nil
	}

	handler := &Handler{
		Sessions: sessions,
		Store:    boletas.NewStore(db),
		FXCache:  fxCache,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/dash/resumen", handler.HandleResumen)
	mux.HandleFunc("/dash/periodo", handler.HandlePeriodo)
	mux.HandleFunc("/dash/cirujano", handler.HandleCirujano)
	mux.HandleFunc("/dash/hospital", handler.HandleHospital)
	mux.HandleFunc("/dash/cerrar-sesion", handler.HandleCerrarSesion)

	addr := ":6202"
	if v, ok := cfg["addr"].(string); ok && v != "" {
		addr = v
	}
	log.Println("Dash Service started on", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Dash Service failed: %v", err)
	}
}
