package jobs

import (
	"context"
	"log"
	"time"

	"Facturacion/api/fx"
	"Facturacion/internal/config"
	"Facturacion/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// RetryWithBackoff runs fn up to attempts times, doubling the wait after
// each failure.
func RetryWithBackoff(attempts int, initial time.Duration, fn func() error) error {
	delay := initial
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}

// FXRefresher backfills the monthly USD rate cache for every billing period
// present in the store. Months already cached are skipped; rates never
// change once recorded.
type FXRefresher struct {
	pool   *pgxpool.Pool
	client *fx.Client
	cache  *fx.Cache
}

func NewFXRefresher(pool *pgxpool.Pool, client *fx.Client, cache *fx.Cache) *FXRefresher {
	return &FXRefresher{pool: pool, client: client, cache: cache}
}

// Run fetches the quote history once and fills every missing month.
func (f *FXRefresher) Run(ctx context.Context) error {
	rows, err := f.pool.Query(ctx,
		`SELECT DISTINCT periodo_anio, periodo_mes FROM boletas ORDER BY periodo_anio, periodo_mes`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type periodo struct{ anio, mes int }
	faltantes := []periodo{}
	for rows.Next() {
		var p periodo
		if err := rows.Scan(&p.anio, &p.mes); err != nil {
			return err
		}
		if _, ok := f.cache.Rate(p.anio, p.mes); !ok {
			faltantes = append(faltantes, p)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(faltantes) == 0 {
		return nil
	}

	var cotizaciones []fx.Cotizacion
	err = RetryWithBackoff(3, 5*time.Second, func() error {
		var fetchErr error
		cotizaciones, fetchErr = f.client.Fetch(ctx)
		return fetchErr
	})
	if err != nil {
		return err
	}

	completados := 0
	for _, p := range faltantes {
		promedio, err := fx.PromedioMensual(cotizaciones, p.anio, p.mes)
		if err != nil {
			// A period can legitimately predate the published history.
			log.Printf("[fx] sin cotización para %d-%02d: %v", p.anio, p.mes, err)
			continue
		}
		f.cache.Put(p.anio, p.mes, promedio)
		completados++
	}
	if completados == 0 {
		return nil
	}
	log.Printf("[fx] %d periodos de cotización completados", completados)
	return f.cache.Save()
}

// CronService schedules the refresher nightly.
type CronService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
	cron   *cron.Cron
}

func NewCronService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &CronService{config: cfg, pool: pool}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	loc, err := time.LoadLocation(config.DefaultTimeZone)
	if err != nil {
		return err
	}

	cachePath := config.DefaultCotizacionesFile
	if v, ok := s.config["cache_file"].(string); ok && v != "" {
		cachePath = v
	}
	baseURL := config.DefaultCotizacionesURL
	if v, ok := s.config["cotizaciones_url"].(string); ok && v != "" {
		baseURL = v
	}
	schedule := config.DefaultFXSchedule
	if v, ok := s.config["schedule"].(string); ok && v != "" {
		schedule = v
	}

	cache, err := fx.OpenCache(cachePath)
	if err != nil {
		return err
	}
	refresher := NewFXRefresher(s.pool, fx.NewClient(baseURL), cache)

	s.cron = cron.New(cron.WithLocation(loc))
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := refresher.Run(ctx); err != nil {
			log.Printf("[fx] actualización nocturna falló: %v", err)
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("Cron Service started (fx refresher at %q, %s)", schedule, config.DefaultTimeZone)
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return nil
}
