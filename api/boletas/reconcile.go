package boletas

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"Facturacion/internal/progress"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Reconciler matches normalized boletas against the persisted store by
// ticket number and applies inserts or field-preserving updates inside one
// all-or-nothing transaction.
type Reconciler struct {
	pool *pgxpool.Pool
	sink progress.Sink
}

func NewReconciler(pool *pgxpool.Pool, sink progress.Sink) *Reconciler {
	if sink == nil {
		sink = progress.Discard
	}
	return &Reconciler{pool: pool, sink: sink}
}

type storedBoleta struct {
	ID        int64
	IdEntidad int
	Fecha     time.Time
	Periodo   string
	Hospital  string
	Facturado decimal.Decimal
	Cobrado   decimal.Decimal
	Debitado  decimal.Decimal
}

// sinIguales-style comparison: only the fields the export can legitimately
// change. Storage identity (ID) is never part of it.
func sinCambios(existente storedBoleta, nueva Boleta) bool {
	return existente.IdEntidad == nueva.IdEntidad &&
		existente.Fecha.Equal(nueva.Fecha) &&
		existente.Periodo == nueva.Periodo &&
		existente.Hospital == nueva.Hospital &&
		existente.Facturado.Equal(nueva.Facturado) &&
		existente.Cobrado.Equal(nueva.Cobrado) &&
		existente.Debitado.Equal(nueva.Debitado)
}

// Reconcile upserts the batch for one professional. Payers are resolved or
// created first (durable within the transaction, so later rows of the same
// run see them). Every mutation of the run commits together or not at all.
// Progress is reported per record and a final 100 is guaranteed on both the
// success and the failure path.
func (r *Reconciler) Reconcile(ctx context.Context, listado []Boleta, idProfesional int) error {
	defer r.sink.Send(100)

	if len(listado) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("no se pudo iniciar la transacción: %w", err)
	}
	defer tx.Rollback(ctx)

	// Payer ids already resolved during this run, keyed by code.
	entidades := make(map[int]int)

	batch := &pgx.Batch{}
	total := len(listado)

	for i, b := range listado {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		idEntidad, ok := entidades[b.EntidadCodigo]
		if !ok {
			idEntidad, err = r.obtenerOCrearEntidad(ctx, tx, b.EntidadCodigo, b.EntidadNombre)
			if err != nil {
				return err
			}
			entidades[b.EntidadCodigo] = idEntidad
		}
		b.IdEntidad = idEntidad
		b.IdProfesional = idProfesional

		existente, err := buscarPorNumero(ctx, tx, b.NumeroBoleta)
		switch {
		case err == nil:
			if !sinCambios(existente, b) {
				// Overwrite mutable fields in place; the stored identity is
				// never reassigned.
				batch.Queue(`
					UPDATE boletas
					SET id_entidad = $1, cirujano = $2, hospital = $3, fecha = $4,
					    periodo = $5, periodo_anio = $6, periodo_mes = $7, edad = $8,
					    facturado = $9, cobrado = $10, debitado = $11, saldo = $12,
					    id_profesional = $13
					WHERE id = $14`,
					b.IdEntidad, b.Cirujano, b.Hospital, b.Fecha,
					b.Periodo, b.PeriodoAnio, b.PeriodoMes, b.Edad,
					b.Facturado, b.Cobrado, b.Debitado, b.Saldo,
					b.IdProfesional, existente.ID)
			}
		case errors.Is(err, pgx.ErrNoRows):
			batch.Queue(`
				INSERT INTO boletas
					(numero_boleta, id_entidad, cirujano, hospital, fecha, periodo,
					 periodo_anio, periodo_mes, edad, facturado, cobrado, debitado,
					 saldo, id_profesional)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
				b.NumeroBoleta, b.IdEntidad, b.Cirujano, b.Hospital, b.Fecha, b.Periodo,
				b.PeriodoAnio, b.PeriodoMes, b.Edad, b.Facturado, b.Cobrado, b.Debitado,
				b.Saldo, b.IdProfesional)
		default:
			return fmt.Errorf("no se pudo consultar la boleta %d: %w", b.NumeroBoleta, err)
		}

		r.sink.Send((i + 1) * 100 / total)
	}

	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		var execErr error
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil && execErr == nil {
				execErr = fmt.Errorf("fallo al aplicar el lote en la posición %d: %w", i, err)
			}
		}
		// Close the batch result before any other operation on the tx.
		br.Close()
		if execErr != nil {
			return execErr
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("no se pudo confirmar la transacción: %w", err)
	}

	log.Printf("[boletas] reconciliadas %d boletas para el profesional %d", total, idProfesional)
	return nil
}

func (r *Reconciler) obtenerOCrearEntidad(ctx context.Context, tx pgx.Tx, codigo int, nombre string) (int, error) {
	var id int
	err := tx.QueryRow(ctx, `SELECT id FROM entidades WHERE codigo = $1`, codigo).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("no se pudo consultar la entidad %d: %w", codigo, err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO entidades (codigo, nombre) VALUES ($1, $2) RETURNING id`,
		codigo, nombre).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("no se pudo crear la entidad %d: %w", codigo, err)
	}
	return id, nil
}

func buscarPorNumero(ctx context.Context, tx pgx.Tx, numero int64) (storedBoleta, error) {
	var s storedBoleta
	err := tx.QueryRow(ctx, `
		SELECT id, id_entidad, fecha, COALESCE(periodo, ''), COALESCE(hospital, ''),
		       facturado, cobrado, debitado
		FROM boletas
		WHERE numero_boleta = $1`, numero).
		Scan(&s.ID, &s.IdEntidad, &s.Fecha, &s.Periodo, &s.Hospital,
			&s.Facturado, &s.Cobrado, &s.Debitado)
	return s, err
}
