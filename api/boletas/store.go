package boletas

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// Store is the query side of the persisted boletas: plain reads used by the
// dashboard when no freshly-ingested snapshot exists for the session.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// PqUserFriendlyMessage maps Postgres error codes to messages safe to show
// end users; the raw error stays in the logs for operators.
func PqUserFriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return "Ocurrió un error al procesar el archivo. Por favor, intente nuevamente."
	}
	switch pqErr.Code {
	case "23505":
		return "Ya existe un registro con el mismo valor único."
	case "23503":
		return "Algún dato referenciado no existe (actualice y vuelva a intentar)."
	case "23514":
		return "Algunos campos tienen valores inválidos. Verifique y vuelva a intentar."
	default:
		return "Error de base de datos al procesar la solicitud. Intente nuevamente."
	}
}

// ListBoletas returns every stored boleta for one professional, newest
// period first.
func (s *Store) ListBoletas(ctx context.Context, idProfesional int) ([]Boleta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.numero_boleta, e.codigo, e.nombre,
		       COALESCE(b.cirujano, ''), COALESCE(b.hospital, ''), b.fecha,
		       COALESCE(b.periodo, ''), b.periodo_anio, b.periodo_mes, b.edad,
		       b.facturado, b.cobrado, b.debitado, b.saldo, b.id_entidad
		FROM boletas b
		JOIN entidades e ON e.id = b.id_entidad
		WHERE b.id_profesional = $1
		ORDER BY b.periodo_anio DESC, b.periodo_mes DESC, b.numero_boleta`, idProfesional)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listado := []Boleta{}
	for rows.Next() {
		var b Boleta
		if err := rows.Scan(&b.ID, &b.NumeroBoleta, &b.EntidadCodigo, &b.EntidadNombre,
			&b.Cirujano, &b.Hospital, &b.Fecha,
			&b.Periodo, &b.PeriodoAnio, &b.PeriodoMes, &b.Edad,
			&b.Facturado, &b.Cobrado, &b.Debitado, &b.Saldo, &b.IdEntidad); err != nil {
			return nil, err
		}
		b.IdProfesional = idProfesional
		listado = append(listado, b)
	}
	return listado, rows.Err()
}

// ListEntidades returns every known payer ordered by code.
func (s *Store) ListEntidades(ctx context.Context) ([]Entidad, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, codigo, nombre FROM entidades ORDER BY codigo`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entidades := []Entidad{}
	for rows.Next() {
		var e Entidad
		if err := rows.Scan(&e.ID, &e.Codigo, &e.Nombre); err != nil {
			return nil, err
		}
		entidades = append(entidades, e)
	}
	return entidades, rows.Err()
}
