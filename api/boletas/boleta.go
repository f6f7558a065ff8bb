package boletas

import (
	"time"

	"github.com/shopspring/decimal"
)

// Boleta is one ticketed billing line item for a medical service, as
// normalized from a spreadsheet row.
type Boleta struct {
	ID            int64           `json:"id,omitempty"`
	NumeroBoleta  int64           `json:"numero_boleta"`
	EntidadCodigo int             `json:"entidad_codigo"`
	EntidadNombre string          `json:"entidad_nombre"`
	Cirujano      string          `json:"cirujano,omitempty"`
	Hospital      string          `json:"hospital,omitempty"`
	Fecha         time.Time       `json:"fecha"`
	Periodo       string          `json:"periodo"`
	PeriodoAnio   int             `json:"periodo_anio"`
	PeriodoMes    int             `json:"periodo_mes"`
	Edad          int             `json:"edad"`
	Facturado     decimal.Decimal `json:"facturado"`
	Cobrado       decimal.Decimal `json:"cobrado"`
	Debitado      decimal.Decimal `json:"debitado"`
	// Saldo is always recomputed as Facturado - (Cobrado + Debitado),
	// never read from the source file.
	Saldo         decimal.Decimal `json:"saldo"`
	IdEntidad     int             `json:"id_entidad,omitempty"`
	IdProfesional int             `json:"id_profesional,omitempty"`
}

// Entidad is the payer counterparty responsible for reimbursing a boleta.
// Codigo is the stable identity; Nombre the display name without any
// parenthetical qualifier.
type Entidad struct {
	ID     int    `json:"id,omitempty"`
	Codigo int    `json:"codigo"`
	Nombre string `json:"nombre"`
}

// PeriodoDate returns the first day of the boleta's billing period.
func (b Boleta) PeriodoDate() time.Time {
	return time.Date(b.PeriodoAnio, time.Month(b.PeriodoMes), 1, 0, 0, 0, 0, time.UTC)
}

// PeriodoLabel formats the billing period the way the dashboard keys it.
func (b Boleta) PeriodoLabel() string {
	return PeriodoLabel(b.PeriodoAnio, b.PeriodoMes)
}
