package dash

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Facturacion/api/boletas"
	"Facturacion/api/fx"

	"github.com/shopspring/decimal"
)

// How many surgeons get their own slice in the billing chart before the
// rest collapse into "Otras".
const maxCirujanosGrafico = 19

// Handler serves the dashboard views. Data comes from the session snapshot
// of the last upload when there is one, otherwise from the store.
type Handler struct {
	Sessions *SessionManager
	Store    *boletas.Store
	FXCache  *fx.Cache
}

func (h *Handler) rates() map[time.Time]decimal.Decimal {
	if h.FXCache == nil {
		return nil
	}
	return h.FXCache.Rates()
}

func (h *Handler) listado(r *http.Request) ([]boletas.Boleta, int, int, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID != "" {
		if snap, ok := h.Sessions.Get(userID); ok {
			return snap.Listado, snap.LastYear, snap.LastMonth, true
		}
	}

	idProf, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("id_profesional")))
	if err != nil || h.Store == nil {
		return nil, 0, 0, false
	}
	listado, err := h.Store.ListBoletas(r.Context(), idProf)
	if err != nil {
		log.Printf("[dash] no se pudieron leer las boletas del profesional %d: %v", idProf, err)
		return nil, 0, 0, false
	}
	lastYear, lastMonth := 0, 0
	for _, b := range listado {
		if b.PeriodoAnio > lastYear || (b.PeriodoAnio == lastYear && b.PeriodoMes > lastMonth) {
			lastYear, lastMonth = b.PeriodoAnio, b.PeriodoMes
		}
	}
	return listado, lastYear, lastMonth, true
}

type resumenResponse struct {
	Saldos                 []SaldoMensual        `json:"saldos_mensuales"`
	ImportePendiente       decimal.Decimal       `json:"importe_pendiente"`
	BoletaMayor            *decimal.Decimal      `json:"boleta_mayor,omitempty"`
	BoletaMenor            *decimal.Decimal      `json:"boleta_menor,omitempty"`
	BoletasParciales       int                   `json:"boletas_parciales"`
	BoletasConDebitos      int                   `json:"boletas_con_debitos"`
	PorDiaSemana           []ItemDia             `json:"por_dia_semana"`
	GruposEtarios          []GrupoEtario         `json:"grupos_etarios"`
	ConteoPorCirujano      []ConteoNombre        `json:"conteo_por_cirujano"`
	ConteoPorHospital      []ConteoNombre        `json:"conteo_por_hospital"`
	FacturacionPorCirujano []FacturacionCirujano `json:"facturacion_por_cirujano"`
	MontosPorPeriodo       []MontosPeriodo       `json:"montos_por_periodo"`
	ResumenPorPeriodo      []ResumenPeriodo      `json:"resumen_por_periodo"`
	MejorPeriodo           *MejorPeriodo         `json:"mejor_periodo,omitempty"`
	FacturacionUSD         []FacturacionUSD      `json:"facturacion_usd"`
	EntidadesPublicas      []boletas.Entidad     `json:"entidades_publicas"`
	EntidadesPrivadas      []boletas.Entidad     `json:"entidades_privadas"`
	PeriodosPrevios        []string              `json:"periodos_previos"`
	Cirujanos              []string              `json:"cirujanos"`
	Hospitales             []string              `json:"hospitales"`
}

// HandleResumen builds the full dashboard for one listing.
func (h *Handler) HandleResumen(w http.ResponseWriter, r *http.Request) {
	listado, lastYear, lastMonth, ok := h.listado(r)
	if !ok {
		http.Error(w, "no hay datos para la sesión", http.StatusNotFound)
		return
	}

	resp := resumenResponse{
		Saldos:                 GetSaldosMensuales(listado),
		ImportePendiente:       GetImportePendiente(listado),
		BoletasParciales:       len(GetBoletasParciales(listado)),
		BoletasConDebitos:      len(GetBoletasConDebitos(listado)),
		PorDiaSemana:           CantidadBoletasDiaSemana(listado),
		GruposEtarios:          GetEdadesPromedio(listado),
		ConteoPorCirujano:      CantidadBoletasPorCirujano(listado),
		ConteoPorHospital:      CantidadBoletasPorHospital(listado),
		FacturacionPorCirujano: agruparOtras(FacturacionPorCirujano(listado)),
		MontosPorPeriodo:       GetMontosPorPeriodo(listado, lastYear, lastMonth),
		ResumenPorPeriodo:      ResumenPorPeriodo(listado),
		EntidadesPublicas:      EntidadesPublicas(listado),
		EntidadesPrivadas:      EntidadesPrivadas(listado),
		PeriodosPrevios:        GetPeriodosPrevios(listado),
		Cirujanos:              CirujanosDisponibles(listado),
		Hospitales:             HospitalesDisponibles(listado),
	}
	if mayor, ok := BoletaMayorValor(listado); ok {
		resp.BoletaMayor = &mayor
	}
	if menor, ok := BoletaMenorValor(listado); ok {
		resp.BoletaMenor = &menor
	}
	rates := h.rates()
	resp.FacturacionUSD = GetFacturacionEnUSD(listado, rates)
	if mejor, ok := GetMejorPeriodo(listado, rates); ok {
		resp.MejorPeriodo = &mejor
	}

	writeJSON(w, resp)
}

// agruparOtras keeps the largest shares and folds the tail into one entry.
func agruparOtras(items []FacturacionCirujano) []FacturacionCirujano {
	if len(items) <= maxCirujanosGrafico {
		return items
	}
	agrupados := make([]FacturacionCirujano, maxCirujanosGrafico, maxCirujanosGrafico+1)
	copy(agrupados, items[:maxCirujanosGrafico])

	otras := FacturacionCirujano{Cirujano: "Otras"}
	for _, item := range items[maxCirujanosGrafico:] {
		otras.Monto = otras.Monto.Add(item.Monto)
		otras.Porcentaje = otras.Porcentaje.Add(item.Porcentaje)
	}
	otras.Porcentaje = otras.Porcentaje.Round(2)
	return append(agrupados, otras)
}

type periodoResponse struct {
	Periodo    string                  `json:"periodo"`
	Boletas    []boletas.Boleta        `json:"boletas"`
	Saldos     []SaldoMensual          `json:"saldos"`
	Semanas    []ItemSemana            `json:"semanas"`
	Diferencia *DiferenciaMejorPeriodo `json:"diferencia_mejor_periodo,omitempty"`
}

// HandlePeriodo shows one period in detail, including how it compares
// against the best period on record.
func (h *Handler) HandlePeriodo(w http.ResponseWriter, r *http.Request) {
	listado, _, _, ok := h.listado(r)
	if !ok {
		http.Error(w, "no hay datos para la sesión", http.StatusNotFound)
		return
	}
	periodo := strings.TrimSpace(r.URL.Query().Get("periodo"))
	filtradas := GetBoletasPorPeriodo(listado, periodo)
	if len(filtradas) == 0 {
		http.Error(w, "no hay boletas para el periodo", http.StatusNotFound)
		return
	}

	anio, mes := filtradas[0].PeriodoAnio, filtradas[0].PeriodoMes
	resp := periodoResponse{
		Periodo: periodo,
		Boletas: filtradas,
		Saldos:  GetSaldosMensuales(filtradas),
		Semanas: CantidadBoletasSemanales(filtradas, anio, mes),
	}
	if dif, ok := GetDiferenciaMejorPeriodo(listado, h.rates(), anio, mes); ok {
		resp.Diferencia = &dif
	}
	writeJSON(w, resp)
}

type vistaFiltradaResponse struct {
	Filtro  string           `json:"filtro"`
	Boletas []boletas.Boleta `json:"boletas"`
	Saldos  []SaldoMensual   `json:"saldos"`
}

// HandleCirujano shows every ticket of one surgeon.
func (h *Handler) HandleCirujano(w http.ResponseWriter, r *http.Request) {
	h.vistaFiltrada(w, r, "cirujano", GetBoletasPorCirujano)
}

// HandleHospital shows every ticket of one hospital.
func (h *Handler) HandleHospital(w http.ResponseWriter, r *http.Request) {
	h.vistaFiltrada(w, r, "hospital", GetBoletasPorHospital)
}

func (h *Handler) vistaFiltrada(w http.ResponseWriter, r *http.Request, param string,
	filtrar func([]boletas.Boleta, string) []boletas.Boleta) {

	listado, _, _, ok := h.listado(r)
	if !ok {
		http.Error(w, "no hay datos para la sesión", http.StatusNotFound)
		return
	}
	valor := strings.TrimSpace(r.URL.Query().Get(param))
	if valor == "" {
		http.Error(w, "falta el parámetro "+param, http.StatusBadRequest)
		return
	}
	filtradas := filtrar(listado, valor)
	writeJSON(w, vistaFiltradaResponse{
		Filtro:  valor,
		Boletas: filtradas,
		Saldos:  GetSaldosMensuales(filtradas),
	})
}

// HandleCerrarSesion drops the session snapshot.
func (h *Handler) HandleCerrarSesion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if userID := strings.TrimSpace(r.FormValue("user_id")); userID != "" {
		h.Sessions.Delete(userID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
