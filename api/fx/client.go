package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Cotizacion is one published quote of the official USD rate. Fecha uses
// the upstream "2006-01-02" format.
type Cotizacion struct {
	Fecha  string          `json:"fecha"`
	Casa   string          `json:"casa"`
	Compra decimal.Decimal `json:"compra"`
	Venta  decimal.Decimal `json:"venta"`
}

// Client fetches the official quote history from the cotizaciones API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads the full quote history. Entries that do not match the
// expected schema are dropped rather than guessed at; only well-formed
// quotes contribute to any average.
func (c *Client) Fetch(ctx context.Context) ([]Cotizacion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("no se pudo crear la petición de cotizaciones: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("no se pudieron obtener las cotizaciones: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cotizaciones: respuesta inesperada %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer la respuesta de cotizaciones: %w", err)
	}
	return decodeCotizaciones(body)
}

func decodeCotizaciones(data []byte) ([]Cotizacion, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("la respuesta de cotizaciones no es una lista válida: %w", err)
	}

	cotizaciones := make([]Cotizacion, 0, len(raw))
	dropped := 0
	for _, entry := range raw {
		var c Cotizacion
		if err := json.Unmarshal(entry, &c); err != nil {
			dropped++
			continue
		}
		if c.Fecha == "" || c.Compra.IsZero() && c.Venta.IsZero() {
			dropped++
			continue
		}
		if _, err := time.Parse("2006-01-02", c.Fecha); err != nil {
			dropped++
			continue
		}
		cotizaciones = append(cotizaciones, c)
	}
	if dropped > 0 {
		log.Printf("[fx] %d cotizaciones descartadas por formato inválido", dropped)
	}
	return cotizaciones, nil
}

// PromedioMensual averages the daily mid quote, (compra+venta)/2, over the
// quotes that fall inside the given period.
func PromedioMensual(cotizaciones []Cotizacion, anio, mes int) (decimal.Decimal, error) {
	dos := decimal.NewFromInt(2)
	suma := decimal.Zero
	dias := 0
	for _, c := range cotizaciones {
		fecha, err := time.Parse("2006-01-02", c.Fecha)
		if err != nil {
			continue
		}
		if fecha.Year() != anio || int(fecha.Month()) != mes {
			continue
		}
		suma = suma.Add(c.Compra.Add(c.Venta).Div(dos))
		dias++
	}
	if dias == 0 {
		return decimal.Zero, fmt.Errorf("no hay cotizaciones para el periodo %d-%02d", anio, mes)
	}
	return suma.Div(decimal.NewFromInt(int64(dias))), nil
}
