package boletas

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"Facturacion/internal/config"
	"Facturacion/internal/progress"

	"github.com/google/uuid"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// Rows at nesting depth <= 2 are the export's title band and are skipped
// unconditionally (1-based row numbers 1..3).
const headerDepth = 3

// Pipeline reads a whole billing export into normalized boletas. It is a
// pure full-file scan: no persistence, only progress notifications.
type Pipeline struct {
	sink progress.Sink
}

func NewPipeline(sink progress.Sink) *Pipeline {
	if sink == nil {
		sink = progress.Discard
	}
	return &Pipeline{sink: sink}
}

// Ingest scans the file end to end and returns every normalized boleta.
// Soft cell errors never abort the scan; if any accumulated, the result is
// discarded and a single *ExcelFormatError lists every offending cell.
// Fatal format errors (bad date, bad payer composite) abort immediately.
// The sink always receives a final 100, on success and failure alike.
func (p *Pipeline) Ingest(ctx context.Context, data []byte, fileName string) ([]Boleta, error) {
	runID := uuid.New()
	log.Printf("[boletas] run %s: ingesting %s (%d bytes)", runID, fileName, len(data))

	defer p.sink.Send(100)

	rows, err := readRows(data, fileName)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer el archivo: %w", err)
	}

	boletas := make([]Boleta, 0, config.EstimatedRowsPerFile)
	var errs CeldasProblematicas
	lastReported := 0

	for i, cells := range rows {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fila := i + 1
		if fila <= headerDepth {
			continue
		}

		b, ok, err := NormalizeRow(cells, fila, &errs)
		if err != nil {
			log.Printf("[boletas] run %s: fila %d: %v", runID, fila, err)
			return nil, err
		}
		if !ok {
			continue
		}
		boletas = append(boletas, b)

		// Report every ProgressInterval rows, capped below 100 until the
		// file is fully read.
		if len(boletas)-lastReported >= config.ProgressInterval {
			lastReported = len(boletas)
			pct := len(boletas) * 95 / config.EstimatedRowsPerFile
			if pct > 95 {
				pct = 95
			}
			p.sink.Send(pct)
		}
	}

	if errs.Any() {
		log.Printf("[boletas] run %s: %d celdas con formato incorrecto", runID, len(errs.Celdas))
		return nil, &ExcelFormatError{Celdas: errs.Celdas}
	}

	log.Printf("[boletas] run %s: %d boletas normalizadas", runID, len(boletas))
	return boletas, nil
}

// readRows materializes the first sheet as rows of trimmed cell strings.
// Modern .xlsx files go through excelize; legacy .xls through xlsReader.
func readRows(data []byte, fileName string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(fileName), ".xls") {
		return readXLSRows(data)
	}
	return readXLSXRows(data)
}

func readXLSXRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("el archivo no tiene hojas")
	}
	return f.GetRows(sheets[0])
}

// readXLSRows handles the legacy BIFF format. xlsReader only opens files,
// so the upload is spooled to a temp file first.
func readXLSRows(data []byte) ([][]string, error) {
	tmpFile, err := os.CreateTemp("", "boletas-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return nil, err
	}
	tmpFile.Close()

	book, err := xls.OpenFile(tmpFile.Name())
	if err != nil {
		return nil, err
	}

	sheet, err := book.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("el archivo no tiene hojas")
	}

	rows := [][]string{}
	for _, xlsRow := range sheet.GetRows() {
		rowData := []string{}
		for _, col := range xlsRow.GetCols() {
			rowData = append(rowData, col.GetString())
		}
		rows = append(rows, rowData)
	}
	return rows, nil
}
