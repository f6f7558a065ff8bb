package boletas

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"Facturacion/internal/progress"
	"Facturacion/internal/usage"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	boletasDefaultBucket = "facturacion"
	boletasPrefix        = "boletas/"
	boletasDefaultRegion = "sa-east-1"
	maxUploadBytes       = 100 << 20 // 100 MB
)

func boletasBucket() string {
	if b := strings.TrimSpace(os.Getenv("BOLETAS_S3_BUCKET")); b != "" {
		return b
	}
	return boletasDefaultBucket
}

func boletasRegion() string {
	if r := strings.TrimSpace(os.Getenv("BOLETAS_S3_REGION")); r != "" {
		return r
	}
	return boletasDefaultRegion
}

// isS3Enabled reads BOLETAS_S3_ENABLED; archival is opt-in.
func isS3Enabled() bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv("BOLETAS_S3_ENABLED")))
	return v == "1" || v == "true" || v == "yes"
}

func archiveToS3(ctx context.Context, key string, body []byte) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(boletasRegion()))
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(boletasBucket()),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("upload to s3 (bucket %s, key %s): %w", boletasBucket(), key, err)
	}
	return nil
}

// SnapshotPublisher receives the full result of a successful ingestion so
// the dashboard can serve it without recomputation. Implemented by the dash
// session store.
type SnapshotPublisher interface {
	Publish(userID string, listado []Boleta)
}

// Handler owns the upload endpoint: multipart file in, ingestion +
// optional reconciliation, usage accounting, optional S3 archival.
type Handler struct {
	Hub       *progress.Hub
	Pool      *pgxpool.Pool
	Counter   *usage.Counter
	Snapshots SnapshotPublisher
}

type uploadResponse struct {
	Mensaje  string   `json:"mensaje"`
	Boletas  int      `json:"boletas,omitempty"`
	Celdas   []string `json:"celdas_problematicas,omitempty"`
	CorridaN int      `json:"corrida_del_dia,omitempty"`
}

// HandleUpload processes POST /boletas/upload. Form fields: "file" (the
// export), "user_id" (progress routing), optional "id_profesional" (enables
// reconciliation against the store).
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, uploadResponse{Mensaje: "Por favor seleccioná un archivo."})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, uploadResponse{Mensaje: "Por favor seleccioná un archivo."})
		return
	}

	userID := strings.TrimSpace(r.FormValue("user_id"))
	sink := progress.Discard
	if h.Hub != nil && userID != "" {
		sink = h.Hub.SinkFor(userID)
	}

	pipeline := NewPipeline(sink)
	listado, err := pipeline.Ingest(r.Context(), data, header.Filename)
	if err != nil {
		var formatErr *ExcelFormatError
		if errors.As(err, &formatErr) {
			writeJSON(w, http.StatusBadRequest, uploadResponse{
				Mensaje: "El archivo Excel tiene celdas con formato incorrecto.",
				Celdas:  formatErr.Celdas,
			})
			return
		}
		// Fatal parse errors get a generic message; detail stays in the log.
		log.Printf("[boletas] error procesando %s: %v", header.Filename, err)
		writeJSON(w, http.StatusUnprocessableEntity, uploadResponse{
			Mensaje: "Ocurrió un error al procesar el archivo. Por favor, intente nuevamente.",
		})
		return
	}

	if idProf := strings.TrimSpace(r.FormValue("id_profesional")); idProf != "" && h.Pool != nil {
		id, convErr := strconv.Atoi(idProf)
		if convErr != nil {
			writeJSON(w, http.StatusBadRequest, uploadResponse{Mensaje: "id_profesional inválido."})
			return
		}
		if err := NewReconciler(h.Pool, sink).Reconcile(r.Context(), listado, id); err != nil {
			log.Printf("[boletas] error reconciliando %s: %v", header.Filename, err)
			writeJSON(w, http.StatusInternalServerError, uploadResponse{
				Mensaje: PqUserFriendlyMessage(err),
			})
			return
		}
	}

	if h.Snapshots != nil && userID != "" {
		h.Snapshots.Publish(userID, listado)
	}

	corrida := 0
	if h.Counter != nil {
		if n, err := h.Counter.Increment(time.Now()); err != nil {
			log.Printf("[boletas] no se pudo actualizar el contador de uso: %v", err)
		} else {
			corrida = n
		}
	}

	if isS3Enabled() {
		hash := fmt.Sprintf("%x", sha256.Sum256(data))
		key := fmt.Sprintf("%s%s%s", boletasPrefix, hash, filepath.Ext(header.Filename))
		if err := archiveToS3(r.Context(), key, data); err != nil {
			// Archival is best effort; the ingestion already succeeded.
			log.Printf("[boletas] no se pudo archivar %s: %v", header.Filename, err)
		}
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Mensaje:  "Archivo subido exitosamente.",
		Boletas:  len(listado),
		CorridaN: corrida,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
