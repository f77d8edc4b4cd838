// Package httpapi exposes the pipeline over HTTP: a PDF upload
// endpoint and a health check, following the teacher's Handler/
// SetupRoutes shape but built around code extraction instead of
// invoice OCR.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/leitorclaro/boleto-pipeline/internal/auth"
	"github.com/leitorclaro/boleto-pipeline/internal/classifier"
	"github.com/leitorclaro/boleto-pipeline/internal/config"
	"github.com/leitorclaro/boleto-pipeline/internal/db"
	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
	"github.com/leitorclaro/boleto-pipeline/internal/metadata"
	"github.com/leitorclaro/boleto-pipeline/internal/pipeline"
	"github.com/leitorclaro/boleto-pipeline/internal/soap"
	"github.com/leitorclaro/boleto-pipeline/internal/storage"
	"github.com/leitorclaro/boleto-pipeline/internal/suppliers"
	"github.com/leitorclaro/boleto-pipeline/internal/tempstore"
	"github.com/leitorclaro/boleto-pipeline/internal/workerpool"
	"go.uber.org/zap"
)

// MaxUploadSize bounds a single PDF upload.
const MaxUploadSize = 20 * 1024 * 1024

// Version is the service's reported API version.
const Version = "1.0.0"

// Handler wires the pipeline and its supporting collaborators to the
// HTTP surface.
type Handler struct {
	log       *zap.Logger
	cfg       *config.Config
	pipe      *pipeline.Pipeline
	pool      *workerpool.Pool
	soap      *soap.Client
	suppliers *suppliers.Directory
	archive   *storage.Archive // optional, may be nil
	subs      *db.SubmissionStore // optional, may be nil
}

// New builds a Handler. archive and subs may be nil when MinIO or the
// database are not configured — both are optional collaborators.
func New(log *zap.Logger, cfg *config.Config, pipe *pipeline.Pipeline, pool *workerpool.Pool, soapClient *soap.Client, dir *suppliers.Directory, archive *storage.Archive, subs *db.SubmissionStore) *Handler {
	return &Handler{
		log:       log,
		cfg:       cfg,
		pipe:      pipe,
		pool:      pool,
		soap:      soapClient,
		suppliers: dir,
		archive:   archive,
		subs:      subs,
	}
}

// SetupRoutes configures the HTTP routes.
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/boletos/extract", h.ExtractBarcode).Methods(http.MethodPost)
	router.HandleFunc("/api/boletos/submissions", h.RecentSubmissions).Methods(http.MethodGet)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	return router
}

// HealthResponse reports the process's operational status and the
// availability of its optional collaborators.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Memory    MemoryStats       `json:"memory"`
	Tesseract ServiceStatus     `json:"tesseract"`
	Database  ServiceStatus     `json:"database"`
	Storage   ServiceStatus     `json:"storage"`
	Pipeline  map[string]string `json:"pipeline"`
}

// MemoryStats reports runtime memory usage.
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus reports one optional dependency's availability.
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health reports the process's status and its dependencies'
// reachability, mirroring the teacher's enhanced health endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	tesseractStatus := h.checkTesseract()
	databaseStatus := ServiceStatus{Available: h.subs != nil}
	if h.subs == nil {
		databaseStatus.Error = "submission audit log not configured"
	}
	storageStatus := ServiceStatus{Available: h.archive != nil}
	if h.archive == nil {
		storageStatus.Error = "PDF archive not configured"
	}

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Tesseract: tesseractStatus,
		Database:  databaseStatus,
		Storage:   storageStatus,
		Pipeline: map[string]string{
			"renderDPI": fmt.Sprintf("%d", h.cfg.Pipeline.RenderDPI),
			"ocrLanguage": h.cfg.OCR.Language,
		},
	}

	if !tesseractStatus.Available {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) checkTesseract() ServiceStatus {
	output, err := exec.Command("tesseract", "--version").CombinedOutput()
	if err != nil {
		return ServiceStatus{Available: false, Error: "tesseract not found or not executable"}
	}
	version := "unknown"
	if lines := strings.Split(string(output), "\n"); len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}
	return ServiceStatus{Available: true, Version: version}
}

// ExtractResponse is the JSON body returned for every extraction
// attempt, successful or not.
type ExtractResponse struct {
	Success   bool       `json:"success"`
	Code      string     `json:"code,omitempty"`
	Kind      string     `json:"kind,omitempty"`
	Source    string     `json:"source,omitempty"`
	Status    string     `json:"status"`
	Reason    string     `json:"reason,omitempty"`
	FlowID    string     `json:"flow_id,omitempty"`
	Submitted bool       `json:"submitted"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Value     string     `json:"value,omitempty"`
}

// ExtractBarcode handles POST /api/boletos/extract: accepts a PDF
// upload, runs it through the pipeline, and — if a code is found and a
// SOAP client is configured — submits it downstream.
func (h *Handler) ExtractBarcode(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	if _, err := auth.GetClaimsFromContext(ctx); err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized: "+err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "file too large or invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "no file provided (use 'file' field)")
		return
	}
	defer file.Close()

	pdfBytes, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to read uploaded file")
		return
	}

	temp, err := tempstore.Create(h.cfg.Pipeline.TempDir, "boleto", pdfBytes)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}
	defer func() {
		if err := temp.Close(); err != nil {
			h.log.Warn("temp file cleanup failed", zap.Error(err))
		}
	}()

	var result pipeline.Result
	runErr := h.pool.Run(ctx, func() {
		result, err = h.pipe.Extract(pdfBytes, header.Filename)
	})
	if runErr != nil {
		h.sendError(w, http.StatusServiceUnavailable, "worker pool unavailable: "+runErr.Error())
		return
	}

	if err != nil {
		h.handleExtractFailure(ctx, w, header.Filename, err)
		return
	}

	flowID := uuid.New().String()
	response := ExtractResponse{
		Success: true,
		Code:    string(result.Code),
		Kind:    result.Kind.String(),
		Source:  result.Source.String(),
		Status:  "found",
		FlowID:  flowID,
	}

	if result.Kind == digitstring.KindBoleto && result.Code.Len() == 47 {
		if fields, err := classifier.DecodeBoletoFields(result.Code); err == nil {
			response.DueDate = fields.DueDate
			response.Value = fields.Value.StringFixed(2)
		}
	}

	if h.soap != nil {
		h.submit(ctx, flowID, pdfBytes, result, &response)
	}

	if h.archive != nil {
		if _, err := h.archive.PutPDF(ctx, flowID, bytes.NewReader(pdfBytes), int64(len(pdfBytes))); err != nil {
			h.log.Warn("archival of source PDF failed", zap.String("flowID", flowID), zap.Error(err))
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) submit(ctx context.Context, flowID string, pdfBytes []byte, result pipeline.Result, response *ExtractResponse) {
	fields := metadata.Extract(string(pdfBytes))

	var idpgto *int
	if h.suppliers != nil && fields.TaxID != "" {
		if id, ok := h.suppliers.Lookup(fields.TaxID); ok {
			idpgto = &id
		}
	}

	soapFlowID := flowID
	if fields.FlowID != "" {
		soapFlowID = fields.FlowID
	}

	soapResp, err := h.soap.Submit(ctx, soap.Request{
		FlowID:        soapFlowID,
		Code:          result.Code,
		Source:        result.Source,
		IDPgto:        idpgto,
		SupplierTaxID: fields.TaxID,
	})

	status := "submitted"
	reason := ""
	if err != nil {
		status = "submit_failed"
		reason = err.Error()
	} else {
		response.Submitted = true
	}

	if h.subs != nil {
		sub := &db.Submission{
			Filename: flowID,
			Code:     string(result.Code),
			Kind:     result.Kind.String(),
			Source:   result.Source.String(),
			IDPgto:   idpgto,
			Status:   status,
			Reason:   reason,
		}
		if recErr := h.subs.Record(ctx, sub); recErr != nil {
			h.log.Warn("submission audit-log write failed", zap.Error(recErr))
		} else if err == nil {
			if markErr := h.subs.MarkSubmitted(ctx, sub.ID, soapResp); markErr != nil {
				h.log.Warn("submission audit-log update failed", zap.Error(markErr))
			}
		}
	}

	if err != nil {
		response.Reason = reason
	}
}

func (h *Handler) handleExtractFailure(ctx context.Context, w http.ResponseWriter, filename string, err error) {
	var notFound *pipeline.NotFoundError
	status := "error"
	reason := err.Error()
	httpStatus := http.StatusUnprocessableEntity

	if asNotFound(err, &notFound) {
		status = "not_found"
		httpStatus = http.StatusOK
	}

	if h.subs != nil {
		sub := &db.Submission{Filename: filename, Status: status, Reason: reason}
		if recErr := h.subs.Record(ctx, sub); recErr != nil {
			h.log.Warn("submission audit-log write failed", zap.Error(recErr))
		}
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(ExtractResponse{
		Success: false,
		Status:  status,
		Reason:  reason,
	})
}

func asNotFound(err error, target **pipeline.NotFoundError) bool {
	return errors.As(err, target)
}

// RecentSubmissions returns the most recent audit-log entries for an
// operator dashboard.
func (h *Handler) RecentSubmissions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.subs == nil {
		h.sendError(w, http.StatusServiceUnavailable, "submission audit log not configured")
		return
	}

	submissions, err := h.subs.Recent(r.Context(), 100)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":     true,
		"submissions": submissions,
		"count":       len(submissions),
	})
}

func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
