package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/internal/service"
	"github.com/sitebook/sitebook-api/internal/source"
	"go.uber.org/zap"
)

const maxSourceLabel = 200

type DataHandler struct {
	importService  *service.ImportService
	exportService  *service.ExportService
	summaryService *service.SummaryService
	backupService  *service.BackupService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewDataHandler(
	importService *service.ImportService,
	exportService *service.ExportService,
	summaryService *service.SummaryService,
	backupService *service.BackupService,
	maxUploadBytes int64,
	logger *zap.Logger,
) *DataHandler {
	return &DataHandler{
		importService:  importService,
		exportService:  exportService,
		summaryService: summaryService,
		backupService:  backupService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Import godoc
// @Summary Replace all data with a snapshot
// @Description Deletes every managed table and loads the snapshot in one transaction. Either everything is replaced or nothing changes.
// @Tags Data
// @Accept json
// @Produce json
// @Param source query string false "Label recorded on the import run"
// @Param request body domain.Snapshot true "Snapshot document"
// @Success 200 {object} domain.ImportResult
// @Failure 400 {object} domain.APIError "Body is not a snapshot"
// @Failure 409 {object} domain.ImportResult "Another import is running"
// @Failure 413 {object} domain.APIError
// @Failure 422 {object} domain.ImportResult "Import rolled back"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /data/import [post]
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	snap, err := source.DecodeJSON(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("snapshot exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	label := "api"
	if q := r.URL.Query().Get("source"); q != "" {
		label = truncateRunes("api:"+q, maxSourceLabel)
	}

	result, err := h.importService.Import(r.Context(), snap, label)
	h.respondImport(w, result, err)
}

// truncateRunes cuts s to at most n characters without splitting a UTF-8 sequence
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// respondImport writes the import outcome; the body is always an ImportResult
func (h *DataHandler) respondImport(w http.ResponseWriter, result *domain.ImportResult, err error) {
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, result)
	case errors.Is(err, service.ErrImportInProgress):
		if result == nil {
			result = &domain.ImportResult{Error: err.Error()}
		}
		respondJSON(w, http.StatusConflict, result)
	case result != nil:
		respondJSON(w, http.StatusUnprocessableEntity, result)
	default:
		h.logger.Error("import could not be started", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ImportResult{
			Error: "import could not be started",
		})
	}
}

// ListRuns godoc
// @Summary List import runs
// @Description Returns import runs newest first
// @Tags Data
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(running, committed, rolled_back)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ImportRunDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /data/import/runs [get]
func (h *DataHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := domain.ImportRunStatus(r.URL.Query().Get("status"))

	runs, err := h.importService.ListRuns(r.Context(), page, pageSize, status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to list import runs", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list import runs")
		return
	}

	respondJSON(w, http.StatusOK, runs)
}

// GetRun godoc
// @Summary Get import run
// @Tags Data
// @Produce json
// @Param id path string true "Run ID" format(uuid)
// @Success 200 {object} domain.ImportRunDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /data/import/runs/{id} [get]
func (h *DataHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid run ID: must be a valid UUID")
		return
	}

	run, err := h.importService.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			respondWithError(w, http.StatusNotFound, "Import run not found")
			return
		}
		h.logger.Error("failed to get import run", zap.Error(err), zap.String("run_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get import run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// Export godoc
// @Summary Export all data as a snapshot
// @Description Returns every managed table, soft-deleted tasks and resources included, as a snapshot that can be imported again
// @Tags Data
// @Produce json
// @Param pretty query bool false "Indent the document"
// @Success 200 {object} domain.Snapshot
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /data/export [get]
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.exportService.Export(r.Context(), "api")
	if err != nil {
		h.logger.Error("failed to export snapshot", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}

	filename := fmt.Sprintf("sitebook-snapshot-%s.json", time.Now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := source.EncodeJSON(w, snap, r.URL.Query().Get("pretty") == "true"); err != nil {
		// Headers are already sent
		h.logger.Warn("failed to write snapshot", zap.Error(err))
	}
}

// Summary godoc
// @Summary Summarize stored data
// @Description Row counts per entity and money totals, used to verify imports
// @Tags Data
// @Produce json
// @Success 200 {object} domain.SummaryDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /data/summary [get]
func (h *DataHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaryService.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to build summary", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// CreateBackup godoc
// @Summary Write a backup
// @Description Exports all data and stores it in the configured object storage
// @Tags Backups
// @Produce json
// @Success 201 {object} domain.BackupDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /data/backups [post]
func (h *DataHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	backup, err := h.backupService.Backup(r.Context())
	if err != nil {
		h.logger.Error("failed to write backup", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to write backup")
		return
	}

	respondJSON(w, http.StatusCreated, backup)
}

// ListBackups godoc
// @Summary List backups
// @Tags Backups
// @Produce json
// @Success 200 {array} domain.BackupDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /data/backups [get]
func (h *DataHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backupService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list backups", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list backups")
		return
	}

	respondJSON(w, http.StatusOK, backups)
}

// RestoreBackup godoc
// @Summary Restore a backup
// @Description Imports a stored backup, replacing all data. Requires the admin role.
// @Tags Backups
// @Accept json
// @Produce json
// @Param request body domain.RestoreBackupRequest true "Backup path"
// @Success 200 {object} domain.ImportResult
// @Failure 400 {object} domain.APIError
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.ImportResult
// @Failure 422 {object} domain.ImportResult
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /data/backups/restore [post]
func (h *DataHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	var req domain.RestoreBackupRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.backupService.Restore(r.Context(), req.Path)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrBackupNotFound):
		respondWithError(w, http.StatusNotFound, "Backup not found")
	case err != nil && result == nil && errors.Is(err, domain.ErrInvalidSnapshot):
		respondJSON(w, http.StatusUnprocessableEntity, domain.ImportResult{Error: err.Error()})
	default:
		h.respondImport(w, result, err)
	}
}
