package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dreschagin/megalith-dashboard/internal/application/dashboard"
	"github.com/dreschagin/megalith-dashboard/internal/application/usecase"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/internal/interfaces/http/middleware"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

const defaultExportFormat = "json"

// ExportAPIHandler отдает экспорт состояния дашборда и выгружает его в архив
type ExportAPIHandler struct {
	exportUC  *usecase.CachedExportUseCase
	archiveUC *usecase.ArchiveExportUseCase
	logger    *logger.Logger
}

// NewExportAPIHandler создает новый handler
func NewExportAPIHandler(
	exportUC *usecase.CachedExportUseCase,
	archiveUC *usecase.ArchiveExportUseCase,
	logger *logger.Logger,
) *ExportAPIHandler {
	return &ExportAPIHandler{
		exportUC:  exportUC,
		archiveUC: archiveUC,
		logger:    logger,
	}
}

// Export возвращает snapshot в формате json или csv
func (h *ExportAPIHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format, ok := parseFormat(w, r)
	if !ok {
		return
	}

	body, err := h.exportUC.Execute(r.Context(), format.String())
	if err != nil {
		h.writeExportError(w, err, format.String())
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="megalith-dashboard-snapshot.%s"`, format.Extension()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Archive выгружает snapshot в объектное хранилище
func (h *ExportAPIHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format, ok := parseFormat(w, r)
	if !ok {
		return
	}

	result, err := h.archiveUC.Execute(r.Context(), format.String())
	if err != nil {
		if errors.Is(err, usecase.ErrStorageNotConfigured) {
			http.Error(w, "Export storage is not configured", http.StatusServiceUnavailable)
			return
		}
		h.writeExportError(w, err, format.String())
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, result)
}

func (h *ExportAPIHandler) writeExportError(w http.ResponseWriter, err error, format string) {
	switch {
	case errors.Is(err, valueobject.ErrUnsupportedFormat):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, dashboard.ErrNotRunning):
		http.Error(w, "Dashboard is not running", http.StatusServiceUnavailable)
	default:
		h.logger.Error("Failed to export snapshot", err, "format", format)
		http.Error(w, "Failed to export snapshot", http.StatusInternalServerError)
	}
}

func parseFormat(w http.ResponseWriter, r *http.Request) (valueobject.ExportFormat, bool) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = defaultExportFormat
	}

	format, err := valueobject.ParseExportFormat(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Unsupported export format %q", raw), http.StatusBadRequest)
		return "", false
	}

	return format, true
}
