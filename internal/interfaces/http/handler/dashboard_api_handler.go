package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dreschagin/megalith-dashboard/internal/application/dashboard"
	"github.com/dreschagin/megalith-dashboard/internal/application/dto"
	"github.com/dreschagin/megalith-dashboard/internal/application/usecase"
	"github.com/dreschagin/megalith-dashboard/internal/interfaces/http/middleware"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

const defaultMaxEventBytes = 64 * 1024

// DashboardController операции контроллера, доступные через API
type DashboardController interface {
	TransportStatus() dto.TransportStatusDTO
	Submit(ctx context.Context, raw []byte) (bool, error)
	Running() bool
}

// DashboardAPIHandler состояние транспорта, прием событий и журнал намерений
type DashboardAPIHandler struct {
	controller    DashboardController
	listIntentsUC *usecase.ListIntentsUseCase
	maxEventBytes int64
	logger        *logger.Logger
}

type submitResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

type intentsResponse struct {
	Items []dto.IntentDTO `json:"items"`
}

// NewDashboardAPIHandler создает новый handler
func NewDashboardAPIHandler(
	controller DashboardController,
	listIntentsUC *usecase.ListIntentsUseCase,
	maxEventBytes int64,
	logger *logger.Logger,
) *DashboardAPIHandler {
	if maxEventBytes <= 0 {
		maxEventBytes = defaultMaxEventBytes
	}

	return &DashboardAPIHandler{
		controller:    controller,
		listIntentsUC: listIntentsUC,
		maxEventBytes: maxEventBytes,
		logger:        logger,
	}
}

// TransportStatus возвращает текущее состояние транспорта обновлений
func (h *DashboardAPIHandler) TransportStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.controller.TransportStatus())
}

// SubmitEvent принимает событие в проводном формате и передает его в event loop
func (h *DashboardAPIHandler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxEventBytes)
	defer r.Body.Close()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		if strings.Contains(err.Error(), "http: request body too large") {
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	accepted, err := h.controller.Submit(r.Context(), raw)
	if err != nil {
		if errors.Is(err, dashboard.ErrNotRunning) {
			http.Error(w, "Dashboard is not running", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("Failed to submit event", err)
		http.Error(w, "Failed to submit event", http.StatusInternalServerError)
		return
	}

	if !accepted {
		middleware.WriteJSON(w, http.StatusUnprocessableEntity, submitResponse{
			Accepted: false,
			Reason:   "message dropped: malformed or unknown event type",
		})
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, submitResponse{Accepted: true})
}

// ListIntents возвращает последние намерения автоматической реакции
func (h *DashboardAPIHandler) ListIntents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	items, err := h.listIntentsUC.Execute(r.Context(), limit)
	if err != nil {
		http.Error(w, "Failed to list intents", http.StatusInternalServerError)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, intentsResponse{Items: items})
}
