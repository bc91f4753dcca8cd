package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/interfaces/http/middleware"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck проверка зависимости для /readyz
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler liveness и readiness пробы
type HealthHandler struct {
	running func() bool
	checks  []ReadinessCheck
}

// NewHealthHandler создает handler. running сообщает, запущен ли контроллер.
func NewHealthHandler(running func() bool, checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		running: running,
		checks:  checks,
	}
}

// Healthz процесс жив
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz контроллер обрабатывает события и зависимости доступны
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.running != nil && !h.running() {
		http.Error(w, "controller not running", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	failed := make(map[string]string)
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			failed[c.Name] = err.Error()
		}
	}

	if len(failed) > 0 {
		middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ready":  false,
			"failed": failed,
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
