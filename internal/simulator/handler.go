package simulator

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

const writeWait = 5 * time.Second

type Handler struct {
	generator *Generator
	interval  time.Duration
	upgrader  websocket.Upgrader
	log       *logger.Logger

	startedAt time.Time
	active    atomic.Int64
	sent      atomic.Uint64
}

func NewHandler(generator *Generator, interval time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		generator: generator,
		interval:  interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Симулятор для локальной разработки, origin не проверяем
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:       log,
		startedAt: time.Now(),
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", h.stream)
	mux.HandleFunc("/healthz", h.healthz)
	mux.HandleFunc("/api/v1/simulator/summary", h.summary)

	return mux
}

// stream отправляет события подключенному дашборду, пока соединение живо
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Simulator upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	h.active.Add(1)
	defer h.active.Add(-1)
	h.log.Info("Dashboard connected to simulator", "remote_addr", r.RemoteAddr)

	// Читаем, чтобы обрабатывать control frames и заметить закрытие
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			h.log.Info("Dashboard disconnected from simulator", "remote_addr", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			msg, err := h.generator.NextMessage()
			if err != nil {
				h.log.Error("Failed to encode simulated event", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Warn("Simulator write failed", "error", err.Error())
				return
			}
			h.sent.Add(1)
		}
	}
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"interval":    h.interval.String(),
		"connections": h.active.Load(),
		"sent":        h.sent.Load(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
