// Package stream доставляет события обновления дашборда: push-канал по
// WebSocket, а при его недоступности или обрыве - polling с синтезом
// событий из MetricMutator.
package stream

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dreschagin/megalith-dashboard/internal/application/port"
	"github.com/dreschagin/megalith-dashboard/internal/application/usecase"
	"github.com/dreschagin/megalith-dashboard/internal/domain/event"
	"github.com/dreschagin/megalith-dashboard/internal/domain/service"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

const (
	defaultPollInterval     = 10 * time.Second
	defaultHandshakeTimeout = 45 * time.Second
	defaultReadLimit        = 1 << 20

	closeWait = time.Second

	connectedMessage = "Real-time data streaming activated"
)

// Dialer открывает push-канал (*websocket.Dialer подходит)
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Config настройки транспорта
type Config struct {
	URL              string
	PollInterval     time.Duration
	HandshakeTimeout time.Duration
	ReadLimit        int64
}

// Selector выбирает push-канал или polling и реализует port.Transport.
// Из polling обратно в connected не переходит: переподключения нет.
type Selector struct {
	cfg      Config
	dialer   Dialer
	mutator  *service.MetricMutator
	notifier port.Renderer
	metrics  port.PipelineMetrics
	logger   *logger.Logger

	mu      sync.Mutex
	state   valueobject.TransportState
	since   time.Time
	conn    *websocket.Conn
	ctx     context.Context
	cancel  context.CancelFunc
	onEvent func(event.UpdateEvent)

	wg sync.WaitGroup

	received atomic.Uint64
	dropped  atomic.Uint64
}

// NewSelector создает транспорт. dialer == nil означает, что push-каналы не поддерживаются.
// notifier и metrics могут быть nil.
func NewSelector(
	cfg Config,
	dialer Dialer,
	mutator *service.MetricMutator,
	notifier port.Renderer,
	metrics port.PipelineMetrics,
	log *logger.Logger,
) *Selector {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = defaultReadLimit
	}
	if metrics == nil {
		metrics = port.NoopPipelineMetrics{}
	}

	return &Selector{
		cfg:      cfg,
		dialer:   dialer,
		mutator:  mutator,
		notifier: notifier,
		metrics:  metrics,
		logger:   log.With("component", "transport"),
		state:    valueobject.TransportUninitialized,
		since:    time.Now().UTC(),
	}
}

// Start пытается открыть push-канал, при неудаче переходит в polling.
// Повторный вызов возвращает текущее состояние.
func (s *Selector) Start(ctx context.Context, onEvent func(event.UpdateEvent)) valueobject.TransportState {
	s.mu.Lock()
	if s.state != valueobject.TransportUninitialized {
		state := s.state
		s.mu.Unlock()
		return state
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.onEvent = onEvent
	runCtx := s.ctx
	s.mu.Unlock()

	if s.dialer == nil || s.cfg.URL == "" {
		s.logger.Info("Push channel not supported, using polling mode")
		return s.startPolling(valueobject.TransportUninitialized)
	}

	dialCtx, cancel := context.WithTimeout(runCtx, s.cfg.HandshakeTimeout)
	conn, resp, err := s.dialer.DialContext(dialCtx, s.cfg.URL, nil)
	cancel()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		s.logger.Warn("WebSocket not available, using polling mode",
			"endpoint", s.cfg.URL,
			"error", err.Error())
		return s.startPolling(valueobject.TransportUninitialized)
	}

	s.mu.Lock()
	if !s.transitionLocked(valueobject.TransportConnected) {
		// Close успел выполниться во время dial
		state := s.state
		s.mu.Unlock()
		_ = conn.Close()
		return state
	}
	s.conn = conn
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Real-time streaming connected", "endpoint", s.cfg.URL)
	if s.notifier != nil {
		s.notifier.Notify(connectedMessage, valueobject.LevelSuccess, valueobject.DefaultNotifyDuration)
	}

	go s.readLoop(runCtx, conn)

	return valueobject.TransportConnected
}

// Status возвращает текущее состояние транспорта
func (s *Selector) Status() port.TransportStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return port.TransportStatus{
		State:        s.state,
		Endpoint:     s.cfg.URL,
		Since:        s.since,
		Received:     s.received.Load(),
		Dropped:      s.dropped.Load(),
		PollInterval: s.cfg.PollInterval,
	}
}

// State текущее состояние
func (s *Selector) State() valueobject.TransportState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Close переводит транспорт в closed, закрывает канал и ждет goroutine
func (s *Selector) Close() {
	s.mu.Lock()
	if !s.transitionLocked(valueobject.TransportClosed) {
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.conn = nil
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
		_ = conn.Close()
	}

	s.wg.Wait()
	s.logger.Info("Transport closed")
}

func (s *Selector) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer s.wg.Done()

	conn.SetReadLimit(s.cfg.ReadLimit)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Error("Push channel read error", err)
			}
			_ = conn.Close()
			s.fallbackToPolling(err)
			return
		}

		ev, err := event.Decode(data)
		if err != nil {
			s.drop(err)
			continue
		}

		s.deliver(ctx, ev)
	}
}

// fallbackToPolling переход connected -> polling после ошибки канала
func (s *Selector) fallbackToPolling(cause error) {
	s.logger.Warn("Push channel failed, falling back to polling", "error", cause.Error())
	s.startPolling(valueobject.TransportConnected)
}

// startPolling запускает poller, если транспорт все еще в состоянии from
func (s *Selector) startPolling(from valueobject.TransportState) valueobject.TransportState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != from || !s.transitionLocked(valueobject.TransportPolling) {
		return s.state
	}

	s.conn = nil
	s.wg.Add(1)
	go s.pollLoop(s.ctx)

	return valueobject.TransportPolling
}

func (s *Selector) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.logger.Info("Polling mode started", "interval", s.cfg.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.deliver(ctx, s.mutator.Next())
		}
	}
}

func (s *Selector) deliver(ctx context.Context, ev event.UpdateEvent) {
	if ctx.Err() != nil {
		return
	}

	s.received.Add(1)
	s.onEvent(ev)
}

func (s *Selector) drop(err error) {
	reason := usecase.DropReasonMalformed
	if errors.Is(err, event.ErrUnknownKind) {
		reason = usecase.DropReasonUnknownKind
	}

	s.dropped.Add(1)
	s.metrics.EventDropped(reason)
	s.logger.Debug("Dropping push message", "reason", reason, "error", err.Error())
}

// transitionLocked меняет состояние (вызывающий держит mu)
func (s *Selector) transitionLocked(next valueobject.TransportState) bool {
	prev := s.state
	state, err := prev.TransitionTo(next)
	if err != nil {
		s.logger.Debug("Transport transition rejected", "from", prev.String(), "to", next.String())
		return false
	}

	s.state = state
	s.since = time.Now().UTC()
	s.metrics.TransportStateChanged(state)
	s.logger.Info("Transport state changed", "from", prev.String(), "to", state.String())
	return true
}
