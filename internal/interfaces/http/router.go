package http

import (
	"net/http"

	"github.com/dreschagin/megalith-dashboard/internal/infrastructure/observability/metrics"
	"github.com/dreschagin/megalith-dashboard/internal/interfaces/http/handler"
	"github.com/dreschagin/megalith-dashboard/internal/interfaces/http/middleware"
	"github.com/dreschagin/megalith-dashboard/pkg/config"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

// exportBurst сколько экспортов подряд допускается до включения лимита
const exportBurst = 5

// Handlers набор HTTP handler'ов приложения
type Handlers struct {
	WebSocket *handler.WebSocketHandler
	Export    *handler.ExportAPIHandler
	Dashboard *handler.DashboardAPIHandler
	Health    *handler.HealthHandler
}

// Router настраивает маршруты приложения
type Router struct {
	mux            *http.ServeMux
	handlers       Handlers
	security       config.SecurityConfig
	export         config.ExportConfig
	metrics        *metrics.Metrics
	metricsHandler http.Handler
	exportLimiter  *middleware.IPRateLimiter
	logger         *logger.Logger
}

// NewRouter создает новый router. metricsHandler отдает /metrics (обычно promhttp),
// m может быть nil, тогда HTTP метрики не собираются.
func NewRouter(
	handlers Handlers,
	security config.SecurityConfig,
	export config.ExportConfig,
	m *metrics.Metrics,
	metricsHandler http.Handler,
	logger *logger.Logger,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		handlers:       handlers,
		security:       security,
		export:         export,
		metrics:        m,
		metricsHandler: metricsHandler,
		logger:         logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	// Пробы и scrape метрик без авторизации
	rt.mux.HandleFunc("/healthz", rt.handlers.Health.Healthz)
	rt.mux.HandleFunc("/readyz", rt.handlers.Health.Readyz)
	if rt.metricsHandler != nil {
		rt.mux.Handle("/metrics", rt.metricsHandler)
	}

	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Enabled:     rt.security.AuthEnabled,
		BearerToken: rt.security.AuthToken,
	}, rt.logger)

	// WebSocket для браузерных дашбордов
	rt.mux.Handle("/ws", authMiddleware(http.HandlerFunc(rt.handlers.WebSocket.HandleConnection)))

	// Экспорт ограничен по частоте: каждый запрос проходит через event loop
	rt.exportLimiter = middleware.NewIPRateLimiter(rt.export.RateLimitPerMinute, exportBurst)
	exportChain := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(middleware.RateLimit(rt.exportLimiter)(middleware.Compression(h)))
	}
	rt.mux.Handle("/api/v1/export", exportChain(rt.handlers.Export.Export))
	rt.mux.Handle("/api/v1/export/archive", exportChain(rt.handlers.Export.Archive))

	rt.mux.Handle("/api/v1/transport", authMiddleware(http.HandlerFunc(rt.handlers.Dashboard.TransportStatus)))
	rt.mux.Handle("/api/v1/events", authMiddleware(http.HandlerFunc(rt.handlers.Dashboard.SubmitEvent)))
	rt.mux.Handle("/api/v1/intents", authMiddleware(http.HandlerFunc(rt.handlers.Dashboard.ListIntents)))

	// Применяем middleware
	var handler http.Handler = rt.mux
	handler = middleware.Logger(rt.logger)(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = middleware.Recovery(rt.logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}

// Close освобождает фоновые ресурсы router'а
func (rt *Router) Close() {
	if rt.exportLimiter != nil {
		rt.exportLimiter.Stop()
	}
}
