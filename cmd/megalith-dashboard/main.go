package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap/zapcore"

	// Application
	"github.com/dreschagin/megalith-dashboard/internal/application/dashboard"
	applicationPort "github.com/dreschagin/megalith-dashboard/internal/application/port"
	"github.com/dreschagin/megalith-dashboard/internal/application/usecase"

	// Domain
	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/repository"
	"github.com/dreschagin/megalith-dashboard/internal/domain/service"

	// Infrastructure
	"github.com/dreschagin/megalith-dashboard/internal/infrastructure/collector"
	redisCache "github.com/dreschagin/megalith-dashboard/internal/infrastructure/cache/redis"
	natsInfra "github.com/dreschagin/megalith-dashboard/internal/infrastructure/messaging/nats"
	wsInfra "github.com/dreschagin/megalith-dashboard/internal/infrastructure/notification/websocket"
	"github.com/dreschagin/megalith-dashboard/internal/infrastructure/observability/cloudwatch"
	"github.com/dreschagin/megalith-dashboard/internal/infrastructure/observability/metrics"
	dynamodbRepo "github.com/dreschagin/megalith-dashboard/internal/infrastructure/persistence/dynamodb"
	"github.com/dreschagin/megalith-dashboard/internal/infrastructure/persistence/memory"
	"github.com/dreschagin/megalith-dashboard/internal/infrastructure/persistence/postgres"
	"github.com/dreschagin/megalith-dashboard/internal/infrastructure/persistence/writebehind"
	s3storage "github.com/dreschagin/megalith-dashboard/internal/infrastructure/storage/s3"
	"github.com/dreschagin/megalith-dashboard/internal/infrastructure/transport/stream"

	// Interfaces
	httpInterface "github.com/dreschagin/megalith-dashboard/internal/interfaces/http"
	"github.com/dreschagin/megalith-dashboard/internal/interfaces/http/handler"
	"github.com/dreschagin/megalith-dashboard/internal/interfaces/http/middleware"

	// Shared
	"github.com/dreschagin/megalith-dashboard/pkg/config"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
	"github.com/dreschagin/megalith-dashboard/pkg/scheduler"
)

const maxEventBytes = 64 * 1024

func main() {
	// 1. Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. CloudWatch Logs (опционально) и logger
	var logsPublisher *cloudwatch.LogsPublisher
	var sinks []zapcore.WriteSyncer
	if cfg.CloudWatch.LogsEnabled {
		logsPublisher, err = cloudwatch.NewLogsPublisher(context.Background(), cloudwatch.LogsPublisherConfig{
			LogGroupName:    cfg.CloudWatch.LogGroup,
			LogStreamName:   cfg.CloudWatch.LogStream,
			Region:          cfg.CloudWatch.Region,
			Endpoint:        cfg.CloudWatch.Endpoint,
			AccessKeyID:     cfg.CloudWatch.AccessKeyID,
			SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
			AutoCreate:      true,
		})
		if err != nil {
			// Логгера еще нет, пишем в stderr и продолжаем без sink'а
			fmt.Fprintf(os.Stderr, "CloudWatch logs disabled: %v\n", err)
			logsPublisher = nil
		} else {
			sinks = append(sinks, logsPublisher)
		}
	}

	log := logger.NewWithOptions(logger.Options{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		FilePath: cfg.Log.FilePath,
		Sinks:    sinks,
	})
	defer func() { _ = log.Sync() }()
	log.Info("Starting Megalith Dashboard", "stream_url", cfg.Stream.URL, "push_enabled", cfg.Stream.Enabled)

	// 3. Prometheus
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if cfg.Host.Enabled {
		registry.MustRegister(collector.NewSystemMetricsCollector(cfg.Host.DiskPath, log))
	}
	pipelineMetrics := metrics.New(registry)

	// 4. Dependency Injection - Infrastructure Layer

	// WebSocket Hub (рендерер дашборда)
	hub := wsInfra.NewHub(log)
	pipelineMetrics.RegisterClientGauge(registry, hub.ClientCount)

	var readinessChecks []handler.ReadinessCheck

	// Журнал намерений
	var intentRepository repository.IntentRepository
	switch cfg.Intents.Backend {
	case config.IntentStorePostgres:
		db, initErr := sql.Open("postgres", cfg.Intents.PostgresDSN)
		if initErr != nil {
			log.Error("Failed to connect to database", initErr)
			os.Exit(1)
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.Intents.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Intents.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Intents.ConnMaxLifetime)

		if initErr := db.Ping(); initErr != nil {
			log.Error("Failed to ping database", initErr)
			os.Exit(1)
		}

		repoImpl := postgres.NewIntentRepository(db)
		if initErr := repoImpl.EnsureSchema(context.Background()); initErr != nil {
			log.Error("Failed to prepare intents schema", initErr)
			os.Exit(1)
		}
		intentRepository = repoImpl
		readinessChecks = append(readinessChecks, handler.ReadinessCheck{Name: "postgres", Check: db.PingContext})
		log.Info("Intent log stored in PostgreSQL")

	case config.IntentStoreDynamoDB:
		repoImpl, initErr := dynamodbRepo.NewIntentRepository(context.Background(), dynamodbRepo.Config{
			TableName:       cfg.Intents.DynamoTable,
			Region:          cfg.Intents.DynamoRegion,
			Endpoint:        cfg.Intents.DynamoEndpoint,
			AccessKeyID:     cfg.CloudWatch.AccessKeyID,
			SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
			StrongReads:     cfg.Intents.DynamoStrongReads,
			RetentionDays:   cfg.Intents.DynamoRetentionDays,
		})
		if initErr != nil {
			log.Error("Failed to initialize intent repository", initErr)
			os.Exit(1)
		}
		intentRepository = repoImpl
		log.Info("Intent log stored in DynamoDB", "table", cfg.Intents.DynamoTable)

	default:
		intentRepository = memory.NewIntentRepository(cfg.Intents.MemoryCapacity)
		log.Info("Intent log kept in memory", "capacity", cfg.Intents.MemoryCapacity)
	}

	// Сетевые хранилища пишутся в фоне, чтобы обработчик аномалий не ждал сети
	var intentWriter *writebehind.IntentWriter
	if cfg.Intents.Backend != config.IntentStoreMemory {
		intentWriter = writebehind.NewIntentWriter(intentRepository, writebehind.Config{}, log)
		intentRepository = intentWriter
	}

	// Redis кеш экспорта
	var exportCache applicationPort.Cache
	if cfg.Redis.Enabled {
		cacheImpl, initErr := redisCache.NewRedisCache(cfg.Redis)
		if initErr != nil {
			log.Warn("Failed to connect to Redis, export cache disabled", "error", initErr.Error(), "addr", cfg.Redis.Addr())
		} else {
			exportCache = cacheImpl
			defer cacheImpl.Close()
			readinessChecks = append(readinessChecks, handler.ReadinessCheck{Name: "redis", Check: cacheImpl.Ping})
			log.Info("Redis export cache initialized", "addr", cfg.Redis.Addr(), "ttl", cfg.Redis.TTL.String())
		}
	} else {
		log.Warn("Redis export cache is disabled")
	}

	// NATS публикация намерений
	var intentPublisher applicationPort.IntentPublisher
	if cfg.NATS.Enabled {
		publisherImpl, initErr := natsInfra.NewIntentPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, log)
		if initErr != nil {
			log.Warn("Failed to connect to NATS, continuing without intent publishing", "error", initErr.Error())
		} else {
			intentPublisher = publisherImpl
			defer intentPublisher.Close()
			log.Info("NATS intent publisher initialized", "url", cfg.NATS.URL, "subject_prefix", cfg.NATS.SubjectPrefix)
		}
	} else {
		log.Warn("NATS intent publishing is disabled")
	}

	// S3 архив экспорта
	var exportStorage applicationPort.ExportStorage
	if cfg.S3.Enabled {
		storageImpl, initErr := s3storage.NewExportStorage(context.Background(), s3storage.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
			URLMode:         s3storage.URLMode(cfg.S3.URLMode),
			PresignedTTL:    cfg.S3.PresignedTTL,
		})
		if initErr != nil {
			log.Error("Failed to initialize export storage", initErr)
			os.Exit(1)
		}
		exportStorage = storageImpl
		log.Info("S3 export storage initialized", "bucket", cfg.S3.Bucket)
	} else {
		log.Warn("S3 storage is disabled, export archiving will fail")
	}

	// CloudWatch метрики потока
	var snapshotPublisher applicationPort.SnapshotPublisher
	var metricsPublisher *cloudwatch.MetricsPublisher
	if cfg.CloudWatch.Enabled {
		metricsPublisher, err = cloudwatch.NewMetricsPublisher(context.Background(),
			cloudwatch.MetricsPublisherConfig{
				Namespace:         cfg.CloudWatch.Namespace,
				Region:            cfg.CloudWatch.Region,
				Endpoint:          cfg.CloudWatch.Endpoint,
				AccessKeyID:       cfg.CloudWatch.AccessKeyID,
				SecretAccessKey:   cfg.CloudWatch.SecretAccessKey,
				DefaultDimensions: map[string]string{"Environment": cfg.CloudWatch.Environment},
				FlushInterval:     cfg.CloudWatch.FlushInterval,
			}, log)
		if err != nil {
			log.Error("Failed to initialize CloudWatch metrics publisher", err)
			os.Exit(1)
		}
		snapshotPublisher = metricsPublisher
		log.Info("CloudWatch metrics publisher initialized", "namespace", cfg.CloudWatch.Namespace)
	} else {
		log.Warn("CloudWatch metrics publishing is disabled")
	}

	// 5. Domain Layer
	state := entity.NewSampleDashboardState()
	mutator := service.NewMetricMutator(state.Streaming, state.Metrics, nil)
	policy := service.NewResponsePolicy()

	// Транспорт: push-канал с fallback на polling
	var dialer stream.Dialer
	if cfg.Stream.Enabled {
		dialer = websocket.DefaultDialer
	}
	transport := stream.NewSelector(stream.Config{
		URL:              cfg.Stream.URL,
		PollInterval:     cfg.Stream.PollInterval,
		HandshakeTimeout: cfg.Stream.HandshakeTimeout,
	}, dialer, mutator, hub, pipelineMetrics, log)

	// 6. Application Layer (Use Cases)
	responder := usecase.NewRespondToAnomalyUseCase(policy, intentRepository, intentPublisher, pipelineMetrics, log)
	dispatcher := usecase.NewDispatchEventUseCase(state, hub, snapshotPublisher, responder, pipelineMetrics, log)
	refresher := usecase.NewRefreshSectionsUseCase(state, hub, log)

	controller := dashboard.NewController(
		state,
		transport,
		scheduler.New(log),
		dispatcher,
		refresher,
		usecase.NewExportSnapshotUseCase(nil),
		dashboard.RefreshIntervals{
			Streaming:       cfg.Refresh.Streaming,
			PipelineHealth:  cfg.Refresh.PipelineHealth,
			AIModels:        cfg.Refresh.AIModels,
			Recommendations: cfg.Refresh.Recommendations,
		},
		log,
	)

	cachedExportUC := usecase.NewCachedExportUseCase(controller, exportCache, log)
	archiveExportUC := usecase.NewArchiveExportUseCase(controller, exportStorage, usecase.ArchiveExportConfig{
		KeyPrefix: cfg.S3.KeyPrefix,
	}, log)
	listIntentsUC := usecase.NewListIntentsUseCase(intentRepository, log)

	// 7. Interfaces Layer (HTTP Handlers)
	authConfig := middleware.AuthConfig{
		Enabled:     cfg.Security.AuthEnabled,
		BearerToken: cfg.Security.AuthToken,
	}

	router := httpInterface.NewRouter(
		httpInterface.Handlers{
			WebSocket: handler.NewWebSocketHandler(hub, cfg.Security.AllowedOrigins, authConfig, log),
			Export:    handler.NewExportAPIHandler(cachedExportUC, archiveExportUC, log),
			Dashboard: handler.NewDashboardAPIHandler(controller, listIntentsUC, maxEventBytes, log),
			Health:    handler.NewHealthHandler(controller.Running, readinessChecks...),
		},
		cfg.Security,
		cfg.Export,
		pipelineMetrics,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		log,
	)
	defer router.Close()

	// 8. Запускаем фоновые процессы
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Новый клиент получает полную отрисовку всех секций
	hub.OnConnect(controller.Resync)
	go hub.Run(ctx)

	if err := controller.Start(); err != nil {
		log.Error("Failed to start dashboard controller", err)
		os.Exit(1)
	}

	// 9. Настраиваем HTTP сервер
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}()

	// 10. Ожидаем сигнал для graceful shutdown
	<-sigChan
	log.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}

	// Транспорт закрывается, очередь дорабатывает, дальше событий нет
	controller.Shutdown()
	cancel()

	if intentWriter != nil {
		if err := intentWriter.Close(shutdownCtx); err != nil {
			log.Error("Failed to persist pending intents", err, "pending", intentWriter.Pending())
		}
	}

	if metricsPublisher != nil {
		log.Info("Flushing CloudWatch metrics buffer...")
		if err := metricsPublisher.Close(shutdownCtx); err != nil {
			log.Error("Failed to flush CloudWatch metrics", err)
		}
	}

	log.Info("Server stopped gracefully")

	if logsPublisher != nil {
		_ = log.Sync()
		_ = logsPublisher.Close(shutdownCtx)
	}
}
