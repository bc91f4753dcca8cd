package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/megalith-dashboard/internal/application/port"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

// SnapshotExporter выполняет экспорт текущего состояния (реализует контроллер)
type SnapshotExporter interface {
	Export(ctx context.Context, format string) ([]byte, error)
}

// CachedExportUseCase возвращает экспорт с кешированием.
// В пределах TTL кеша повторные запросы получают тот же документ.
type CachedExportUseCase struct {
	exporter SnapshotExporter
	cache    port.Cache
	logger   *logger.Logger
}

// NewCachedExportUseCase создает новый use case. cache может быть nil.
func NewCachedExportUseCase(exporter SnapshotExporter, cache port.Cache, logger *logger.Logger) *CachedExportUseCase {
	return &CachedExportUseCase{
		exporter: exporter,
		cache:    cache,
		logger:   logger,
	}
}

// Execute выполняет экспорт с кешированием
func (uc *CachedExportUseCase) Execute(ctx context.Context, format string) ([]byte, error) {
	parsed, err := valueobject.ParseExportFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, format)
	}

	// Если кеш не настроен, используем стандартный путь
	if uc.cache == nil {
		return uc.exporter.Export(ctx, parsed.String())
	}

	cacheKey := exportCacheKey(parsed)

	var cached string
	err = uc.cache.Get(ctx, cacheKey, &cached)
	if err == nil {
		uc.logger.Debug("Cache hit for export", "format", parsed.String())
		return []byte(cached), nil
	}
	if !errors.Is(err, port.ErrCacheMiss) {
		uc.logger.Warn("Export cache read failed", "format", parsed.String(), "error", err.Error())
	}

	body, err := uc.exporter.Export(ctx, parsed.String())
	if err != nil {
		return nil, err
	}

	// Сохраняем в кеш асинхронно, не блокируем ответ
	go func() {
		if err := uc.cache.Set(context.Background(), cacheKey, string(body)); err != nil {
			uc.logger.Warn("Failed to cache export", "format", parsed.String(), "error", err.Error())
		}
	}()

	return body, nil
}

func exportCacheKey(format valueobject.ExportFormat) string {
	return "export:snapshot:" + format.String()
}
