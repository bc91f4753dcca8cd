package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/application/dto"
	"github.com/dreschagin/megalith-dashboard/internal/application/port"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

// ErrStorageNotConfigured хранилище архивов не настроено
var ErrStorageNotConfigured = errors.New("export storage is not configured")

type ArchiveExportConfig struct {
	KeyPrefix string
}

// ArchiveExportUseCase выгружает экспорт состояния в объектное хранилище
type ArchiveExportUseCase struct {
	exporter SnapshotExporter
	storage  port.ExportStorage
	config   ArchiveExportConfig
	clock    func() time.Time
	logger   *logger.Logger
}

func NewArchiveExportUseCase(
	exporter SnapshotExporter,
	storage port.ExportStorage,
	config ArchiveExportConfig,
	log *logger.Logger,
) *ArchiveExportUseCase {
	return &ArchiveExportUseCase{
		exporter: exporter,
		storage:  storage,
		config:   config,
		clock:    time.Now,
		logger:   log,
	}
}

func (uc *ArchiveExportUseCase) Execute(ctx context.Context, format string) (*dto.ArchiveResultDTO, error) {
	if uc.storage == nil {
		return nil, ErrStorageNotConfigured
	}

	parsed, err := valueobject.ParseExportFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, format)
	}

	body, err := uc.exporter.Export(ctx, parsed.String())
	if err != nil {
		return nil, fmt.Errorf("failed to export snapshot: %w", err)
	}

	archivedAt := uc.clock().UTC()
	key := uc.buildKey(archivedAt, parsed)

	url, err := uc.storage.PutObject(ctx, key, parsed.ContentType(), body)
	if err != nil {
		uc.logger.Error("Failed to upload export archive", err,
			"key", key,
			"format", parsed.String(),
		)
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	uc.logger.Info("Export archived", "key", key, "size_bytes", len(body))

	return &dto.ArchiveResultDTO{
		Key:        key,
		URL:        url,
		Format:     parsed.String(),
		SizeBytes:  len(body),
		ArchivedAt: archivedAt,
	}, nil
}

func (uc *ArchiveExportUseCase) buildKey(at time.Time, format valueobject.ExportFormat) string {
	prefix := strings.Trim(uc.config.KeyPrefix, "/")
	if prefix == "" {
		prefix = "exports"
	}

	timestamp := at.Format("20060102T150405Z")
	datePrefix := at.Format("2006/01/02")

	return fmt.Sprintf("%s/%s/%s_snapshot.%s", prefix, datePrefix, timestamp, format.Extension())
}
