package port

import (
	"context"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
)

// SnapshotPublisher отправляет snapshot потоковых метрик во внешнюю систему наблюдения.
type SnapshotPublisher interface {
	// Record кладет snapshot в буфер и сразу возвращает управление.
	Record(snapshot entity.StreamingMetrics, at time.Time)

	// Flush отправляет накопленный буфер (вызывается при shutdown).
	Flush(ctx context.Context) error
}
