package port

import (
	"context"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/domain/event"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

// TransportStatus состояние транспорта для API и логов
type TransportStatus struct {
	State        valueobject.TransportState
	Endpoint     string
	Since        time.Time
	Received     uint64
	Dropped      uint64
	PollInterval time.Duration
}

// Transport источник событий обновления (push-канал или polling)
type Transport interface {
	// Start выбирает транспорт и возвращает выбранное состояние.
	// onEvent вызывается из goroutine транспорта в порядке получения событий.
	Start(ctx context.Context, onEvent func(event.UpdateEvent)) valueobject.TransportState

	// Status возвращает текущее состояние
	Status() TransportStatus

	// Close переводит транспорт в closed и ждет завершения goroutine.
	// После возврата onEvent больше не вызывается.
	Close()
}
