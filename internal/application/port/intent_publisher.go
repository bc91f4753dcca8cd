package port

import (
	"context"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
)

// IntentPublisher рассылает намерения автоматической реакции через брокер сообщений
type IntentPublisher interface {
	// PublishIntent публикует намерение, не дожидаясь подтверждения брокера
	PublishIntent(ctx context.Context, intent entity.Intent) error

	// Close закрывает соединение с брокером
	Close() error
}
