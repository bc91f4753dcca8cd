package repository

import (
	"context"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

// IntentRepository хранилище зафиксированных намерений (Port)
// Реализация в Infrastructure слое
type IntentRepository interface {
	// Save сохраняет намерение
	Save(ctx context.Context, intent entity.Intent) error

	// FindRecent возвращает последние намерения, новые в конце
	FindRecent(ctx context.Context, limit int) ([]entity.Intent, error)

	// CountByAction возвращает количество намерений указанного типа
	CountByAction(ctx context.Context, action valueobject.ResponseAction) (int, error)
}
