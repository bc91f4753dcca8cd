package memory

import (
	"context"
	"sync"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

// DefaultIntentCapacity сколько намерений хранится до вытеснения старых
const DefaultIntentCapacity = 1000

// IntentRepository реализует repository.IntentRepository в памяти процесса.
// Хранит последние capacity записей, старые вытесняются.
type IntentRepository struct {
	mu       sync.RWMutex
	items    []entity.Intent
	capacity int
	counts   map[valueobject.ResponseAction]int
}

// NewIntentRepository создает новый repository
func NewIntentRepository(capacity int) *IntentRepository {
	if capacity <= 0 {
		capacity = DefaultIntentCapacity
	}

	return &IntentRepository{
		items:    make([]entity.Intent, 0, capacity),
		capacity: capacity,
		counts:   make(map[valueobject.ResponseAction]int),
	}
}

// Save сохраняет намерение
func (r *IntentRepository) Save(ctx context.Context, intent entity.Intent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.items) == r.capacity {
		copy(r.items, r.items[1:])
		r.items = r.items[:len(r.items)-1]
	}
	r.items = append(r.items, intent)
	r.counts[intent.Action]++

	return nil
}

// FindRecent возвращает последние limit намерений, новые в конце
func (r *IntentRepository) FindRecent(ctx context.Context, limit int) ([]entity.Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if limit > 0 && limit < len(r.items) {
		start = len(r.items) - limit
	}

	return append([]entity.Intent(nil), r.items[start:]...), nil
}

// CountByAction возвращает количество записанных намерений (включая вытесненные)
func (r *IntentRepository) CountByAction(ctx context.Context, action valueobject.ResponseAction) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.counts[action], nil
}
