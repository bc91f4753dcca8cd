package writebehind

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

// slowRepository пишет только после release
type slowRepository struct {
	mu      sync.Mutex
	saved   []entity.Intent
	release chan struct{}
	err     error
}

func newSlowRepository() *slowRepository {
	return &slowRepository{release: make(chan struct{})}
}

func (r *slowRepository) Save(ctx context.Context, intent entity.Intent) error {
	select {
	case <-r.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	if r.err != nil {
		return r.err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, intent)
	return nil
}

func (r *slowRepository) FindRecent(_ context.Context, _ int) ([]entity.Intent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Intent(nil), r.saved...), nil
}

func (r *slowRepository) CountByAction(_ context.Context, action valueobject.ResponseAction) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, intent := range r.saved {
		if intent.Action == action {
			count++
		}
	}
	return count, nil
}

func newIntent(description string) entity.Intent {
	return entity.NewIntent(valueobject.ActionScaleUp, valueobject.AnomalyTrafficSpike, description)
}

func TestIntentWriter_SaveDoesNotWaitForStore(t *testing.T) {
	repo := newSlowRepository()
	w := NewIntentWriter(repo, Config{QueueSize: 4, SaveTimeout: 10 * time.Second}, logger.New("error"))

	start := time.Now()
	require.NoError(t, w.Save(context.Background(), newIntent("first")))
	require.NoError(t, w.Save(context.Background(), newIntent("second")))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(repo.release)
	require.NoError(t, w.Close(context.Background()))

	items, err := w.FindRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Description)
	assert.Equal(t, "second", items[1].Description)

	count, err := w.CountByAction(context.Background(), valueobject.ActionScaleUp)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIntentWriter_QueueFull(t *testing.T) {
	repo := newSlowRepository()
	w := NewIntentWriter(repo, Config{QueueSize: 1}, logger.New("error"))
	defer func() {
		close(repo.release)
		_ = w.Close(context.Background())
	}()

	// первое намерение забирает goroutine записи и ждет в Save
	require.NoError(t, w.Save(context.Background(), newIntent("in flight")))
	require.Eventually(t, func() bool { return w.Pending() == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Save(context.Background(), newIntent("queued")))
	assert.ErrorIs(t, w.Save(context.Background(), newIntent("overflow")), ErrQueueFull)
}

func TestIntentWriter_SaveAfterClose(t *testing.T) {
	repo := newSlowRepository()
	close(repo.release)
	w := NewIntentWriter(repo, Config{}, logger.New("error"))

	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, w.Close(context.Background()))
	assert.ErrorIs(t, w.Save(context.Background(), newIntent("late")), ErrClosed)
}

func TestIntentWriter_StoreErrorIsNotFatal(t *testing.T) {
	repo := newSlowRepository()
	repo.err = errors.New("connection refused")
	close(repo.release)
	w := NewIntentWriter(repo, Config{}, logger.New("error"))

	require.NoError(t, w.Save(context.Background(), newIntent("lost")))
	require.NoError(t, w.Close(context.Background()))

	assert.Equal(t, uint64(1), w.failed.Load())
	items, err := w.FindRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestIntentWriter_CloseHonoursContext(t *testing.T) {
	repo := newSlowRepository()
	w := NewIntentWriter(repo, Config{SaveTimeout: time.Minute}, logger.New("error"))
	require.NoError(t, w.Save(context.Background(), newIntent("stuck")))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Close(ctx), context.DeadlineExceeded)

	close(repo.release)
}
