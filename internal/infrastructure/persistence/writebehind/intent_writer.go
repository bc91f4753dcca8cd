// Package writebehind сохраняет намерения в медленное хранилище вне event loop.
package writebehind

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/repository"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

const (
	defaultQueueSize   = 256
	defaultSaveTimeout = 5 * time.Second
)

var (
	// ErrQueueFull очередь записи переполнена, намерение не сохранено
	ErrQueueFull = errors.New("intent write queue is full")

	// ErrClosed writer уже остановлен
	ErrClosed = errors.New("intent writer is closed")
)

// Config настройки очереди записи
type Config struct {
	QueueSize   int
	SaveTimeout time.Duration
}

// IntentWriter реализует repository.IntentRepository поверх другого хранилища.
// Save только ставит намерение в очередь, запись выполняет отдельная goroutine.
// Чтение идет напрямую в хранилище и может не видеть еще не записанные намерения.
type IntentWriter struct {
	next        repository.IntentRepository
	queue       chan entity.Intent
	saveTimeout time.Duration
	logger      *logger.Logger

	mu     sync.RWMutex
	closed bool
	stopCh chan struct{}
	wg     sync.WaitGroup

	written atomic.Uint64
	failed  atomic.Uint64
}

// NewIntentWriter создает writer и запускает goroutine записи
func NewIntentWriter(next repository.IntentRepository, cfg Config, log *logger.Logger) *IntentWriter {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = defaultSaveTimeout
	}

	w := &IntentWriter{
		next:        next,
		queue:       make(chan entity.Intent, cfg.QueueSize),
		saveTimeout: cfg.SaveTimeout,
		logger:      log.With("component", "intent_writer"),
		stopCh:      make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	return w
}

// Save ставит намерение в очередь и не ждет хранилища
func (w *IntentWriter) Save(_ context.Context, intent entity.Intent) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrClosed
	}

	select {
	case w.queue <- intent:
		return nil
	default:
		w.failed.Add(1)
		return ErrQueueFull
	}
}

// FindRecent читает из хранилища
func (w *IntentWriter) FindRecent(ctx context.Context, limit int) ([]entity.Intent, error) {
	return w.next.FindRecent(ctx, limit)
}

// CountByAction читает из хранилища
func (w *IntentWriter) CountByAction(ctx context.Context, action valueobject.ResponseAction) (int, error) {
	return w.next.CountByAction(ctx, action)
}

// Pending число намерений, ожидающих записи
func (w *IntentWriter) Pending() int {
	return len(w.queue)
}

// Close останавливает прием и дописывает очередь, пока ctx не истечет
func (w *IntentWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.stopCh)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Intent writer stopped",
			"written", w.written.Load(),
			"failed", w.failed.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *IntentWriter) run() {
	defer w.wg.Done()

	for {
		select {
		case intent := <-w.queue:
			w.write(intent)
		case <-w.stopCh:
			// Save после closed не пишет в очередь, остаток можно дочитать
			for {
				select {
				case intent := <-w.queue:
					w.write(intent)
				default:
					return
				}
			}
		}
	}
}

func (w *IntentWriter) write(intent entity.Intent) {
	ctx, cancel := context.WithTimeout(context.Background(), w.saveTimeout)
	defer cancel()

	if err := w.next.Save(ctx, intent); err != nil {
		w.failed.Add(1)
		w.logger.Error("Failed to persist response intent", err,
			"intent_id", intent.ID,
			"action", intent.Action.String())
		return
	}

	w.written.Add(1)
}
