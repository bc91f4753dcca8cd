// Package scheduler запускает независимые периодические задачи.
//
// Каждая задача получает собственный Handle для отмены, Shutdown
// останавливает все задачи и дожидается их завершения.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

// ErrStopped планировщик уже остановлен
var ErrStopped = errors.New("scheduler is stopped")

// Handle управляет одной периодической задачей
type Handle struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Name имя задачи
func (h *Handle) Name() string {
	return h.name
}

// Cancel останавливает задачу и ждет выхода из ее goroutine.
// Повторный вызов безопасен.
func (h *Handle) Cancel() {
	h.cancel()
	<-h.done
}

// Done закрывается после остановки задачи
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Scheduler владеет набором периодических задач
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	tasks   map[string]*Handle

	logger *logger.Logger
}

// New создает планировщик
func New(log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(map[string]*Handle),
		logger: log,
	}
}

// Every запускает fn каждые interval. Первый запуск через interval.
// Задача с тем же именем заменяет предыдущую.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) (*Handle, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid interval for task %s: %s", name, interval)
	}
	if fn == nil {
		return nil, fmt.Errorf("task %s has no function", name)
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrStopped
	}

	previous := s.tasks[name]

	ctx, cancel := context.WithCancel(s.ctx)
	handle := &Handle{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.tasks[name] = handle
	s.wg.Add(1)
	s.mu.Unlock()

	if previous != nil {
		previous.Cancel()
	}

	go s.loop(ctx, handle, interval, fn)

	s.logger.Debug("Scheduled task started", "task", name, "interval", interval.String())
	return handle, nil
}

func (s *Scheduler) loop(ctx context.Context, handle *Handle, interval time.Duration, fn func()) {
	defer s.wg.Done()
	defer close(handle.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Отмена могла произойти одновременно с тиком
			if ctx.Err() != nil {
				return
			}
			fn()
		}
	}
}

// Tasks возвращает имена активных задач
func (s *Scheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.tasks))
	for name, handle := range s.tasks {
		select {
		case <-handle.done:
		default:
			names = append(names, name)
		}
	}
	return names
}

// Shutdown отменяет все задачи и ждет их завершения
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.logger.Debug("Scheduler stopped")
}
