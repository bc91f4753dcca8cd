// Package dashboard связывает транспорт, обработчики событий и периодические
// обновления в один event loop.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/application/dto"
	"github.com/dreschagin/megalith-dashboard/internal/application/port"
	"github.com/dreschagin/megalith-dashboard/internal/application/usecase"
	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/event"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
	"github.com/dreschagin/megalith-dashboard/pkg/scheduler"
)

const defaultQueueSize = 256

var (
	// ErrNotRunning контроллер не запущен или уже остановлен
	ErrNotRunning = errors.New("dashboard controller is not running")

	// ErrAlreadyStarted повторный вызов Start
	ErrAlreadyStarted = errors.New("dashboard controller already started")
)

// RefreshIntervals периоды перерисовки секций
type RefreshIntervals struct {
	Streaming       time.Duration
	PipelineHealth  time.Duration
	AIModels        time.Duration
	Recommendations time.Duration
}

// Controller владеет состоянием дашборда.
// Все обработчики, периодические обновления и экспорт выполняются
// по одному в goroutine event loop, в порядке постановки в очередь.
type Controller struct {
	state      *entity.DashboardState
	transport  port.Transport
	scheduler  *scheduler.Scheduler
	dispatcher *usecase.DispatchEventUseCase
	refresher  *usecase.RefreshSectionsUseCase
	exporter   *usecase.ExportSnapshotUseCase
	intervals  RefreshIntervals
	logger     *logger.Logger

	queue    chan func()
	loopDone chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewController создает контроллер. state должен принадлежать только ему.
func NewController(
	state *entity.DashboardState,
	transport port.Transport,
	sched *scheduler.Scheduler,
	dispatcher *usecase.DispatchEventUseCase,
	refresher *usecase.RefreshSectionsUseCase,
	exporter *usecase.ExportSnapshotUseCase,
	intervals RefreshIntervals,
	log *logger.Logger,
) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		state:      state,
		transport:  transport,
		scheduler:  sched,
		dispatcher: dispatcher,
		refresher:  refresher,
		exporter:   exporter,
		intervals:  intervals,
		logger:     log.With("component", "controller"),
		queue:      make(chan func(), defaultQueueSize),
		loopDone:   make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start запускает event loop, выбирает транспорт и планирует обновления секций
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	go c.run()

	c.enqueue(c.ctx, c.refresher.RenderAll)

	state := c.transport.Start(c.ctx, c.onEvent)
	c.logger.Info("Update transport selected", "state", state.String())

	tasks := []struct {
		name     string
		interval time.Duration
		job      func()
	}{
		{"refresh-streaming", c.intervals.Streaming, c.refresher.RefreshStreaming},
		{"refresh-pipeline", c.intervals.PipelineHealth, c.refresher.RefreshPipeline},
		{"refresh-ai-models", c.intervals.AIModels, c.refresher.RefreshAIModels},
		{"rotate-recommendations", c.intervals.Recommendations, c.refresher.RotateRecommendations},
	}

	for _, task := range tasks {
		job := task.job
		if _, err := c.scheduler.Every(task.name, task.interval, func() { c.enqueue(c.ctx, job) }); err != nil {
			c.logger.Error("Failed to schedule refresh task", err, "task", task.name)
		}
	}

	return nil
}

// Shutdown закрывает транспорт, отменяет задачи и останавливает event loop.
// После возврата ни одно событие не будет обработано.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	started := c.started
	c.mu.Unlock()

	c.transport.Close()
	c.scheduler.Shutdown()
	c.cancel()

	if started {
		<-c.loopDone
	}

	c.logger.Info("Dashboard controller stopped")
}

// Export сериализует состояние в event loop и ждет результата
func (c *Controller) Export(ctx context.Context, format string) ([]byte, error) {
	type result struct {
		body []byte
		err  error
	}

	reply := make(chan result, 1)
	job := func() {
		body, err := c.exporter.Execute(c.state, format)
		reply <- result{body: body, err: err}
	}

	if !c.enqueue(ctx, job) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotRunning
	}

	select {
	case r := <-reply:
		return r.body, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.ctx.Done():
		return nil, ErrNotRunning
	}
}

// Submit передает сообщение в проводном формате в event loop.
// Возвращает false, если сообщение отброшено.
func (c *Controller) Submit(ctx context.Context, raw []byte) (bool, error) {
	reply := make(chan bool, 1)
	payload := append([]byte(nil), raw...)

	if !c.enqueue(ctx, func() { reply <- c.dispatcher.DispatchMessage(payload) }) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		return false, ErrNotRunning
	}

	select {
	case accepted := <-reply:
		return accepted, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-c.ctx.Done():
		return false, ErrNotRunning
	}
}

// Resync перерисовывает все секции (например, для нового клиента)
func (c *Controller) Resync() {
	c.enqueue(c.ctx, c.refresher.RenderAll)
}

// TransportStatus возвращает состояние транспорта
func (c *Controller) TransportStatus() dto.TransportStatusDTO {
	status := c.transport.Status()

	return dto.TransportStatusDTO{
		State:     status.State.String(),
		Endpoint:  status.Endpoint,
		Since:     status.Since,
		Received:  status.Received,
		Dropped:   status.Dropped,
		PollEvery: status.PollInterval.String(),
	}
}

// Running сообщает, обрабатывает ли контроллер события
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.started && !c.stopped
}

func (c *Controller) onEvent(ev event.UpdateEvent) {
	c.enqueue(c.ctx, func() { c.dispatcher.Dispatch(ev) })
}

// enqueue ставит задачу в очередь event loop. При полной очереди ждет,
// чтобы не нарушать порядок событий.
func (c *Controller) enqueue(ctx context.Context, job func()) bool {
	if c.ctx.Err() != nil {
		return false
	}

	select {
	case c.queue <- job:
		return true
	case <-ctx.Done():
		return false
	case <-c.ctx.Done():
		return false
	}
}

func (c *Controller) run() {
	defer close(c.loopDone)

	for {
		select {
		case <-c.ctx.Done():
			return
		case job := <-c.queue:
			// Задача могла быть поставлена до Shutdown
			if c.ctx.Err() != nil {
				return
			}
			job()
		}
	}
}
