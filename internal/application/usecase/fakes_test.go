package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/application/port"
	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

type renderCall struct {
	section valueobject.SectionID
	data    interface{}
}

type notifyCall struct {
	message  string
	level    valueobject.NotifyLevel
	duration time.Duration
}

type fakeRenderer struct {
	renders  []renderCall
	notifies []notifyCall
}

func (r *fakeRenderer) Render(section valueobject.SectionID, data interface{}) {
	r.renders = append(r.renders, renderCall{section: section, data: data})
}

func (r *fakeRenderer) Notify(message string, level valueobject.NotifyLevel, duration time.Duration) {
	r.notifies = append(r.notifies, notifyCall{message: message, level: level, duration: duration})
}

func (r *fakeRenderer) sections() []valueobject.SectionID {
	out := make([]valueobject.SectionID, len(r.renders))
	for i, call := range r.renders {
		out[i] = call.section
	}
	return out
}

type fakeIntentRepository struct {
	saved []entity.Intent
	err   error
}

func (r *fakeIntentRepository) Save(_ context.Context, intent entity.Intent) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, intent)
	return nil
}

func (r *fakeIntentRepository) FindRecent(_ context.Context, limit int) ([]entity.Intent, error) {
	if r.err != nil {
		return nil, r.err
	}
	if limit < len(r.saved) {
		return r.saved[len(r.saved)-limit:], nil
	}
	return r.saved, nil
}

func (r *fakeIntentRepository) CountByAction(_ context.Context, action valueobject.ResponseAction) (int, error) {
	count := 0
	for _, intent := range r.saved {
		if intent.Action == action {
			count++
		}
	}
	return count, nil
}

type fakeIntentPublisher struct {
	published []entity.Intent
	err       error
}

func (p *fakeIntentPublisher) PublishIntent(_ context.Context, intent entity.Intent) error {
	p.published = append(p.published, intent)
	return p.err
}

func (p *fakeIntentPublisher) Close() error { return nil }

type fakeSnapshotPublisher struct {
	recorded []entity.StreamingMetrics
}

func (p *fakeSnapshotPublisher) Record(snapshot entity.StreamingMetrics, _ time.Time) {
	p.recorded = append(p.recorded, snapshot)
}

func (p *fakeSnapshotPublisher) Flush(context.Context) error { return nil }

type fakePipelineMetrics struct {
	dispatched map[string]int
	dropped    map[string]int
	intents    map[valueobject.ResponseAction]int
}

func newFakePipelineMetrics() *fakePipelineMetrics {
	return &fakePipelineMetrics{
		dispatched: make(map[string]int),
		dropped:    make(map[string]int),
		intents:    make(map[valueobject.ResponseAction]int),
	}
}

func (m *fakePipelineMetrics) EventDispatched(kind string)                      { m.dispatched[kind]++ }
func (m *fakePipelineMetrics) EventDropped(reason string)                       { m.dropped[reason]++ }
func (m *fakePipelineMetrics) TransportStateChanged(valueobject.TransportState) {}
func (m *fakePipelineMetrics) IntentRecorded(action valueobject.ResponseAction) { m.intents[action]++ }

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	sets   chan string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		values: make(map[string]string),
		sets:   make(chan string, 10),
	}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.values[key]
	if !ok {
		return port.ErrCacheMiss
	}
	*(dest.(*string)) = value
	return nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	c.values[key] = value.(string)
	c.mu.Unlock()

	c.sets <- key
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

func (c *fakeCache) Close() error { return nil }

type fakeExporter struct {
	calls int
	body  []byte
	err   error
}

func (e *fakeExporter) Export(_ context.Context, format string) ([]byte, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return append([]byte(format+":"), e.body...), nil
}
