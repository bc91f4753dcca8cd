package service

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/event"
)

// Диапазоны random walk и презентационных значений
const (
	MaxMessagesDelta int64 = 100_000

	MinAvgLatencyMs = 5.0
	MaxAvgLatencyMs = 15.0

	leadsJitter      = 50
	conversionJitter = 2.0

	minSimulatedThroughput int64 = 2_000_000
	throughputJitter       int64 = 500_000
)

// RandomSource источник случайных чисел (*rand.Rand подходит)
type RandomSource interface {
	Int63n(n int64) int64
	Float64() float64
}

// MetricMutator генерирует следующий snapshot метрик в режиме polling (Domain Service).
// Владеет текущим snapshot, наружу отдает только копии.
type MetricMutator struct {
	mu       sync.Mutex
	rng      RandomSource
	snapshot entity.StreamingMetrics
	base     entity.MarketingMetrics
}

// NewMetricMutator создает мутатор. rng == nil означает источник, засеянный временем.
func NewMetricMutator(initial entity.StreamingMetrics, base entity.MarketingMetrics, rng RandomSource) *MetricMutator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	initial.MessagesPerSecond = entity.ClampMessagesPerSecond(initial.MessagesPerSecond)

	return &MetricMutator{
		rng:      rng,
		snapshot: initial,
		base:     base,
	}
}

// NextSnapshot применяет random walk к messages-per-second и перевыбирает latency.
// Результат всегда лежит в [MinMessagesPerSecond, MaxMessagesPerSecond].
func (m *MetricMutator) NextSnapshot(prev entity.StreamingMetrics) entity.StreamingMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.nextLocked(prev)
}

func (m *MetricMutator) nextLocked(prev entity.StreamingMetrics) entity.StreamingMetrics {
	next := prev

	delta := m.rng.Int63n(2*MaxMessagesDelta+1) - MaxMessagesDelta
	next.MessagesPerSecond = entity.ClampMessagesPerSecond(prev.MessagesPerSecond + delta)
	next.AvgLatencyMs = math.Round(MinAvgLatencyMs + m.rng.Float64()*(MaxAvgLatencyMs-MinAvgLatencyMs))

	return next
}

// SimulatedMetrics строит payload metrics_update вокруг базовых показателей
func (m *MetricMutator) SimulatedMetrics(base entity.MarketingMetrics) event.MetricsPayload {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.simulatedLocked(base)
}

func (m *MetricMutator) simulatedLocked(base entity.MarketingMetrics) event.MetricsPayload {
	conversion := base.ConversionRate + m.rng.Float64()*conversionJitter

	return event.MetricsPayload{
		Leads:               base.TotalLeads + int(m.rng.Int63n(leadsJitter)),
		ConversionRate:      math.Round(conversion*10) / 10,
		StreamingThroughput: minSimulatedThroughput + m.rng.Int63n(throughputJitter),
	}
}

// Next продвигает собственный snapshot и синтезирует событие metrics_update
func (m *MetricMutator) Next() event.MetricsUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = m.nextLocked(m.snapshot)

	payload := m.simulatedLocked(m.base)
	snapshot := m.snapshot
	payload.Streaming = &snapshot

	return event.MetricsUpdate{Payload: payload}
}

// Snapshot возвращает копию текущего snapshot
func (m *MetricMutator) Snapshot() entity.StreamingMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.snapshot
}
