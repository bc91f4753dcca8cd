package simulator

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/event"
	"github.com/dreschagin/megalith-dashboard/internal/domain/service"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

var (
	pipelineStages = []string{entity.StageIngestion, entity.StageProcessing, entity.StageStorage}
	stageStatuses  = []string{"healthy", "healthy", "healthy", "degraded"}

	anomalies = []struct {
		kind        valueobject.AnomalyKind
		description string
		severity    string
	}{
		{valueobject.AnomalyTrafficSpike, "Unusual traffic spike detected on web analytics", "high"},
		{valueobject.AnomalyConversionDrop, "Conversion rate dropped below 7-day baseline", "medium"},
		{valueobject.AnomalyDataQuality, "Schema drift detected in CRM ingestion", "high"},
	}

	predictions = []string{
		"LTV forecast revised upward for enterprise segment",
		"Churn risk elevated for trial cohort",
		"Paid social attribution share increasing",
		"No anomalies expected in the next hour",
	}
)

// Generator выдает поток событий в проводном формате.
// Метрики идут через тот же MetricMutator, что и polling в дашборде.
type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	mutator *service.MetricMutator
	models  []string
	cfg     Config
	seq     int
}

func NewGenerator(cfg Config) *Generator {
	state := entity.NewSampleDashboardState()
	rng := rand.New(rand.NewSource(cfg.Seed))

	models := make([]string, 0, len(state.AIModels))
	for _, m := range state.AIModels {
		models = append(models, m.Name)
	}

	return &Generator{
		rng:     rng,
		mutator: service.NewMetricMutator(state.Streaming, state.Metrics, rng),
		models:  models,
		cfg:     cfg,
	}
}

// Next возвращает следующее событие
func (g *Generator) Next() event.UpdateEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seq++
	if g.cfg.AnomalyEvery > 0 && g.seq%g.cfg.AnomalyEvery == 0 {
		a := anomalies[g.rng.Intn(len(anomalies))]
		return event.AnomalyDetected{Payload: event.AnomalyPayload{
			Type:         a.kind,
			Description:  a.description,
			AutoResponse: event.Truthy(g.rng.Intn(2) == 0),
			Severity:     a.severity,
		}}
	}

	switch g.rng.Intn(6) {
	case 0:
		errorRate := float64(g.rng.Intn(10)) / 100
		return event.PipelineStatus{Payload: event.PipelinePayload{
			Stage:      pipelineStages[g.rng.Intn(len(pipelineStages))],
			Status:     stageStatuses[g.rng.Intn(len(stageStatuses))],
			Throughput: fmt.Sprintf("%.1fM events/sec", 2+g.rng.Float64()),
			Latency:    fmt.Sprintf("%dms", 5+g.rng.Intn(20)),
			ErrorRate:  &errorRate,
		}}
	case 1:
		accuracy := 85 + g.rng.Float64()*14
		return event.AIPrediction{Payload: event.PredictionPayload{
			Model:      g.models[g.rng.Intn(len(g.models))],
			Prediction: predictions[g.rng.Intn(len(predictions))],
			Confidence: 0.7 + g.rng.Float64()*0.3,
			Accuracy:   &accuracy,
		}}
	default:
		return g.mutator.Next()
	}
}

// NextMessage возвращает следующее сообщение для отправки.
// При включенном MalformedEvery часть сообщений намеренно не декодируется.
func (g *Generator) NextMessage() ([]byte, error) {
	ev := g.Next()

	g.mu.Lock()
	malformed := g.cfg.MalformedEvery > 0 && g.seq%g.cfg.MalformedEvery == 0
	g.mu.Unlock()

	if malformed {
		return []byte(`{"type":"metrics_update","payload":`), nil
	}

	return event.Encode(ev)
}
