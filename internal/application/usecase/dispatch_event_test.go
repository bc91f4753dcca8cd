package usecase

import (
	"strings"
	"testing"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/event"
	"github.com/dreschagin/megalith-dashboard/internal/domain/service"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

type dispatchFixture struct {
	state     *entity.DashboardState
	renderer  *fakeRenderer
	snapshots *fakeSnapshotPublisher
	repo      *fakeIntentRepository
	metrics   *fakePipelineMetrics
	uc        *DispatchEventUseCase
}

func newDispatchFixture() *dispatchFixture {
	log := logger.New("error")
	f := &dispatchFixture{
		state:     entity.NewSampleDashboardState(),
		renderer:  &fakeRenderer{},
		snapshots: &fakeSnapshotPublisher{},
		repo:      &fakeIntentRepository{},
		metrics:   newFakePipelineMetrics(),
	}

	responder := NewRespondToAnomalyUseCase(service.NewResponsePolicy(), f.repo, nil, f.metrics, log)
	f.uc = NewDispatchEventUseCase(f.state, f.renderer, f.snapshots, responder, f.metrics, log)
	return f
}

func TestDispatchEventUseCase_MetricsUpdate(t *testing.T) {
	f := newDispatchFixture()
	snapshot := entity.StreamingMetrics{KafkaPartitions: 256, MessagesPerSecond: 2_550_000, AvgLatencyMs: 9}

	f.uc.Dispatch(event.MetricsUpdate{Payload: event.MetricsPayload{
		Leads:               1290,
		ConversionRate:      13.1,
		StreamingThroughput: 2_100_000,
		Streaming:           &snapshot,
	}})

	if f.state.Metrics.TotalLeads != 1290 || f.state.Metrics.ConversionRate != 13.1 {
		t.Errorf("metrics not applied: %+v", f.state.Metrics)
	}
	if f.state.Metrics.DataVelocity != "2.1M events/sec" {
		t.Errorf("DataVelocity = %q", f.state.Metrics.DataVelocity)
	}
	if f.state.Streaming.MessagesPerSecond != 2_550_000 {
		t.Errorf("streaming snapshot not applied: %+v", f.state.Streaming)
	}

	sections := f.renderer.sections()
	if len(sections) != 2 || sections[0] != valueobject.SectionMetrics || sections[1] != valueobject.SectionStreaming {
		t.Errorf("unexpected renders: %v", sections)
	}
	if len(f.snapshots.recorded) != 1 {
		t.Errorf("expected snapshot to be recorded, got %d", len(f.snapshots.recorded))
	}
	if f.metrics.dispatched[string(event.KindMetricsUpdate)] != 1 {
		t.Errorf("dispatch counter not incremented: %v", f.metrics.dispatched)
	}
}

func TestDispatchEventUseCase_AnomalyWithAutoResponse(t *testing.T) {
	f := newDispatchFixture()

	f.uc.Dispatch(event.AnomalyDetected{Payload: event.AnomalyPayload{
		Type:         valueobject.AnomalyTrafficSpike,
		Description:  "Traffic 3x above baseline",
		AutoResponse: true,
	}})

	if len(f.renderer.notifies) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.renderer.notifies))
	}
	notice := f.renderer.notifies[0]
	if notice.message != "Anomaly detected: Traffic 3x above baseline" {
		t.Errorf("unexpected message: %q", notice.message)
	}
	if notice.level != valueobject.LevelWarning || notice.duration != anomalyNotifyDuration {
		t.Errorf("unexpected notification: %+v", notice)
	}

	if len(f.repo.saved) != 1 || f.repo.saved[0].Action != valueobject.ActionScaleUp {
		t.Fatalf("expected exactly one scale_up intent, got %+v", f.repo.saved)
	}
}

func TestDispatchEventUseCase_AnomalyWithoutAutoResponse(t *testing.T) {
	f := newDispatchFixture()

	f.uc.Dispatch(event.AnomalyDetected{Payload: event.AnomalyPayload{
		Type:        valueobject.AnomalyDataQuality,
		Description: "Schema drift",
	}})

	if len(f.renderer.notifies) != 1 {
		t.Fatalf("expected notification, got %d", len(f.renderer.notifies))
	}
	if len(f.repo.saved) != 0 {
		t.Fatalf("expected no intents, got %d", len(f.repo.saved))
	}
}

func TestDispatchEventUseCase_PipelineStatus(t *testing.T) {
	f := newDispatchFixture()

	f.uc.Dispatch(event.PipelineStatus{Payload: event.PipelinePayload{Stage: entity.StageIngestion, Status: "degraded"}})
	if f.state.Pipeline.DataIngestion.Status != "degraded" {
		t.Errorf("stage not updated: %+v", f.state.Pipeline.DataIngestion)
	}
	if sections := f.renderer.sections(); len(sections) != 1 || sections[0] != valueobject.SectionPipeline {
		t.Errorf("unexpected renders: %v", sections)
	}

	f.uc.Dispatch(event.PipelineStatus{Payload: event.PipelinePayload{Stage: "dataWarehouse", Status: "down"}})
	if len(f.renderer.renders) != 1 {
		t.Errorf("unknown stage must not render, got %d renders", len(f.renderer.renders))
	}
}

func TestDispatchEventUseCase_AIPrediction(t *testing.T) {
	f := newDispatchFixture()
	model := f.state.AIModels[1].Name

	f.uc.Dispatch(event.AIPrediction{Payload: event.PredictionPayload{Model: model, Prediction: "High churn risk", Confidence: 0.93}})

	if f.state.AIModels[1].LastPrediction != "High churn risk" {
		t.Errorf("prediction not applied: %+v", f.state.AIModels[1])
	}
	if sections := f.renderer.sections(); len(sections) != 1 || sections[0] != valueobject.SectionAIModels {
		t.Errorf("unexpected renders: %v", sections)
	}

	// Рендер получает копию, а не слайс состояния
	rendered := f.renderer.renders[0].data.([]entity.AIModel)
	rendered[1].LastPrediction = "mutated"
	if f.state.AIModels[1].LastPrediction != "High churn risk" {
		t.Error("renderer data must not alias dashboard state")
	}
}

func TestDispatchEventUseCase_DispatchMessageDropsUnknownKind(t *testing.T) {
	f := newDispatchFixture()
	before := f.state.Clone()

	if f.uc.DispatchMessage([]byte(`{"type":"user_login","payload":{"user":"x"}}`)) {
		t.Fatal("unknown kind must be dropped")
	}

	if len(f.renderer.renders) != 0 || len(f.renderer.notifies) != 0 {
		t.Errorf("no handler may run for unknown kind")
	}
	if f.state.Metrics != before.Metrics {
		t.Errorf("state changed for unknown kind")
	}
	if f.metrics.dropped[DropReasonUnknownKind] != 1 {
		t.Errorf("drop counter = %v", f.metrics.dropped)
	}
}

func TestDispatchEventUseCase_DispatchMessageDropsMalformed(t *testing.T) {
	f := newDispatchFixture()

	for _, raw := range []string{`{`, `{"type":"metrics_update","payload":"oops"}`} {
		if f.uc.DispatchMessage([]byte(raw)) {
			t.Errorf("DispatchMessage(%s) = true, want false", raw)
		}
	}
	if f.metrics.dropped[DropReasonMalformed] != 2 {
		t.Errorf("drop counter = %v", f.metrics.dropped)
	}
}

func TestDispatchEventUseCase_DispatchMessageDecodes(t *testing.T) {
	f := newDispatchFixture()

	ok := f.uc.DispatchMessage([]byte(`{"type":"anomaly_detected","payload":{"type":"conversion_drop","description":"CVR -30%","autoResponse":true}}`))
	if !ok {
		t.Fatal("expected message to be dispatched")
	}
	if len(f.repo.saved) != 1 || f.repo.saved[0].Action != valueobject.ActionTeamAlert {
		t.Fatalf("expected team_alert intent, got %+v", f.repo.saved)
	}
	if !strings.Contains(f.renderer.notifies[0].message, "CVR -30%") {
		t.Errorf("unexpected notification: %q", f.renderer.notifies[0].message)
	}
}
