package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/dreschagin/megalith-dashboard/internal/domain/event"
	"github.com/dreschagin/megalith-dashboard/internal/domain/service"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

func TestRespondToAnomalyUseCase_TrafficSpikeRecordsOneScaleUp(t *testing.T) {
	repo := &fakeIntentRepository{}
	publisher := &fakeIntentPublisher{}
	metrics := newFakePipelineMetrics()
	uc := NewRespondToAnomalyUseCase(service.NewResponsePolicy(), repo, publisher, metrics, logger.New("error"))

	intent, err := uc.Execute(context.Background(), event.AnomalyPayload{
		Type:         valueobject.AnomalyTrafficSpike,
		Description:  "spike",
		AutoResponse: true,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if intent == nil || intent.Action != valueobject.ActionScaleUp {
		t.Fatalf("expected scale_up intent, got %+v", intent)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected exactly one intent, got %d", len(repo.saved))
	}
	if len(publisher.published) != 1 || publisher.published[0].ID != intent.ID {
		t.Errorf("intent not published: %+v", publisher.published)
	}
	if metrics.intents[valueobject.ActionScaleUp] != 1 {
		t.Errorf("intent counter = %v", metrics.intents)
	}
}

func TestRespondToAnomalyUseCase_UnknownKindIgnored(t *testing.T) {
	repo := &fakeIntentRepository{}
	uc := NewRespondToAnomalyUseCase(service.NewResponsePolicy(), repo, nil, nil, logger.New("error"))

	intent, err := uc.Execute(context.Background(), event.AnomalyPayload{Type: "latency", AutoResponse: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if intent != nil || len(repo.saved) != 0 {
		t.Fatalf("expected no intent, got %+v", intent)
	}
}

func TestRespondToAnomalyUseCase_PublishFailureIsNotFatal(t *testing.T) {
	repo := &fakeIntentRepository{}
	publisher := &fakeIntentPublisher{err: errors.New("nats: connection closed")}
	uc := NewRespondToAnomalyUseCase(service.NewResponsePolicy(), repo, publisher, nil, logger.New("error"))

	intent, err := uc.Execute(context.Background(), event.AnomalyPayload{Type: valueobject.AnomalyDataQuality, AutoResponse: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if intent == nil || intent.Action != valueobject.ActionPipelinePause {
		t.Fatalf("expected pipeline_pause intent, got %+v", intent)
	}
}

func TestRespondToAnomalyUseCase_SaveError(t *testing.T) {
	repo := &fakeIntentRepository{err: errors.New("full")}
	uc := NewRespondToAnomalyUseCase(service.NewResponsePolicy(), repo, nil, nil, logger.New("error"))

	if _, err := uc.Execute(context.Background(), event.AnomalyPayload{Type: valueobject.AnomalyTrafficSpike, AutoResponse: true}); err == nil {
		t.Fatal("expected error")
	}
}
