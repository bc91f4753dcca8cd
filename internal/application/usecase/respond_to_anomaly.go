package usecase

import (
	"context"
	"fmt"

	"github.com/dreschagin/megalith-dashboard/internal/application/port"
	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/event"
	"github.com/dreschagin/megalith-dashboard/internal/domain/repository"
	"github.com/dreschagin/megalith-dashboard/internal/domain/service"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

// RespondToAnomalyUseCase фиксирует намерение автоматической реакции на аномалию.
// Реальных действий не выполняет: намерение сохраняется, логируется и
// (если настроен брокер) публикуется.
type RespondToAnomalyUseCase struct {
	policy     *service.ResponsePolicy
	repository repository.IntentRepository
	publisher  port.IntentPublisher
	metrics    port.PipelineMetrics
	logger     *logger.Logger
}

// NewRespondToAnomalyUseCase создает новый use case.
// publisher и metrics могут быть nil.
func NewRespondToAnomalyUseCase(
	policy *service.ResponsePolicy,
	repository repository.IntentRepository,
	publisher port.IntentPublisher,
	metrics port.PipelineMetrics,
	logger *logger.Logger,
) *RespondToAnomalyUseCase {
	if metrics == nil {
		metrics = port.NoopPipelineMetrics{}
	}

	return &RespondToAnomalyUseCase{
		policy:     policy,
		repository: repository,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute возвращает зафиксированное намерение или nil, если реакция не предусмотрена
func (uc *RespondToAnomalyUseCase) Execute(ctx context.Context, anomaly event.AnomalyPayload) (*entity.Intent, error) {
	intent, ok := uc.policy.Decide(anomaly.Type, anomaly.Description, bool(anomaly.AutoResponse))
	if !ok {
		uc.logger.Debug("No automated response for anomaly",
			"type", anomaly.Type.String(),
			"auto_response", bool(anomaly.AutoResponse))
		return nil, nil
	}

	if err := uc.repository.Save(ctx, intent); err != nil {
		uc.logger.Error("Failed to record response intent", err, "action", intent.Action.String())
		return nil, fmt.Errorf("failed to save intent: %w", err)
	}

	uc.metrics.IntentRecorded(intent.Action)
	uc.logger.Info(uc.policy.Describe(intent.Action),
		"intent_id", intent.ID,
		"action", intent.Action.String(),
		"anomaly", intent.Anomaly.String())

	// Публикация не влияет на результат: намерение уже записано
	if uc.publisher != nil {
		if err := uc.publisher.PublishIntent(ctx, intent); err != nil {
			uc.logger.Warn("Failed to publish response intent",
				"intent_id", intent.ID,
				"error", err.Error())
		}
	}

	return &intent, nil
}
