package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/application/port"
	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/event"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

const (
	anomalyNotifyDuration = 5 * time.Second
	responseTimeout       = 5 * time.Second
)

// Причины отбрасывания сообщений (метка метрики)
const (
	DropReasonMalformed   = "malformed"
	DropReasonUnknownKind = "unknown_kind"
)

// DispatchEventUseCase применяет события обновления к состоянию дашборда.
// Все методы вызываются только из event loop контроллера и не блокируются.
type DispatchEventUseCase struct {
	state     *entity.DashboardState
	renderer  port.Renderer
	snapshots port.SnapshotPublisher
	responder *RespondToAnomalyUseCase
	metrics   port.PipelineMetrics
	clock     func() time.Time
	logger    *logger.Logger
}

// NewDispatchEventUseCase создает новый use case.
// snapshots и metrics могут быть nil.
func NewDispatchEventUseCase(
	state *entity.DashboardState,
	renderer port.Renderer,
	snapshots port.SnapshotPublisher,
	responder *RespondToAnomalyUseCase,
	metrics port.PipelineMetrics,
	logger *logger.Logger,
) *DispatchEventUseCase {
	if metrics == nil {
		metrics = port.NoopPipelineMetrics{}
	}

	return &DispatchEventUseCase{
		state:     state,
		renderer:  renderer,
		snapshots: snapshots,
		responder: responder,
		metrics:   metrics,
		clock:     time.Now,
		logger:    logger,
	}
}

// Dispatch синхронно передает событие обработчику его варианта
func (uc *DispatchEventUseCase) Dispatch(ev event.UpdateEvent) {
	if ev == nil {
		return
	}

	ev.Apply(uc)
	uc.metrics.EventDispatched(ev.Kind().String())
}

// DispatchMessage разбирает сообщение и передает его в Dispatch.
// Возвращает false, если сообщение отброшено.
func (uc *DispatchEventUseCase) DispatchMessage(raw []byte) bool {
	ev, err := event.Decode(raw)
	if err != nil {
		reason := DropReasonMalformed
		if errors.Is(err, event.ErrUnknownKind) {
			reason = DropReasonUnknownKind
		}

		uc.logger.Debug("Dropping update message", "reason", reason, "error", err.Error())
		uc.metrics.EventDropped(reason)
		return false
	}

	uc.Dispatch(ev)
	return true
}

// HandleMetricsUpdate обновляет метрики и snapshot потоковой обработки
func (uc *DispatchEventUseCase) HandleMetricsUpdate(ev event.MetricsUpdate) {
	payload := ev.Payload

	uc.state.RecordLeads(payload.Leads, payload.ConversionRate)
	uc.state.RecordThroughput(payload.StreamingThroughput)

	if payload.Streaming != nil {
		snapshot := *payload.Streaming
		uc.state.SetStreaming(snapshot)

		if uc.snapshots != nil {
			uc.snapshots.Record(snapshot, uc.clock())
		}
	}

	uc.renderer.Render(valueobject.SectionMetrics, uc.state.Metrics)
	uc.renderer.Render(valueobject.SectionStreaming, uc.state.Streaming)
}

// HandleAnomalyDetected уведомляет пользователя и запускает автоматическую реакцию
func (uc *DispatchEventUseCase) HandleAnomalyDetected(ev event.AnomalyDetected) {
	payload := ev.Payload

	uc.renderer.Notify(
		fmt.Sprintf("Anomaly detected: %s", payload.Description),
		valueobject.LevelWarning,
		anomalyNotifyDuration,
	)

	uc.logger.Warn("Anomaly detected",
		"type", payload.Type.String(),
		"description", payload.Description,
		"severity", payload.Severity,
		"auto_response", bool(payload.AutoResponse))

	if !payload.AutoResponse || uc.responder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), responseTimeout)
	defer cancel()

	if _, err := uc.responder.Execute(ctx, payload); err != nil {
		uc.logger.Error("Automated response failed", err, "type", payload.Type.String())
	}
}

// HandlePipelineStatus обновляет стадию pipeline
func (uc *DispatchEventUseCase) HandlePipelineStatus(ev event.PipelineStatus) {
	if !uc.state.UpdatePipelineStage(ev.Payload.StageUpdate()) {
		uc.logger.Warn("Ignoring status for unknown pipeline stage", "stage", ev.Payload.Stage)
		return
	}

	uc.renderer.Render(valueobject.SectionPipeline, uc.state.Pipeline)
}

// HandleAIPrediction обновляет карточку модели
func (uc *DispatchEventUseCase) HandleAIPrediction(ev event.AIPrediction) {
	p := ev.Payload

	if !uc.state.ApplyPrediction(p.Model, p.Prediction, p.Confidence, p.Accuracy) {
		uc.logger.Warn("Ignoring prediction for unknown model", "model", p.Model)
		return
	}

	uc.renderer.Render(valueobject.SectionAIModels, append([]entity.AIModel(nil), uc.state.AIModels...))
}
