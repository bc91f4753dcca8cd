package port

import "github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"

// PipelineMetrics счетчики конвейера обновлений (Prometheus в Infrastructure слое)
type PipelineMetrics interface {
	EventDispatched(kind string)
	EventDropped(reason string)
	TransportStateChanged(state valueobject.TransportState)
	IntentRecorded(action valueobject.ResponseAction)
}

// NoopPipelineMetrics используется, когда метрики не настроены
type NoopPipelineMetrics struct{}

func (NoopPipelineMetrics) EventDispatched(string)                           {}
func (NoopPipelineMetrics) EventDropped(string)                              {}
func (NoopPipelineMetrics) TransportStateChanged(valueobject.TransportState) {}
func (NoopPipelineMetrics) IntentRecorded(valueobject.ResponseAction)        {}
