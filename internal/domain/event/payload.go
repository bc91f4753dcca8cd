package event

import (
	"bytes"
	"encoding/json"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

// MetricsPayload полезная нагрузка metrics_update
type MetricsPayload struct {
	Leads               int                      `json:"leads"`
	ConversionRate      float64                  `json:"conversionRate"`
	StreamingThroughput int64                    `json:"streamingThroughput"`
	Streaming           *entity.StreamingMetrics `json:"streamingMetrics,omitempty"`
}

// AnomalyPayload полезная нагрузка anomaly_detected
type AnomalyPayload struct {
	Type         valueobject.AnomalyKind `json:"type"`
	Description  string                  `json:"description"`
	AutoResponse Truthy                  `json:"autoResponse"`
	Severity     string                  `json:"severity,omitempty"`
}

// PipelinePayload полезная нагрузка pipeline_status
type PipelinePayload struct {
	Stage      string   `json:"stage"`
	Status     string   `json:"status"`
	Throughput string   `json:"throughput,omitempty"`
	Latency    string   `json:"latency,omitempty"`
	ErrorRate  *float64 `json:"errorRate,omitempty"`
}

// StageUpdate конвертирует payload в изменение состояния
func (p PipelinePayload) StageUpdate() entity.PipelineStageUpdate {
	return entity.PipelineStageUpdate{
		Stage:      p.Stage,
		Status:     p.Status,
		Throughput: p.Throughput,
		Latency:    p.Latency,
		ErrorRate:  p.ErrorRate,
	}
}

// PredictionPayload полезная нагрузка ai_prediction
type PredictionPayload struct {
	Model      string   `json:"model"`
	Prediction string   `json:"prediction"`
	Confidence float64  `json:"confidence"`
	Accuracy   *float64 `json:"accuracy,omitempty"`
}

// Truthy флаг, который принимает любое JSON-значение.
// false, null, 0 и "" дают false, все остальное true.
type Truthy bool

// UnmarshalJSON реализует json.Unmarshaler
func (t *Truthy) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*t = false
	case bool:
		*t = Truthy(v)
	case float64:
		*t = v != 0
	case string:
		*t = v != ""
	default:
		// объекты и массивы
		*t = true
	}
	return nil
}
