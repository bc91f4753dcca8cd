// Package event описывает обновления, которые доставляет транспорт.
//
// UpdateEvent закрытый вариантный тип: реализовать его можно только в этом
// пакете, а каждый вариант вызывает свой метод Handler. Новый вариант
// требует нового метода Handler, поэтому все обработчики перестанут
// компилироваться, пока его не обработают.
package event

// Kind тег события на проводе
type Kind string

const (
	KindMetricsUpdate   Kind = "metrics_update"
	KindAnomalyDetected Kind = "anomaly_detected"
	KindPipelineStatus  Kind = "pipeline_status"
	KindAIPrediction    Kind = "ai_prediction"
)

// String возвращает строковое представление тега
func (k Kind) String() string {
	return string(k)
}

// Kinds возвращает все известные теги
func Kinds() []Kind {
	return []Kind{KindMetricsUpdate, KindAnomalyDetected, KindPipelineStatus, KindAIPrediction}
}

// Handler обрабатывает каждый вариант события
type Handler interface {
	HandleMetricsUpdate(ev MetricsUpdate)
	HandleAnomalyDetected(ev AnomalyDetected)
	HandlePipelineStatus(ev PipelineStatus)
	HandleAIPrediction(ev AIPrediction)
}

// UpdateEvent событие обновления дашборда
type UpdateEvent interface {
	Kind() Kind
	Apply(h Handler)
	sealed()
}

// MetricsUpdate новые значения метрик
type MetricsUpdate struct {
	Payload MetricsPayload
}

// AnomalyDetected обнаруженная аномалия
type AnomalyDetected struct {
	Payload AnomalyPayload
}

// PipelineStatus изменение статуса стадии pipeline
type PipelineStatus struct {
	Payload PipelinePayload
}

// AIPrediction прогноз одной из моделей
type AIPrediction struct {
	Payload PredictionPayload
}

func (MetricsUpdate) Kind() Kind   { return KindMetricsUpdate }
func (AnomalyDetected) Kind() Kind { return KindAnomalyDetected }
func (PipelineStatus) Kind() Kind  { return KindPipelineStatus }
func (AIPrediction) Kind() Kind    { return KindAIPrediction }

func (e MetricsUpdate) Apply(h Handler)   { h.HandleMetricsUpdate(e) }
func (e AnomalyDetected) Apply(h Handler) { h.HandleAnomalyDetected(e) }
func (e PipelineStatus) Apply(h Handler)  { h.HandlePipelineStatus(e) }
func (e AIPrediction) Apply(h Handler)    { h.HandleAIPrediction(e) }

func (MetricsUpdate) sealed()   {}
func (AnomalyDetected) sealed() {}
func (PipelineStatus) sealed()  {}
func (AIPrediction) sealed()    {}
