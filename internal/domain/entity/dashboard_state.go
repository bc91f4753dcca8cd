package entity

import "fmt"

// MarketingMetrics базовые маркетинговые показатели
type MarketingMetrics struct {
	TotalLeads       int     `json:"totalLeads"`
	ConversionRate   float64 `json:"conversionRate"`
	CAC              int     `json:"cac"`
	LTV              int     `json:"ltv"`
	MonthlyGrowth    float64 `json:"monthlyGrowth"`
	TotalDataSources int     `json:"totalDataSources"`
	RealTimeStreams  int     `json:"realTimeStreams"`
	DataVelocity     string  `json:"dataVelocity"`
	StorageCapacity  string  `json:"storageCapacity"`
	AIModelAccuracy  float64 `json:"aiModelAccuracy"`
}

type DataSource struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	DataRate string `json:"dataRate"`
	Volume   string `json:"volume"`
}

type DataSourceCategory struct {
	Category string       `json:"category"`
	Sources  []DataSource `json:"sources"`
}

// AIModel карточка модели на дашборде
type AIModel struct {
	Name           string  `json:"name"`
	Accuracy       float64 `json:"accuracy"`
	LastTrained    string  `json:"lastTrained"`
	Predictions    string  `json:"predictions"`
	Status         string  `json:"status"`
	LastPrediction string  `json:"lastPrediction,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
}

type Recommendation struct {
	Type       string  `json:"type"`
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"`
	Impact     string  `json:"impact"`
	Timeframe  string  `json:"timeframe"`
}

type IngestionHealth struct {
	Status     string  `json:"status"`
	Throughput string  `json:"throughput"`
	Latency    string  `json:"latency"`
	ErrorRate  float64 `json:"errorRate"`
}

type ProcessingHealth struct {
	Status            string `json:"status"`
	SparkJobs         int    `json:"sparkJobs"`
	AvgProcessingTime string `json:"avgProcessingTime"`
	QueueDepth        int    `json:"queueDepth"`
}

type StorageHealth struct {
	Status           string  `json:"status"`
	UtilizationRate  float64 `json:"utilizationRate"`
	CompressionRatio float64 `json:"compressionRatio"`
	QueryLatency     string  `json:"queryLatency"`
}

type PipelineHealth struct {
	DataIngestion  IngestionHealth  `json:"dataIngestion"`
	DataProcessing ProcessingHealth `json:"dataProcessing"`
	DataStorage    StorageHealth    `json:"dataStorage"`
}

// Имена стадий pipeline в событиях pipeline_status
const (
	StageIngestion  = "dataIngestion"
	StageProcessing = "dataProcessing"
	StageStorage    = "dataStorage"
)

// DashboardState состояние приложения (Aggregate Root).
// Принадлежит event loop контроллера, снаружи доступно только через Clone.
type DashboardState struct {
	Metrics         MarketingMetrics     `json:"metrics"`
	DataSources     []DataSourceCategory `json:"dataSources"`
	Streaming       StreamingMetrics     `json:"streamingMetrics"`
	AIModels        []AIModel            `json:"aiModels"`
	Recommendations []Recommendation     `json:"recommendations"`
	Pipeline        PipelineHealth       `json:"pipelineHealth"`
}

// Clone возвращает глубокую копию состояния
func (s *DashboardState) Clone() *DashboardState {
	clone := *s

	clone.DataSources = make([]DataSourceCategory, len(s.DataSources))
	for i, category := range s.DataSources {
		clone.DataSources[i] = DataSourceCategory{
			Category: category.Category,
			Sources:  append([]DataSource(nil), category.Sources...),
		}
	}
	clone.AIModels = append([]AIModel(nil), s.AIModels...)
	clone.Recommendations = append([]Recommendation(nil), s.Recommendations...)

	return &clone
}

// RecordLeads обновляет лиды и конверсию из metrics_update
func (s *DashboardState) RecordLeads(leads int, conversionRate float64) {
	if leads > 0 {
		s.Metrics.TotalLeads = leads
	}
	if conversionRate > 0 {
		s.Metrics.ConversionRate = conversionRate
	}
}

// RecordThroughput отображает пропускную способность в dataVelocity ("2.4M events/sec")
func (s *DashboardState) RecordThroughput(eventsPerSecond int64) {
	if eventsPerSecond <= 0 {
		return
	}
	s.Metrics.DataVelocity = fmt.Sprintf("%.1fM events/sec", float64(eventsPerSecond)/1_000_000)
}

// SetStreaming заменяет snapshot потоковых метрик
func (s *DashboardState) SetStreaming(snapshot StreamingMetrics) {
	s.Streaming = snapshot
}

// PipelineStageUpdate изменение одной стадии pipeline. Пустые поля не меняются.
type PipelineStageUpdate struct {
	Stage      string
	Status     string
	Throughput string
	Latency    string
	ErrorRate  *float64
}

// UpdatePipelineStage применяет изменение стадии. Возвращает false для неизвестной стадии.
func (s *DashboardState) UpdatePipelineStage(update PipelineStageUpdate) bool {
	switch update.Stage {
	case StageIngestion:
		health := &s.Pipeline.DataIngestion
		setIfNotEmpty(&health.Status, update.Status)
		setIfNotEmpty(&health.Throughput, update.Throughput)
		setIfNotEmpty(&health.Latency, update.Latency)
		if update.ErrorRate != nil {
			health.ErrorRate = *update.ErrorRate
		}
	case StageProcessing:
		setIfNotEmpty(&s.Pipeline.DataProcessing.Status, update.Status)
		setIfNotEmpty(&s.Pipeline.DataProcessing.AvgProcessingTime, update.Latency)
	case StageStorage:
		setIfNotEmpty(&s.Pipeline.DataStorage.Status, update.Status)
		setIfNotEmpty(&s.Pipeline.DataStorage.QueryLatency, update.Latency)
	default:
		return false
	}
	return true
}

// ApplyPrediction записывает прогноз в карточку модели. Возвращает false, если модель не найдена.
func (s *DashboardState) ApplyPrediction(model, prediction string, confidence float64, accuracy *float64) bool {
	for i := range s.AIModels {
		if s.AIModels[i].Name != model {
			continue
		}
		s.AIModels[i].LastPrediction = prediction
		s.AIModels[i].Confidence = confidence
		if accuracy != nil {
			s.AIModels[i].Accuracy = *accuracy
		}
		return true
	}
	return false
}

// RotateRecommendations сдвигает список рекомендаций на одну позицию
func (s *DashboardState) RotateRecommendations() {
	if len(s.Recommendations) < 2 {
		return
	}
	first := s.Recommendations[0]
	copy(s.Recommendations, s.Recommendations[1:])
	s.Recommendations[len(s.Recommendations)-1] = first
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
