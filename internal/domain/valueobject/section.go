package valueobject

// SectionID идентификатор секции дашборда для рендеринга
type SectionID string

const (
	SectionMetrics         SectionID = "metrics"
	SectionStreaming       SectionID = "streaming"
	SectionPipeline        SectionID = "pipeline"
	SectionAIModels        SectionID = "ai-models"
	SectionRecommendations SectionID = "recommendations"
	SectionDataSources     SectionID = "data-sources"
)

// String возвращает строковое представление
func (s SectionID) String() string {
	return string(s)
}
