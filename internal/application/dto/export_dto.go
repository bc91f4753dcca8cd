package dto

import (
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
)

// ExportTimestampLayout ISO-8601 с миллисекундами в UTC
const ExportTimestampLayout = "2006-01-02T15:04:05.000Z"

// ExportDocumentDTO документ экспорта состояния дашборда
type ExportDocumentDTO struct {
	Timestamp        string                      `json:"timestamp"`
	Metrics          entity.MarketingMetrics     `json:"metrics"`
	DataSources      []entity.DataSourceCategory `json:"dataSources"`
	StreamingMetrics entity.StreamingMetrics     `json:"streamingMetrics"`
	AIModels         []entity.AIModel            `json:"aiModels"`
	PipelineHealth   entity.PipelineHealth       `json:"pipelineHealth"`
}

// NewExportDocumentDTO собирает документ из копии состояния
func NewExportDocumentDTO(state *entity.DashboardState, at time.Time) *ExportDocumentDTO {
	snapshot := state.Clone()

	return &ExportDocumentDTO{
		Timestamp:        at.UTC().Format(ExportTimestampLayout),
		Metrics:          snapshot.Metrics,
		DataSources:      snapshot.DataSources,
		StreamingMetrics: snapshot.Streaming,
		AIModels:         snapshot.AIModels,
		PipelineHealth:   snapshot.Pipeline,
	}
}

// ArchiveResultDTO результат выгрузки экспорта в хранилище
type ArchiveResultDTO struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Format     string    `json:"format"`
	SizeBytes  int       `json:"size_bytes"`
	ArchivedAt time.Time `json:"archived_at"`
}
