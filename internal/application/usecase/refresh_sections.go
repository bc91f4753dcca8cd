package usecase

import (
	"github.com/dreschagin/megalith-dashboard/internal/application/port"
	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

// RefreshSectionsUseCase периодически перерисовывает секции дашборда.
// Значения не меняет (кроме ротации рекомендаций): snapshot метрик
// меняется только событиями.
type RefreshSectionsUseCase struct {
	state    *entity.DashboardState
	renderer port.Renderer
	logger   *logger.Logger
}

// NewRefreshSectionsUseCase создает новый use case
func NewRefreshSectionsUseCase(state *entity.DashboardState, renderer port.Renderer, logger *logger.Logger) *RefreshSectionsUseCase {
	return &RefreshSectionsUseCase{
		state:    state,
		renderer: renderer,
		logger:   logger,
	}
}

// RefreshStreaming перерисовывает потоковые метрики
func (uc *RefreshSectionsUseCase) RefreshStreaming() {
	uc.renderer.Render(valueobject.SectionStreaming, uc.state.Streaming)
}

// RefreshPipeline перерисовывает здоровье pipeline
func (uc *RefreshSectionsUseCase) RefreshPipeline() {
	uc.renderer.Render(valueobject.SectionPipeline, uc.state.Pipeline)
}

// RefreshAIModels перерисовывает карточки моделей
func (uc *RefreshSectionsUseCase) RefreshAIModels() {
	uc.renderer.Render(valueobject.SectionAIModels, append([]entity.AIModel(nil), uc.state.AIModels...))
}

// RotateRecommendations показывает следующую рекомендацию первой
func (uc *RefreshSectionsUseCase) RotateRecommendations() {
	uc.state.RotateRecommendations()
	uc.renderer.Render(valueobject.SectionRecommendations, append([]entity.Recommendation(nil), uc.state.Recommendations...))
	uc.logger.Debug("Recommendations rotated", "count", len(uc.state.Recommendations))
}

// RenderAll отрисовывает все секции (старт и подключение нового клиента)
func (uc *RefreshSectionsUseCase) RenderAll() {
	snapshot := uc.state.Clone()

	uc.renderer.Render(valueobject.SectionMetrics, snapshot.Metrics)
	uc.renderer.Render(valueobject.SectionDataSources, snapshot.DataSources)
	uc.renderer.Render(valueobject.SectionStreaming, snapshot.Streaming)
	uc.renderer.Render(valueobject.SectionAIModels, snapshot.AIModels)
	uc.renderer.Render(valueobject.SectionRecommendations, snapshot.Recommendations)
	uc.renderer.Render(valueobject.SectionPipeline, snapshot.Pipeline)
}
