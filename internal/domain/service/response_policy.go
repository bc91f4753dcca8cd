package service

import (
	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

// ResponsePolicy решает, какую автоматическую реакцию зафиксировать для аномалии
type ResponsePolicy struct{}

// NewResponsePolicy создает новый ResponsePolicy
func NewResponsePolicy() *ResponsePolicy {
	return &ResponsePolicy{}
}

// Decide возвращает намерение для аномалии.
// Для неизвестных типов и при выключенном autoResponse возвращает false.
func (p *ResponsePolicy) Decide(kind valueobject.AnomalyKind, description string, autoResponse bool) (entity.Intent, bool) {
	if !autoResponse {
		return entity.Intent{}, false
	}

	action, ok := valueobject.ActionFor(kind)
	if !ok {
		return entity.Intent{}, false
	}

	return entity.NewIntent(action, kind, description), true
}

// Describe человекочитаемое описание намерения для логов
func (p *ResponsePolicy) Describe(action valueobject.ResponseAction) string {
	switch action {
	case valueobject.ActionScaleUp:
		return "Auto-scaling triggered for traffic spike"
	case valueobject.ActionTeamAlert:
		return "Marketing team alerted for conversion drop"
	case valueobject.ActionPipelinePause:
		return "Data quality issue - pausing affected pipelines"
	default:
		return "No automated response"
	}
}
