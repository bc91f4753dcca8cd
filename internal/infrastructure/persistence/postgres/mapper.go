package postgres

import (
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

// intentDBModel строка таблицы response_intents
type intentDBModel struct {
	ID          string
	Action      string
	Anomaly     string
	Description string
	RecordedAt  time.Time
}

func toDBModel(intent entity.Intent) intentDBModel {
	return intentDBModel{
		ID:          intent.ID,
		Action:      intent.Action.String(),
		Anomaly:     intent.Anomaly.String(),
		Description: intent.Description,
		RecordedAt:  intent.RecordedAt.UTC(),
	}
}

func (m intentDBModel) toEntity() entity.Intent {
	return entity.Intent{
		ID:          m.ID,
		Action:      valueobject.ResponseAction(m.Action),
		Anomaly:     valueobject.AnomalyKind(m.Anomaly),
		Description: m.Description,
		RecordedAt:  m.RecordedAt.UTC(),
	}
}

// oldestFirst разворачивает выборку ORDER BY DESC в хронологический порядок
func oldestFirst(intents []entity.Intent) []entity.Intent {
	for i, j := 0, len(intents)-1; i < j; i, j = i+1, j-1 {
		intents[i], intents[j] = intents[j], intents[i]
	}
	return intents
}
