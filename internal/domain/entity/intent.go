package entity

import (
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/google/uuid"
)

// Intent зафиксированное намерение автоматической реакции.
// Реальных действий (масштабирование, алерты, пауза) не выполняется.
type Intent struct {
	ID          string                     `json:"id"`
	Action      valueobject.ResponseAction `json:"action"`
	Anomaly     valueobject.AnomalyKind    `json:"anomaly"`
	Description string                     `json:"description"`
	RecordedAt  time.Time                  `json:"recorded_at"`
}

// NewIntent создает намерение (Factory Method)
func NewIntent(action valueobject.ResponseAction, anomaly valueobject.AnomalyKind, description string) Intent {
	return Intent{
		ID:          uuid.New().String(),
		Action:      action,
		Anomaly:     anomaly,
		Description: description,
		RecordedAt:  time.Now().UTC(),
	}
}
