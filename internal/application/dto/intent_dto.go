package dto

import (
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
)

// IntentDTO намерение автоматической реакции для API
type IntentDTO struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Anomaly     string    `json:"anomaly"`
	Description string    `json:"description"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// FromIntent конвертирует Domain Entity в DTO
func FromIntent(intent entity.Intent) IntentDTO {
	return IntentDTO{
		ID:          intent.ID,
		Action:      intent.Action.String(),
		Anomaly:     intent.Anomaly.String(),
		Description: intent.Description,
		RecordedAt:  intent.RecordedAt,
	}
}

// ToIntentDTOs конвертирует слайс Entity в слайс DTO
func ToIntentDTOs(intents []entity.Intent) []IntentDTO {
	dtos := make([]IntentDTO, len(intents))
	for i, intent := range intents {
		dtos[i] = FromIntent(intent)
	}
	return dtos
}
