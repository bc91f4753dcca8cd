package port

import (
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

// Renderer отображает секции дашборда и уведомления (Port)
// Реализация в Infrastructure слое (WebSocket Hub).
// Вызовы не должны блокировать event loop.
type Renderer interface {
	// Render перерисовывает секцию по переданным данным
	Render(section valueobject.SectionID, data interface{})

	// Notify показывает всплывающее уведомление
	Notify(message string, level valueobject.NotifyLevel, duration time.Duration)
}
