package valueobject

import "time"

// NotifyLevel уровень всплывающего уведомления
type NotifyLevel string

const (
	LevelInfo    NotifyLevel = "info"
	LevelSuccess NotifyLevel = "success"
	LevelWarning NotifyLevel = "warning"
	LevelError   NotifyLevel = "error"
)

// DefaultNotifyDuration длительность показа уведомления по умолчанию
const DefaultNotifyDuration = 3 * time.Second

// String возвращает строковое представление
func (l NotifyLevel) String() string {
	return string(l)
}
