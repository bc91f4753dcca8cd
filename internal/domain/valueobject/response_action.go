package valueobject

// ResponseAction намерение автоматической реакции на аномалию
type ResponseAction string

const (
	ActionScaleUp       ResponseAction = "scale_up"
	ActionTeamAlert     ResponseAction = "team_alert"
	ActionPipelinePause ResponseAction = "pipeline_pause"
)

// String возвращает строковое представление
func (a ResponseAction) String() string {
	return string(a)
}

// ActionFor сопоставляет тип аномалии с реакцией.
// Второй результат false для аномалий без реакции.
func ActionFor(kind AnomalyKind) (ResponseAction, bool) {
	switch kind {
	case AnomalyTrafficSpike:
		return ActionScaleUp, true
	case AnomalyConversionDrop:
		return ActionTeamAlert, true
	case AnomalyDataQuality:
		return ActionPipelinePause, true
	default:
		return "", false
	}
}
