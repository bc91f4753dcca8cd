package valueobject

// AnomalyKind тип аномалии из события anomaly_detected
type AnomalyKind string

const (
	AnomalyTrafficSpike   AnomalyKind = "traffic_spike"
	AnomalyConversionDrop AnomalyKind = "conversion_drop"
	AnomalyDataQuality    AnomalyKind = "data_quality"
)

// String возвращает строковое представление
func (k AnomalyKind) String() string {
	return string(k)
}

// IsKnown сообщает, есть ли для аномалии автоматическая реакция
func (k AnomalyKind) IsKnown() bool {
	switch k {
	case AnomalyTrafficSpike, AnomalyConversionDrop, AnomalyDataQuality:
		return true
	default:
		return false
	}
}
