package entity

// Границы random walk для messages-per-second
const (
	MinMessagesPerSecond int64 = 2_000_000
	MaxMessagesPerSecond int64 = 3_000_000
)

// StreamingMetrics snapshot метрик потоковой обработки (Value Object).
// Передается по значению, поэтому получатель не может изменить чужую копию.
type StreamingMetrics struct {
	KafkaPartitions   int     `json:"kafkaPartitions"`
	MessagesPerSecond int64   `json:"messagesPerSecond"`
	AvgLatencyMs      float64 `json:"avgLatencyMs"`
	Throughput        string  `json:"throughput"`
	ActiveConnections int     `json:"activeConnections"`
	ErrorRate         float64 `json:"errorRate"`
}

// ClampMessagesPerSecond ограничивает значение допустимым диапазоном
func ClampMessagesPerSecond(v int64) int64 {
	if v < MinMessagesPerSecond {
		return MinMessagesPerSecond
	}
	if v > MaxMessagesPerSecond {
		return MaxMessagesPerSecond
	}
	return v
}

// WithinBounds проверяет инвариант диапазона messages-per-second
func (s StreamingMetrics) WithinBounds() bool {
	return s.MessagesPerSecond >= MinMessagesPerSecond && s.MessagesPerSecond <= MaxMessagesPerSecond
}
