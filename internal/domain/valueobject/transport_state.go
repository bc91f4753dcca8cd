package valueobject

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition возвращается при недопустимой смене состояния транспорта
var ErrInvalidTransition = errors.New("invalid transport state transition")

// TransportState состояние канала доставки обновлений (Value Object)
type TransportState string

const (
	TransportUninitialized TransportState = "uninitialized"
	TransportConnected     TransportState = "connected"
	TransportPolling       TransportState = "polling"
	TransportClosed        TransportState = "closed"
)

// String возвращает строковое представление состояния
func (s TransportState) String() string {
	return string(s)
}

// CanTransitionTo проверяет, разрешен ли переход в next.
// Из polling обратно в connected перейти нельзя: polling - постоянный fallback.
func (s TransportState) CanTransitionTo(next TransportState) bool {
	if next == TransportClosed {
		return s != TransportClosed
	}

	switch s {
	case TransportUninitialized:
		return next == TransportConnected || next == TransportPolling
	case TransportConnected:
		return next == TransportPolling
	default:
		return false
	}
}

// TransitionTo возвращает next или ошибку, если переход запрещен
func (s TransportState) TransitionTo(next TransportState) (TransportState, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}

// Gauge числовое значение состояния для метрик
func (s TransportState) Gauge() float64 {
	switch s {
	case TransportConnected:
		return 1
	case TransportPolling:
		return 2
	case TransportClosed:
		return 3
	default:
		return 0
	}
}
