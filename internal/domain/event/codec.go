package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformed сообщение не разбирается как событие
	ErrMalformed = errors.New("malformed update event")

	// ErrUnknownKind тег события не поддерживается
	ErrUnknownKind = errors.New("unknown update event kind")
)

type envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode разбирает сообщение вида {"type": ..., "payload": {...}}
func Decode(data []byte) (UpdateEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	payload := bytes.TrimSpace(env.Payload)

	switch env.Type {
	case KindMetricsUpdate:
		var p MetricsPayload
		if err := decodePayload(payload, &p); err != nil {
			return nil, err
		}
		return MetricsUpdate{Payload: p}, nil

	case KindAnomalyDetected:
		var p AnomalyPayload
		if err := decodePayload(payload, &p); err != nil {
			return nil, err
		}
		return AnomalyDetected{Payload: p}, nil

	case KindPipelineStatus:
		var p PipelinePayload
		if err := decodePayload(payload, &p); err != nil {
			return nil, err
		}
		return PipelineStatus{Payload: p}, nil

	case KindAIPrediction:
		var p PredictionPayload
		if err := decodePayload(payload, &p); err != nil {
			return nil, err
		}
		return AIPrediction{Payload: p}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
}

func decodePayload(raw json.RawMessage, dest interface{}) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// Encode сериализует событие в проводной формат
func Encode(ev UpdateEvent) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: nil event", ErrMalformed)
	}

	var payload interface{}
	switch e := ev.(type) {
	case MetricsUpdate:
		payload = e.Payload
	case AnomalyDetected:
		payload = e.Payload
	case PipelineStatus:
		payload = e.Payload
	case AIPrediction:
		payload = e.Payload
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return json.Marshal(envelope{Type: ev.Kind(), Payload: raw})
}
