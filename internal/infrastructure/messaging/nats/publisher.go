package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

const drainTimeout = 5 * time.Second

// IntentMessage сообщение о намерении автоматической реакции
type IntentMessage struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Anomaly     string    `json:"anomaly"`
	Description string    `json:"description"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// IntentPublisher реализует port.IntentPublisher поверх NATS JetStream
type IntentPublisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	prefix string
	logger *logger.Logger
}

// NewIntentPublisher подключается к NATS
func NewIntentPublisher(natsURL, subjectPrefix string, log *logger.Logger) (*IntentPublisher, error) {
	log = log.With("component", "nats")

	nc, err := nats.Connect(natsURL,
		nats.Name("megalith-dashboard"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	log.Info("Connected to NATS", "url", natsURL, "subject_prefix", subjectPrefix)

	return &IntentPublisher{
		nc:     nc,
		js:     js,
		prefix: subjectPrefix,
		logger: log,
	}, nil
}

// Subject тема для действия, например dashboard.automation.scale_up
func Subject(prefix string, intent entity.Intent) string {
	return prefix + "." + intent.Action.String()
}

// NewIntentMessage формирует сообщение для брокера
func NewIntentMessage(intent entity.Intent) IntentMessage {
	return IntentMessage{
		ID:          intent.ID,
		Action:      intent.Action.String(),
		Anomaly:     intent.Anomaly.String(),
		Description: intent.Description,
		RecordedAt:  intent.RecordedAt,
	}
}

// PublishIntent публикует намерение асинхронно (fire-and-forget)
func (p *IntentPublisher) PublishIntent(ctx context.Context, intent entity.Intent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(NewIntentMessage(intent))
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}

	subject := Subject(p.prefix, intent)
	if _, err := p.js.PublishAsync(subject, data, nats.MsgId(intent.ID)); err != nil {
		return fmt.Errorf("failed to publish intent: %w", err)
	}

	p.logger.Debug("Intent published",
		"subject", subject,
		"intent_id", intent.ID,
		"size", len(data),
	)

	return nil
}

// Close дожидается отправки async-публикаций и закрывает соединение
func (p *IntentPublisher) Close() error {
	if p.nc == nil {
		return nil
	}

	select {
	case <-p.js.PublishAsyncComplete():
	case <-time.After(drainTimeout):
		p.logger.Warn("Pending NATS publishes not acknowledged before close",
			"pending", p.js.PublishAsyncPending())
	}

	p.logger.Info("Closing NATS connection")
	p.nc.Close()
	return nil
}
