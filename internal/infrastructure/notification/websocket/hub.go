package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

const broadcastBuffer = 256

// Типы сообщений для браузерного дашборда
const (
	MessageRender       = "render"
	MessageNotification = "notification"
)

// Message сообщение, отправляемое клиенту
type Message struct {
	Type    string                `json:"type"`
	Section valueobject.SectionID `json:"section,omitempty"`
	Data    interface{}           `json:"data"`
}

// NotificationData содержимое сообщения notification
type NotificationData struct {
	Message    string                  `json:"message"`
	Level      valueobject.NotifyLevel `json:"level"`
	DurationMs int64                   `json:"durationMs"`
}

// Hub управляет WebSocket клиентами и рассылает им секции и уведомления.
// Реализует интерфейс port.Renderer.
type Hub struct {
	clients map[*Client]bool

	// Сообщения сериализуются в Render/Notify, hub рассылает готовые байты
	broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	onConnect func()

	logger *logger.Logger
}

// NewHub создает новый WebSocket hub
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With("component", "hub"),
	}
}

// OnConnect задает callback, вызываемый после регистрации клиента.
// Должен быть задан до Run.
func (h *Hub) OnConnect(fn func()) {
	h.onConnect = fn
}

// Run запускает hub (должен быть запущен в отдельной goroutine)
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("WebSocket hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client registered", "client_id", client.id, "total_clients", total)

			if h.onConnect != nil {
				h.onConnect()
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client unregistered", "client_id", client.id, "total_clients", total)

		case payload := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Канал клиента заполнен, закрываем соединение
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("Client channel full, disconnected", "client_id", client.id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register регистрирует нового клиента. После остановки hub возвращает false.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister удаляет клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Render отправляет секцию всем клиентам (реализация port.Renderer).
// data сериализуется сразу, поэтому вызывающий может менять ее после возврата.
func (h *Hub) Render(section valueobject.SectionID, data interface{}) {
	h.publish(Message{Type: MessageRender, Section: section, Data: data})
}

// Notify отправляет уведомление всем клиентам (реализация port.Renderer)
func (h *Hub) Notify(message string, level valueobject.NotifyLevel, duration time.Duration) {
	h.publish(Message{
		Type: MessageNotification,
		Data: NotificationData{
			Message:    message,
			Level:      level,
			DurationMs: duration.Milliseconds(),
		},
	})
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) publish(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode hub message", err, "type", msg.Type, "section", msg.Section.String())
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("Broadcast channel full, dropping message", "type", msg.Type, "section", msg.Section.String())
	}
}
