package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/observability"
)

const (
	hubSendBufferSize = 32
	hubPingInterval   = 30 * time.Second
)

// MessageConn is the subset of a websocket connection used by the hub.
type MessageConn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// MessageHub tracks live websocket clients per user and pushes new messages to them.
type MessageHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*hubClient]struct{}
	nodeID  string
	logger  zerolog.Logger
}

type hubClient struct {
	userID uint
	conn   MessageConn
	send   chan dto.MessageResponse
	closed chan struct{}
	once   sync.Once
}

// NewMessageHub constructs a hub. nodeID identifies this process on the event bus.
func NewMessageHub(nodeID string, logger zerolog.Logger) *MessageHub {
	return &MessageHub{
		clients: make(map[uint]map[*hubClient]struct{}),
		nodeID:  nodeID,
		logger:  logger.With().Str("component", "message_hub").Logger(),
	}
}

// Serve registers the connection and blocks until it closes or ctx ends.
func (h *MessageHub) Serve(ctx context.Context, userID uint, conn MessageConn) {
	client := &hubClient{
		userID: userID,
		conn:   conn,
		send:   make(chan dto.MessageResponse, hubSendBufferSize),
		closed: make(chan struct{}),
	}

	h.register(client)
	defer h.close(client)

	go h.writer(client)
	go func() {
		select {
		case <-ctx.Done():
			h.close(client)
		case <-client.closed:
		}
	}()

	// The stream is push only; reads just detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.logger.Debug().Err(err).Uint("user_id", userID).Msg("message stream read loop ended")
			return
		}
	}
}

// Deliver pushes a message to every local connection of its sender and recipient.
func (h *MessageHub) Deliver(message dto.MessageResponse) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, userID := range []uint{message.RecipientID, message.SenderID} {
		for client := range h.clients[userID] {
			select {
			case client.send <- message:
				delivered++
			default:
				h.logger.Warn().Uint("user_id", userID).Msg("dropping message for slow client")
			}
		}
		if message.RecipientID == message.SenderID {
			break
		}
	}
	return delivered
}

// Connected returns the number of live connections for a user.
func (h *MessageHub) Connected(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Subscribe delivers messages created on other nodes. The subscription drains when ctx ends.
func (h *MessageHub) Subscribe(ctx context.Context, conn *nats.Conn) error {
	if conn == nil {
		return nil
	}
	sub, err := conn.Subscribe(SubjectMessageCreated, func(msg *nats.Msg) {
		h.HandleEvent(msg.Data)
	})
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			h.logger.Warn().Err(err).Msg("failed to drain message subscription")
		}
	}()
	return nil
}

// HandleEvent decodes a published message event and delivers it unless it originated here.
func (h *MessageHub) HandleEvent(data []byte) {
	var event struct {
		Source  string              `json:"source"`
		Payload dto.MessageResponse `json:"payload"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Warn().Err(err).Msg("invalid message event")
		return
	}
	if event.Source == h.nodeID {
		return
	}
	h.Deliver(event.Payload)
}

func (h *MessageHub) register(client *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*hubClient]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
	observability.MessageConnections().Inc()
	h.logger.Debug().Uint("user_id", client.userID).Msg("message client connected")
}

func (h *MessageHub) close(client *hubClient) {
	client.once.Do(func() {
		close(client.closed)

		h.mu.Lock()
		if clients, ok := h.clients[client.userID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}
		}
		h.mu.Unlock()

		observability.MessageConnections().Dec()
		_ = client.conn.Close()
		h.logger.Debug().Uint("user_id", client.userID).Msg("message client disconnected")
	})
}

func (h *MessageHub) writer(client *hubClient) {
	defer h.close(client)

	ticker := time.NewTicker(hubPingInterval)
	defer ticker.Stop()

	for {
		select {
		case message := <-client.send:
			if err := client.conn.WriteJSON(message); err != nil {
				h.logger.Debug().Err(err).Msg("message write loop terminated")
				return
			}
		case <-ticker.C:
			if err := client.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				return
			}
		case <-client.closed:
			return
		}
	}
}
