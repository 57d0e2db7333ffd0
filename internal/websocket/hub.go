// Package websocket streams delivery outcomes to connected owner
// dashboards.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeDelivery    MessageType = "delivery"
	MessageTypeError       MessageType = "error"
)

// TopicAll receives every delivery regardless of status
const TopicAll = "all"

// StatusCaptured marks a message received by the development mail sink
const StatusCaptured = "captured"

// knownTopics are the statuses a client may subscribe to
var knownTopics = map[string]bool{
	TopicAll:       true,
	"sent":         true,
	"failed":       true,
	"trapped":      true,
	"rejected":     true,
	StatusCaptured: true,
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type     MessageType      `json:"type"`
	Status   string           `json:"status,omitempty"`
	Delivery *DeliveryPayload `json:"delivery,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// DeliveryPayload describes one processed submission. It carries no
// submitter address or message body.
type DeliveryPayload struct {
	ID         uint   `json:"id,omitempty"`
	Provider   string `json:"provider,omitempty"`
	ProviderID string `json:"provider_id,omitempty"`
	SenderName string `json:"sender_name,omitempty"`
	Subject    string `json:"subject,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// Hub maintains the set of active clients and fans deliveries out to
// the clients subscribed to their status.
type Hub struct {
	clients map[*Client]bool

	// status -> set of clients
	subscriptions map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan *subscriptionRequest
	unsubscribe chan *subscriptionRequest
	broadcast   chan *broadcastMessage

	// closed when Run returns
	done chan struct{}

	mu     sync.RWMutex
	logger *slog.Logger
}

type subscriptionRequest struct {
	client *Client
	topic  string
}

type broadcastMessage struct {
	status  string
	message []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan *subscriptionRequest),
		unsubscribe:   make(chan *subscriptionRequest),
		broadcast:     make(chan *broadcastMessage, 256),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Run processes hub events until ctx is cancelled, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for client := range h.clients {
			delete(h.clients, client)
			close(client.send)
		}
		h.subscriptions = make(map[string]map[*Client]bool)
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.debug("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				for topic, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.subscriptions, topic)
					}
				}
			}
			h.mu.Unlock()
			h.debug("client unregistered")

		case req := <-h.subscribe:
			h.mu.Lock()
			if h.clients[req.client] {
				if h.subscriptions[req.topic] == nil {
					h.subscriptions[req.topic] = make(map[*Client]bool)
				}
				h.subscriptions[req.topic][req.client] = true
			}
			h.mu.Unlock()
			h.debug("client subscribed", slog.String("topic", req.topic))

		case req := <-h.unsubscribe:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.topic]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					delete(h.subscriptions, req.topic)
				}
			}
			h.mu.Unlock()
			h.debug("client unsubscribed", slog.String("topic", req.topic))

		case msg := <-h.broadcast:
			h.mu.RLock()
			sent := make(map[*Client]bool)
			for _, topic := range []string{msg.status, TopicAll} {
				for client := range h.subscriptions[topic] {
					if sent[client] {
						continue
					}
					sent[client] = true
					select {
					case client.send <- msg.message:
					default:
						// Client buffer full, skip
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe subscribes a client to a delivery status
func (h *Hub) Subscribe(client *Client, topic string) {
	select {
	case h.subscribe <- &subscriptionRequest{client: client, topic: topic}:
	case <-h.done:
	}
}

// Unsubscribe unsubscribes a client from a delivery status
func (h *Hub) Unsubscribe(client *Client, topic string) {
	select {
	case h.unsubscribe <- &subscriptionRequest{client: client, topic: topic}:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastDelivery queues a delivery notification for subscribers of
// status. It never blocks the caller: when the queue is full the event is
// dropped.
func (h *Hub) BroadcastDelivery(status string, payload *DeliveryPayload) {
	data, err := json.Marshal(WSMessage{
		Type:     MessageTypeDelivery,
		Status:   status,
		Delivery: payload,
	})
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{status: status, message: data}:
	default:
		if h.logger != nil {
			h.logger.Warn("delivery feed queue full, dropping event", slog.String("status", status))
		}
	}
}

func (h *Hub) debug(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}
