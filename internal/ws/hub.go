// Package ws fans feed events out to connected websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sujalbistaa/drumfeed/internal/logging"
)

// Message is the envelope every client receives.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub tracks connected clients and broadcasts messages to all of them.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	log        logging.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        log,
		clients:    make(map[*Client]struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.log.Debug(ctx, "ws client connected", "user_id", c.userID)

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer; drop it rather than stall everyone else.
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.Debug(context.Background(), "ws client disconnected", "user_id", c.userID)
	}
}

// Publish broadcasts an event. It never blocks once the hub has stopped.
func (h *Hub) Publish(eventType string, data any) {
	b, err := json.Marshal(Message{Type: eventType, Data: data})
	if err != nil {
		h.log.Error(context.Background(), "marshal ws message", "type", eventType, "err", err)
		return
	}
	select {
	case h.broadcast <- b:
	case <-h.done:
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
