// Package realtime pushes slide content to presentation displays over
// WebSockets, optionally fanned out between instances through Redis.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lyricdeck/internal/logging"
	"lyricdeck/internal/slide"
)

// ErrHubClosed is returned when broadcasting to a hub that has stopped.
var ErrHubClosed = errors.New("hub closed")

// Hub owns the connected displays and sends every broadcast to all of them.
// The last payload is replayed to displays as they connect.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	last   []byte
	logger *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Zerolog().Debug().Str("client_id", client.id).Int("clients", len(h.clients)).Msg("display connected")
			if h.last != nil {
				select {
				case client.send <- h.last:
				default:
				}
			}

		case client := <-h.unregister:
			if h.clients[client] {
				h.remove(client)
			}

		case message := <-h.broadcast:
			h.last = message
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.logger.Zerolog().Warn().Str("client_id", client.id).Msg("dropping slow display")
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.logger.Zerolog().Debug().Str("client_id", client.id).Int("clients", len(h.clients)).Msg("display disconnected")
}

// Broadcast queues payload for every connected display.
func (h *Hub) Broadcast(ctx context.Context, payload []byte) error {
	select {
	case h.broadcast <- payload:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish sends content to the displays connected to this hub.
func (h *Hub) Publish(ctx context.Context, content slide.Content) error {
	payload, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode slide: %w", err)
	}
	return h.Broadcast(ctx, payload)
}
