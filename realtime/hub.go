package realtime

import (
	"log/slog"
	"sync"

	"github.com/savantarmorer/sb1-kxlgah-sub002/notify"
)

// Hub routes published payloads to websocket clients joined to a channel
// and to in-process subscribers. It implements notify.Transport, so the
// orchestrator's fanout never knows whether a recipient is a socket or a
// local handler.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu          sync.RWMutex
	rooms       map[string]map[*Client]bool
	subscribers map[string]map[int]notify.Handler
	nextSubID   int

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		rooms:       make(map[string]map[*Client]bool),
		subscribers: make(map[string]map[int]notify.Handler),
		logger:      logger,
	}
}

// Run owns client membership. It must be started exactly once, before the
// first client connects.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Channel]; !ok {
				h.rooms[client.Channel] = make(map[*Client]bool)
			}
			h.rooms[client.Channel][client] = true
			h.logger.Debug("websocket client joined",
				slog.String("channel", client.Channel),
				slog.Int("clients", len(h.rooms[client.Channel])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Channel]; ok {
				if _, joined := clients[client]; joined {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Channel)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish delivers the payload to every client in the channel and every
// local subscriber. A client whose send buffer is full is skipped rather
// than blocking the rest of the room.
func (h *Hub) Publish(channel string, payload []byte) error {
	h.mu.RLock()
	clients := h.rooms[channel]
	for client := range clients {
		client.enqueue(payload)
	}
	handlers := make([]notify.Handler, 0, len(h.subscribers[channel]))
	for _, handler := range h.subscribers[channel] {
		handlers = append(handlers, handler)
	}
	h.mu.RUnlock()

	for _, handler := range handlers {
		handler(payload)
	}
	return nil
}

// Subscribe registers an in-process handler for the channel and returns
// the function that removes it.
func (h *Hub) Subscribe(channel string, handler notify.Handler) func() {
	h.mu.Lock()
	if _, ok := h.subscribers[channel]; !ok {
		h.subscribers[channel] = make(map[int]notify.Handler)
	}
	id := h.nextSubID
	h.nextSubID++
	h.subscribers[channel][id] = handler
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		if subs, ok := h.subscribers[channel]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(h.subscribers, channel)
			}
		}
		h.mu.Unlock()
	}
}
