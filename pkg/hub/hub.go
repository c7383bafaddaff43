package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-mirror/internal/log"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	name   string
	logger *slog.Logger

	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.RWMutex // guards clients for ClientCount and latest
	latest  *Message
	replay  bool
	running atomic.Bool

	onClients func(delta int)
}

// Option configures a Hub.
type Option func(*Hub)

// WithReplay makes the hub send the most recent message to every client as
// it connects, so late joiners start from current state.
func WithReplay() Option {
	return func(h *Hub) { h.replay = true }
}

// WithLogger sets the logger. The hub name is attached as "hub".
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithClientObserver is called with +1 and -1 as clients come and go.
func WithClientObserver(fn func(delta int)) Option {
	return func(h *Hub) { h.onClients = fn }
}

// New creates a Hub. Call Run before accepting clients.
func New(name string, opts ...Option) *Hub {
	h := &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = log.Component("hub")
	}
	h.logger = h.logger.With("hub", name)
	return h
}

// Run is the hub's main loop. It returns when ctx is cancelled, after
// closing every client's send channel. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.mu.Lock()
		for c := range h.clients {
			h.removeLocked(c)
		}
		h.mu.Unlock()
		h.running.Store(false)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			count := len(h.clients)
			latest := h.latest
			h.mu.Unlock()
			h.notify(1)
			if latest != nil {
				c.send <- *latest // fresh channel, cannot block
			}
			h.logger.Debug("client connected", "clients", count)

		case c := <-h.unregister:
			h.mu.Lock()
			removed := h.removeLocked(c)
			count := len(h.clients)
			h.mu.Unlock()
			if removed {
				h.logger.Debug("client disconnected", "clients", count)
			}

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.removeLocked(c)
					h.logger.Warn("dropped slow client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// removeLocked drops c and closes its send channel. Caller holds mu.
func (h *Hub) removeLocked(c *Client) bool {
	if !h.clients[c] {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	h.notify(-1)
	return true
}

func (h *Hub) notify(delta int) {
	if h.onClients != nil {
		h.onClients(delta)
	}
}

// Broadcast queues msg for every client. The message is dropped when the
// queue is full. With replay enabled a client connecting while msg is
// queued may receive it twice.
func (h *Hub) Broadcast(msg Message) {
	if h.replay {
		h.mu.Lock()
		h.latest = &msg
		h.mu.Unlock()
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, dropping message")
	}
}

// BroadcastJSON encodes v and broadcasts it.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(NewJSONMessage(data))
	return nil
}

// BroadcastBinary broadcasts binary data such as a camera frame.
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(NewBinaryMessage(data))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsRunning reports whether Run is active.
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}

// Name returns the hub's name.
func (h *Hub) Name() string { return h.name }
