package websocket

import (
	"context"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Hub tracks the open chat connections so they can be notified and closed
// together on shutdown.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound messages for every client.
	broadcast chan []byte

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed once Run returns.
	done chan struct{}

	mu sync.RWMutex
}

type Client struct {
	hub *Hub
	// The websocket connection.
	conn *websocket.Conn
	// Buffered channel of outbound messages.
	send chan []byte
	// Closed when the hub drops the client.
	quit     chan struct{}
	quitOnce sync.Once
	// Closed when the write pump has returned.
	written chan struct{}

	sessionID string
	language  string
	// finished is set once the current conversation reached a terminal state.
	finished bool
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then drops
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.stop()
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					client.stop()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.stop()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Broadcast queues message for every connected client. It returns false once
// the hub has stopped.
func (h *Hub) Broadcast(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	case <-h.done:
		return false
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) newClient(conn *websocket.Conn, sessionID, language string) *Client {
	return &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		quit:      make(chan struct{}),
		written:   make(chan struct{}),
		sessionID: sessionID,
		language:  language,
	}
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (c *Client) stop() {
	c.quitOnce.Do(func() { close(c.quit) })
}

// push queues a message for the write pump. Messages for a dropped client are
// discarded.
func (c *Client) push(message []byte) bool {
	select {
	case <-c.quit:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	case <-c.quit:
		return false
	}
}

func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
		close(c.written)
	}()
	for {
		select {
		case message := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.quit:
			// Flush what is already queued, then say goodbye.
			for n := len(c.send); n > 0; n-- {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
