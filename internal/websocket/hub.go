package chatws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	websocket "github.com/gofiber/contrib/websocket"
)

// Hub tracks the live websocket connections per user. A user may hold
// several connections at once (multiple tabs); pushes go to all of them.
type Hub struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	push       chan push
}

type push struct {
	userID  int64
	payload []byte
}

// wsConn is the slice of *websocket.Conn the hub needs.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Client struct {
	hub    *Hub
	conn   wsConn
	userID int64
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		push:       make(chan push, 64),
	}
}

func NewClient(hub *Hub, conn wsConn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
		done:   make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				client.shutdown()
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case p := <-h.push:
			h.sendToUser(p.userID, p.payload)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// PushNotification fans a notification out to every live connection of
// the user. Users with no connection just miss the push; the
// notification is already persisted.
func (h *Hub) PushNotification(userID int64, notification *models.Notification) {
	payload, err := json.Marshal(envelope{
		Type:         "notification",
		Notification: notification,
	})
	if err != nil {
		log.Printf("chat hub encode notification: %v", err)
		return
	}
	select {
	case h.push <- push{userID: userID, payload: payload}:
	default:
		log.Printf("chat hub push queue full, dropping notification for user %d", userID)
	}
}

func (h *Hub) sendToUser(userID int64, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			client.shutdown()
		}
	}
	if len(set) == 0 {
		delete(h.clients, userID)
	}
}

// shutdown signals the client's pumps to stop. The send channel is never
// closed; relay goroutines may still be calling Send concurrently, and a
// send on a closed channel would panic. Everything drains through done.
func (c *Client) shutdown() {
	c.once.Do(func() { close(c.done) })
}

// Send queues a payload on this connection, dropping it if the writer
// has fallen behind or the client is shutting down.
func (c *Client) Send(payload []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}
