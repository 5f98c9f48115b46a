package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans job status updates out to the websocket connections watching
// each generation job.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*websocket.Conn]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*websocket.Conn]*client)}
}

// Register attaches a connection to a job id and starts its pumps.
func (h *Hub) Register(jobID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[jobID]; !ok {
		h.clients[jobID] = make(map[*websocket.Conn]*client)
	}
	c := &client{conn: conn, send: make(chan []byte, 256)}
	h.clients[jobID][conn] = c

	go h.writePump(c)
}

func (h *Hub) Unregister(jobID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[jobID]; ok {
		if c, ok := clients[conn]; ok {
			close(c.send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.clients, jobID)
		}
	}
}

// BroadcastJSON marshals v and sends it to every watcher of the job.
// Slow consumers are skipped rather than blocked on.
func (h *Hub) BroadcastJSON(jobID string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Println("ws: marshal broadcast failed:", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients[jobID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer func() {
		c.conn.WriteMessage(websocket.CloseMessage, []byte{})
		c.conn.Close()
	}()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
