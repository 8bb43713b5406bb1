package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/chepyr/task-dashboard/internal/store"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events a client may fall behind before it is
	// dropped.
	sendBuffer = 64
)

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WSHub fans store events out to every open dashboard tab. Each client has
// its own queue drained by a writer goroutine, so a slow tab never holds up
// a save.
type WSHub struct {
	clients        map[uuid.UUID]*wsClient
	mutex          sync.Mutex
	allowedOrigins []string
}

// NewWSHub accepts any origin when allowedOrigins is empty.
func NewWSHub(allowedOrigins []string) *WSHub {
	return &WSHub{
		clients:        make(map[uuid.UUID]*wsClient),
		allowedOrigins: allowedOrigins,
	}
}

// Broadcast is registered with Store.OnChange. It only enqueues; a client
// whose queue is full is disconnected.
func (h *WSHub) Broadcast(ev store.Event) {
	message, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to marshal task event: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- message:
		default:
			log.Warnf("WebSocket client %s is too slow, dropping it", id)
			delete(h.clients, id)
			close(c.send)
		}
	}
}

func (h *WSHub) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *WSHub) add(c *wsClient) uuid.UUID {
	id := uuid.New()
	h.mutex.Lock()
	h.clients[id] = c
	h.mutex.Unlock()
	return id
}

// remove closes the client's queue; its writer then closes the connection.
func (h *WSHub) remove(id uuid.UUID) {
	h.mutex.Lock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.send)
	}
	h.mutex.Unlock()
}

func (h *WSHub) writePump(id uuid.UUID, c *wsClient) {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("Failed to send WebSocket message to %s: %v", id, err)
			h.remove(id)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *WSHub) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range h.allowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.RateLimiter != nil && !h.RateLimiter.Allow(clientIP(r)) {
		sendError(w, "Too many WebSocket connection attempts", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: h.WSHub.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	id := h.WSHub.add(c)
	go h.WSHub.writePump(id, c)
	log.Debugf("WebSocket client %s connected", id)

	// clients only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Debugf("WebSocket client %s gone: %v", id, err)
			h.WSHub.remove(id)
			return
		}
	}
}
