package handlers

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/climatrix/climatrix/internal/logging"
	"github.com/climatrix/climatrix/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// StreamMessage is one frame of the alert stream.
type StreamMessage struct {
	Type      string    `json:"type"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// AlertHub fans alert events out to websocket clients. Each client has its
// own writer goroutine; a client whose buffer is full is dropped.
type AlertHub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*streamClient]bool
}

// NewAlertHub accepts upgrades from the given origins. Requests without an
// Origin header are accepted.
func NewAlertHub(allowedOrigins []string) *AlertHub {
	return &AlertHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		clients: make(map[*streamClient]bool),
	}
}

func (h *AlertHub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends event with payload to every connected client.
func (h *AlertHub) Broadcast(event string, payload any) {
	if h == nil {
		return
	}

	message, err := json.Marshal(StreamMessage{Type: event, Data: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		logging.Error().Err(err).Str("event", event).Msg("Failed to encode stream message")
		return
	}

	var slow []*streamClient

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		logging.Warn().Str("remote", client.conn.RemoteAddr().String()).Msg("Dropping slow alert stream client")
		h.unregister(client)
	}
}

// Close disconnects every client.
func (h *AlertHub) Close() {
	if h == nil {
		return
	}
	h.mu.RLock()
	clients := make([]*streamClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.unregister(client)
	}
}

func (h *AlertHub) register(client *streamClient) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	metrics.WebsocketClients.Inc()
}

func (h *AlertHub) unregister(client *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	metrics.WebsocketClients.Dec()
}

// Serve upgrades the request and streams alert events until the client
// goes away.
func (h *AlertHub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &streamClient{conn: conn, send: make(chan []byte, sendBuffer)}

	welcome, _ := json.Marshal(StreamMessage{
		Type:      "connected",
		Message:   "Subscribed to environmental alerts",
		Timestamp: time.Now().UTC(),
	})
	client.send <- welcome

	h.register(client)
	go client.writePump()
	client.readPump()

	h.unregister(client)
	logging.Ctx(c.Request.Context()).Debug().Msg("Alert stream connection closed")
}

// readPump only services control frames; clients do not send data.
func (c *streamClient) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Msg("Alert stream read error")
			}
			return
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
