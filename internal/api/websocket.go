package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"remotemouse/internal/control"
	"remotemouse/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	maxMessage = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Admission already vetted the peer address
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub handles websocket control connections and broadcasts session events
type Hub struct {
	surface    *control.Surface
	logger     zerolog.Logger
	clients    map[*wsClient]bool
	clientsMu  sync.Mutex
	broadcast  chan protocol.Message
	unregister chan *wsClient
	shutdown   chan struct{}
	closeOnce  sync.Once
}

// wsClient represents one connected control device
type wsClient struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	origin string
}

func newHub(surface *control.Surface, logger zerolog.Logger) *Hub {
	return &Hub{
		surface:    surface,
		logger:     logger.With().Str("component", "ws").Logger(),
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan protocol.Message, 16),
		unregister: make(chan *wsClient),
		shutdown:   make(chan struct{}),
	}
}

func (h *Hub) start() {
	for {
		select {
		case client := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info().Str("origin", client.origin).Int("clients", len(h.clients)).Msg("Client unregistered")
			}
			h.clientsMu.Unlock()

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-h.shutdown:
			h.clientsMu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMu.Unlock()
			return
		}
	}
}

func (h *Hub) addClient(client *wsClient) bool {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	select {
	case <-h.shutdown:
		return false
	default:
	}
	h.clients[client] = true
	h.logger.Info().Str("origin", client.origin).Int("clients", len(h.clients)).Msg("Client registered")
	return true
}

func (h *Hub) close() {
	h.closeOnce.Do(func() { close(h.shutdown) })
}

// ClientCount returns the number of connected websocket clients
func (h *Hub) ClientCount() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcastMessage(message protocol.Message) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal broadcast message")
		return
	}

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- jsonMsg:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// Broadcast sends an event to every connected client. It never blocks the caller.
func (h *Hub) Broadcast(t protocol.MessageType, payload any) {
	msg, err := protocol.NewMessage(t, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("type", string(t)).Msg("Failed to encode broadcast")
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.shutdown:
	default:
		h.logger.Warn().Str("type", string(t)).Msg("Broadcast queue full, dropping event")
	}
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to upgrade connection")
		return
	}

	client := &wsClient{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		origin: originOf(r),
	}

	// Registered before the pumps start so replies to the first message are not lost
	if !h.addClient(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump applies control messages in arrival order
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.shutdown:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Str("origin", c.origin).Msg("Read error")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handleMessage(data)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) handleMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(protocol.TypeError, protocol.ErrorPayload{Status: "error", Message: "invalid message format"})
		return
	}

	if err := c.hub.surface.Dispatch(c.origin, msg); err != nil {
		_, payload := errorPayload(err)
		c.reply(protocol.TypeError, payload)
	}
}

// reply queues a message for this client only. Delivery is best effort.
func (c *wsClient) reply(t protocol.MessageType, payload any) {
	msg, err := protocol.NewMessage(t, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	c.hub.clientsMu.Lock()
	defer c.hub.clientsMu.Unlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
