package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clickforge/internal/engine"
	"clickforge/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API binds to localhost by default; origin checks add nothing.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans engine events out to WebSocket subscribers. It implements
// engine.Listener: notifications are queued onto a buffered channel and
// the hub goroutine does the marshalling and writing, so the engine
// worker never waits on a slow subscriber. When the queue is full the
// event is dropped and counted; the engine is authoritative, the push
// stream is best effort.
type Hub struct {
	log *zap.SugaredLogger

	clients   map[*wsClient]bool
	clientsMu sync.Mutex

	broadcast  chan protocol.Message
	register   chan *wsClient
	unregister chan *wsClient
	shutdown   chan struct{}
	closeOnce  sync.Once

	clicks  atomic.Int64
	dropped atomic.Int64
}

// wsClient is one connected subscriber.
type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	ip   string
}

// NewHub returns a hub; call Run on its own goroutine.
func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan protocol.Message, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		shutdown:   make(chan struct{}),
	}
}

// Run services registrations and broadcasts until Close.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.clientsMu.Unlock()
			h.log.Infow("ws: client connected", "ip", client.ip, "total", total)

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.clientsMu.Unlock()
			h.log.Infow("ws: client disconnected", "ip", client.ip, "total", total)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)

		case <-h.shutdown:
			h.clientsMu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.clientsMu.Unlock()
			return
		}
	}
}

// Close stops the hub goroutine and disconnects all subscribers.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.shutdown) })
}

// Dropped returns how many events were discarded because the queue or a
// subscriber buffer was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// OnClickPerformed implements engine.Listener.
func (h *Hub) OnClickPerformed() {
	h.publish(protocol.Message{
		Type:    protocol.TypeClick,
		Payload: protocol.ClickPayload{SessionClicks: h.clicks.Add(1)},
	})
}

// OnStateChanged implements engine.Listener.
func (h *Hub) OnStateChanged(state engine.State) {
	h.publish(protocol.Message{
		Type:    protocol.TypeState,
		Payload: protocol.StatePayload{State: string(state)},
	})
}

// OnProgress implements engine.Listener.
func (h *Hub) OnProgress(currentStep, totalSteps int) {
	h.publish(protocol.Message{
		Type:    protocol.TypeProgress,
		Payload: protocol.ProgressPayload{CurrentStep: currentStep, TotalSteps: totalSteps},
	})
}

// PublishRate pushes fresh throughput figures to subscribers.
func (h *Hub) PublishRate(p protocol.RatePayload) {
	h.publish(protocol.Message{Type: protocol.TypeRate, Payload: p})
}

// publish queues a message without ever blocking the caller.
func (h *Hub) publish(msg protocol.Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hub) broadcastMessage(msg protocol.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Warnw("ws: marshal failed", "type", msg.Type, "err", err)
		return
	}

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Subscriber cannot keep up; cut it loose rather than stall.
			close(client.send)
			delete(h.clients, client)
			h.dropped.Add(1)
		}
	}
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("ws: upgrade failed", "err", err)
		return
	}

	client := &wsClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		ip:   r.RemoteAddr,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound frames but keeps the connection's read side
// alive for pings and close handshakes. The push stream is one way.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debugw("ws: read error", "ip", c.ip, "err", err)
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
