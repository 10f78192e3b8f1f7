package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/calvinwijaya/blackjack/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4 * 1024
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origins are enforced by the CORS layer
	},
}

// Message types sent to watchers
const (
	MsgWelcome  = "welcome"
	MsgSnapshot = "snapshot"
)

// Message represents a WebSocket message
type Message struct {
	Type    string         `json:"type"`
	TableID string         `json:"tableId,omitempty"`
	Data    *game.Snapshot `json:"data,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	tableID string
	hub     *Hub
}

// Hub tracks the clients watching each table and pushes snapshots to them
type Hub struct {
	tables map[string]map[*Client]bool
	mu     sync.RWMutex
	closed bool

	clock  quartz.Clock
	logger *log.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *log.Logger, clock quartz.Clock) *Hub {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Hub{
		tables: make(map[string]map[*Client]bool),
		clock:  clock,
		logger: logger,
	}
}

// Run blocks until ctx is done and then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for tableID, clients := range h.tables {
		for client := range clients {
			close(client.send)
		}
		delete(h.tables, tableID)
	}
	return nil
}

func (h *Hub) add(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if _, exists := h.tables[c.tableID]; !exists {
		h.tables[c.tableID] = make(map[*Client]bool)
	}
	h.tables[c.tableID][c] = true
	return true
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.tables[c.tableID]
	if !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)

	// Clean up empty tables
	if len(clients) == 0 {
		delete(h.tables, c.tableID)
	}
}

// Watchers returns the number of clients watching a table
func (h *Hub) Watchers(tableID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tables[tableID])
}

// BroadcastSnapshot sends a snapshot to all clients watching its table
func (h *Hub) BroadcastSnapshot(snap game.Snapshot) {
	data, err := json.Marshal(Message{Type: MsgSnapshot, TableID: snap.ID, Data: &snap})
	if err != nil {
		h.logger.Error("Error marshaling snapshot", "table", snap.ID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.tables[snap.ID] {
		select {
		case client.send <- data:
		default:
			// Slow client; it will catch up on the next snapshot
			h.logger.Warn("Dropping snapshot for slow client", "table", snap.ID)
		}
	}
}

// Serve upgrades the request and starts streaming snapshots of the table.
// snap is sent immediately as part of the welcome message.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, snap game.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		tableID: snap.ID,
		hub:     h,
	}

	welcome, err := json.Marshal(Message{Type: MsgWelcome, TableID: snap.ID, Data: &snap})
	if err != nil {
		conn.Close()
		return
	}
	client.send <- welcome

	if !h.add(client) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	h.logger.Debug("Watcher connected", "table", snap.ID, "remote", r.RemoteAddr)

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so control frames are processed, and
// unregisters the client when the connection goes away.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket error", "table", c.tableID, "error", err)
			}
			return
		}
		// Watchers are read-only; actions go through the HTTP API
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := c.hub.clock.NewTicker(pingPeriod, "hub", "ping")
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
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
