package surface

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kass/go-city-map/pkg/models"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// Frame is the union of the messages sent to map clients, for decoding
type Frame struct {
	Type    string                    `json:"type"`
	Initial bool                      `json:"initial"`
	Region  *models.Region            `json:"region"`
	Markers []models.MarkerDescriptor `json:"markers"`
}

type regionFrame struct {
	Type    string        `json:"type"`
	Initial bool          `json:"initial"`
	Region  models.Region `json:"region"`
}

type markersFrame struct {
	Type    string                    `json:"type"`
	Markers []models.MarkerDescriptor `json:"markers"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub streams region and marker frames to websocket map clients. Clients
// joining late get the latest region and markers first. A client that falls
// behind is disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu          sync.Mutex
	clients     map[*client]struct{}
	lastRegion  []byte
	lastMarkers []byte
	closed      bool
}

// NewHub creates a hub; serve it with an http.Server
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) ShowRegion(r models.Region, initial bool) {
	b, err := json.Marshal(regionFrame{Type: "region", Initial: initial, Region: r})
	if err != nil {
		h.logger.Error("error marshaling region frame", "error", err)
		return
	}
	h.broadcast(b, &h.lastRegion)
}

func (h *Hub) ShowMarkers(markers []models.MarkerDescriptor) {
	if markers == nil {
		markers = []models.MarkerDescriptor{}
	}
	// an empty list is sent as [] so clients clear their pins
	b, err := json.Marshal(markersFrame{Type: "markers", Markers: markers})
	if err != nil {
		h.logger.Error("error marshaling markers frame", "error", err)
		return
	}
	h.broadcast(b, &h.lastMarkers)
}

func (h *Hub) broadcast(b []byte, last *[]byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	*last = b
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.logger.Warn("dropping slow map client", "remote", c.conn.RemoteAddr().String())
			h.removeLocked(c)
		}
	}
}

// ServeHTTP upgrades the request and registers the map client
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	if h.lastRegion != nil {
		c.send <- h.lastRegion
	}
	if h.lastMarkers != nil {
		c.send <- h.lastMarkers
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("map client connected", "remote", conn.RemoteAddr().String())

	go h.writePump(c)
	go h.readPump(c)
}

// Clients returns the number of connected map clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.logger.Debug("map client write failed", "error", err)
			h.remove(c)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards client messages and notices disconnects
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}
