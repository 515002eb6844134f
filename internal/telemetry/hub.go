// Package telemetry broadcasts live vitals snapshots to WebSocket clients.
package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pulseguard/internal/domain"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second

	// Slow clients are dropped rather than allowed to stall the broadcaster.
	sendBufferSize = 16
)

// Snapshot is the wire format pushed to clients after every analysis tick.
type Snapshot struct {
	TimeMs        int64   `json:"time_ms"`
	HR            float64 `json:"hr"`
	HRVRMSSD      float64 `json:"hrv_rmssd"`
	HRVSDNN       float64 `json:"hrv_sdnn"`
	Quality       float64 `json:"quality"`
	BeatCount     int     `json:"beat_count"`
	StrainIndex   float64 `json:"strain_index"`
	HRVDrop       float64 `json:"hrv_drop"`
	Irregularity  float64 `json:"irregularity"`
	BaselineReady bool    `json:"baseline_ready"`
	Status        string  `json:"status"`
}

// NewSnapshot assembles the wire snapshot from pipeline and strain output.
func NewSnapshot(timeMs int64, v domain.VitalsSnapshot, f domain.StrainFeatures, status domain.StrainStatus) Snapshot {
	return Snapshot{
		TimeMs:        timeMs,
		HR:            v.HR,
		HRVRMSSD:      v.HRVRMSSD,
		HRVSDNN:       v.HRVSDNN,
		Quality:       v.Quality,
		BeatCount:     v.BeatCount,
		StrainIndex:   f.StrainIndex,
		HRVDrop:       f.HRVDrop,
		Irregularity:  f.Irregularity,
		BaselineReady: f.BaselineReady,
		Status:        string(status),
	}
}

// Hub fans snapshots out to all connected WebSocket clients. Each client
// gets a buffered send channel and its own writer goroutine; a client that
// falls behind is disconnected.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	// onCountChange reports the connected client count, for metrics.
	onCountChange func(n int)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a Hub. The count callback may be nil.
func NewHub(logger *zap.Logger, onCountChange func(n int)) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:       make(map[*client]struct{}),
		onCountChange: onCountChange,
	}
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.notifyCount(n)

	h.logger.Info("websocket client connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Broadcast sends a snapshot to every connected client. Clients whose send
// buffer is full are dropped.
func (h *Hub) Broadcast(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("marshal snapshot", zap.Error(err))
		return
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.notifyCount(n)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.notifyCount(0)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) notifyCount(n int) {
	if h.onCountChange != nil {
		h.onCountChange(n)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.notifyCount(n)
}

// writeLoop pushes queued snapshots and periodic pings until the send
// channel closes.
func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readLoop drains client messages so pong handling works, and detects
// disconnects.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
