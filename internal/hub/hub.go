package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/okanyedibela/waba-relay/internal/domain"
	"github.com/okanyedibela/waba-relay/pkg/logger"
)

// writeTimeout bounds each per-connection push so one stalled client
// cannot block the fan-out loop.
const writeTimeout = 5 * time.Second

// Hub fans broadcast events out to every connected websocket client.
// Delivery is best-effort: a connection that fails a write is dropped and
// the loop continues. There is no replay; reconnecting clients re-fetch
// state through the query endpoints.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}

	pingInterval time.Duration

	// keepalive pinger state
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
	runMu    sync.Mutex
}

func New(pingInterval time.Duration) *Hub {
	return &Hub{
		conns:        make(map[*websocket.Conn]struct{}),
		pingInterval: pingInterval,
	}
}

// HandleWebSocket upgrades the request and keeps the connection registered
// until the client goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(h.serve).ServeHTTP(w, r)
}

func (h *Hub) serve(conn *websocket.Conn) {
	h.register(conn)
	defer h.unregister(conn)

	logger.Debugf("Websocket client connected (%d active)", h.ClientCount())

	// Inbound frames carry nothing we act on; the read loop only detects
	// disconnects.
	for {
		var discard string
		if err := websocket.Message.Receive(conn, &discard); err != nil {
			logger.Debugf("Websocket client disconnected: %v", err)
			return
		}
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Broadcast serializes event once and pushes it to every live connection.
// Connections that fail the write are dropped; failures never propagate to
// the caller.
func (h *Hub) Broadcast(event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Errorf("Failed to marshal broadcast event %q: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	var dead []*websocket.Conn
	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := websocket.Message.Send(conn, string(data)); err != nil {
			logger.Debugf("Dropping websocket client after failed write: %v", err)
			dead = append(dead, conn)
		}
	}

	if len(dead) > 0 {
		h.mu.Lock()
		for _, conn := range dead {
			delete(h.conns, conn)
		}
		h.mu.Unlock()

		for _, conn := range dead {
			_ = conn.Close()
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Start launches the keepalive pinger, which pushes a ping event on every
// tick so dead connections are pruned even when no traffic flows.
func (h *Hub) Start(ctx context.Context) error {
	h.runMu.Lock()

	if h.running {
		h.runMu.Unlock()
		logger.Warnf("Hub keepalive is already running")
		return nil
	}

	h.running = true
	h.stopChan = make(chan struct{})
	h.doneChan = make(chan struct{})
	h.runMu.Unlock()

	logger.Infof("Starting hub keepalive with interval: %v", h.pingInterval)

	go h.run(ctx)

	return nil
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.doneChan)

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.Broadcast(domain.Event{Type: domain.EventPing})

		case <-h.stopChan:
			return

		case <-ctx.Done():
			logger.Warnf("Hub keepalive context cancelled")
			return
		}
	}
}

func (h *Hub) Stop() error {
	h.runMu.Lock()

	if !h.running {
		h.runMu.Unlock()
		return nil
	}

	h.running = false
	stopChan := h.stopChan
	doneChan := h.doneChan
	h.runMu.Unlock()

	close(stopChan)
	<-doneChan

	logger.Infof("Hub keepalive stopped")
	return nil
}

func (h *Hub) IsRunning() bool {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	return h.running
}
