package sink

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/prepflow/growth-engine/internal/abtest"
)

// Hub broadcasts tracked events to connected dashboard websockets, feeding
// the live activity view. A slow or dead connection is dropped rather than
// allowed to block tracking.
type Hub struct {
	log      *logrus.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.New()
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Name() string { return "live" }

// Send implements the event sink by fanning the event out as JSON to every
// connected client.
func (h *Hub) Send(e abtest.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.conns {
		if err := c.WriteJSON(e); err != nil {
			h.log.WithError(err).Debug("dropping live feed connection")
			c.Close()
			delete(h.conns, c)
		}
	}
	return nil
}

// ServeHTTP upgrades the request and registers the connection with the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	// Drain client frames so pings are answered; unregister on close.
	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.conns, c)
				h.mu.Unlock()
				c.Close()
				return
			}
		}
	}()
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
