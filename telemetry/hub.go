// Package telemetry streams live simulation state to debug viewers over
// WebSocket. It replaces on-screen debug overlays: a viewer renders the
// world, hitboxes and planned enemy paths from the snapshot stream.
package telemetry

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Lambaga/Alchemist-SUI-sub001/sim"
)

// StreamRate is how many snapshots per second each viewer receives.
const StreamRate = 30

// Controller is the part of the simulation a viewer may drive.
type Controller interface {
	Snapshot() sim.Snapshot
	SetInput(x, y float64)
	Cast() bool
}

// Hub tracks connected viewers and fans snapshot frames out to them.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	source     Controller
	hello      HelloMsg
	log        *logrus.Entry
}

// NewHub creates a Hub streaming from the given simulation.
func NewHub(source Controller, hello HelloMsg, log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.New()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		stop:       make(chan struct{}),
		source:     source,
		hello:      hello,
		log:        log.WithField("component", "telemetry"),
	}
}

// Run processes viewer registration and pushes snapshot frames until
// Stop is called.
func (h *Hub) Run() {
	ticker := time.NewTicker(time.Second / StreamRate)
	defer ticker.Stop()

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			c.SendJSON(Envelope{T: MsgHello, Data: h.hello})
			h.log.WithField("viewers", h.ClientCount()).Debug("viewer connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case <-ticker.C:
			h.broadcastSnapshot()

		case <-h.stop:
			return
		}
	}
}

// Stop terminates the hub loop.
func (h *Hub) Stop() {
	close(h.stop)
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastSnapshot() {
	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	if n == 0 {
		return
	}

	data, err := msgpack.Marshal(h.source.Snapshot())
	if err != nil {
		h.log.WithError(err).Warn("snapshot encode failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.SendBinary(data)
	}
}
