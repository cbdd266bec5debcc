// Package hub coordinates client registration, envelope routing, broadcast,
// and connection cleanup through the Hub event loop.
package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub owns one connection set: every client of one relay endpoint, its room
// table, and the dispatch table. All registry and room mutation happens on
// the Run goroutine so each broadcast observes a consistent snapshot.
type Hub struct {
	name     string
	registry *Registry
	rooms    *RoomRegistry
	routes   map[string]handlerFunc

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a hub ready to manage connections. The name labels log
// lines and metrics; each relay endpoint gets its own instance.
func NewHub(name string) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		name:       name,
		registry:   NewRegistry(),
		rooms:      NewRoomRegistry(),
		routes:     routes(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundMessage),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Name returns the hub's label.
func (h *Hub) Name() string {
	return h.name
}

// GetRegisterChan returns the channel used to hand new clients to the hub.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// GetUnregisterChan returns the channel used to retire clients.
func (h *Hub) GetUnregisterChan() chan<- *Client {
	return h.unregister
}

// Done is closed once shutdown begins; registrations sent after that point
// would never be consumed, so senders must select against it.
func (h *Hub) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Run drives the hub's event loop: registration, unregistration, and
// inbound message routing. Call it in its own goroutine; it returns only
// after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.closeAllClients()
			return

		case c := <-h.register:
			if c == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}
			h.registry.Register(c)
			connectedClients.WithLabelValues(h.name).Inc()
			log.Printf("[%s] Client %s registered from %s. Total clients: %d",
				h.name, c.id, c.addr, h.registry.Len())

			// Unit tests exercise the loop with transport-less clients.
			if c.conn != nil {
				h.wg.Add(2)
				go func() {
					defer h.wg.Done()
					c.writePump()
				}()
				go func() {
					defer h.wg.Done()
					c.readPump()
				}()
			}

		case c := <-h.unregister:
			h.disconnect(c)

		case msg := <-h.inbound:
			h.route(msg.sender, msg.payload)
		}
	}
}

// disconnect retires a connection: it leaves its room (announcing the
// departure to anyone still there), then drops out of the registry.
// Safe to call repeatedly for the same client.
func (h *Hub) disconnect(c *Client) {
	h.leaveRoom(c)
	if h.registry.Unregister(c) {
		connectedClients.WithLabelValues(h.name).Dec()
		log.Printf("[%s] Client %s unregistered from %s. Total clients: %d",
			h.name, c.id, c.addr, h.registry.Len())
	}
}

// leaveRoom removes c from its current room and, when members remain,
// broadcasts the departure notice with the updated presence list. An empty
// room is deleted with no notice.
func (h *Hub) leaveRoom(c *Client) {
	roomID, remaining, notify := h.rooms.Leave(c)
	if roomID == "" {
		return
	}
	openRooms.WithLabelValues(h.name).Set(float64(h.rooms.Count()))

	if !notify {
		return
	}

	payload, err := json.Marshal(systemMessage{
		Type:    TypeSystem,
		Text:    c.name + " left",
		Players: h.rooms.MembersOf(roomID),
	})
	if err != nil {
		log.Printf("Error encoding departure notice: %v", err)
		return
	}
	h.broadcast(remaining, payload, nil)
}

// closeAllClients tears down every live connection during shutdown. Each
// client is unregistered first so its send channel closes and releases the
// write pump; closing the transport then unblocks the read pump.
func (h *Hub) closeAllClients() {
	log.Printf("[%s] Shutting down all client connections...", h.name)

	clients := h.registry.Snapshot()
	for _, c := range clients {
		if h.registry.Unregister(c) {
			connectedClients.WithLabelValues(h.name).Dec()
		}
		if c.conn != nil {
			if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
				log.Printf("Error closing client connection from %s: %v", c.addr, err)
			}
		}
	}

	log.Printf("[%s] Closed %d client connections", h.name, len(clients))
}

// Shutdown stops the event loop and waits for the pump goroutines to drain,
// or gives up after the timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Printf("[%s] Initiating hub shutdown...", h.name)

	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		log.Printf("[%s] Hub shutdown completed successfully", h.name)
		return nil
	case <-time.After(timeout):
		log.Printf("[%s] Hub shutdown timeout reached, some goroutines may still be running", h.name)
		return context.DeadlineExceeded
	}
}
