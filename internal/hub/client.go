// Package hub manages individual WebSocket clients: identity assignment,
// read/write pumps, rate limiting, and lifecycle control per connection.
package hub

import (
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pongWait      = 60 * time.Second
	pingInterval  = 54 * time.Second
	writeWait     = 10 * time.Second
	defaultBuffer = 256
)

// ClientOptions carries the per-connection limits the transport layer reads
// from its configuration at accept time.
type ClientOptions struct {
	MaxMessageSize int64
	SendBuffer     int
	RateBurst      int
	RateRefill     time.Duration
}

// Client represents one live duplex connection to a participant. The
// identity is assigned here and never chosen by the participant; display
// name, avatar, and room are set only by an explicit join.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	id     string
	addr   string
	name   string
	avatar string
	room   string
	closed bool

	maxMessageSize int64
	limiter        *tokenBucket
	rateBurst      int
	rateRefill     time.Duration
}

// NewClient wraps a WebSocket connection for the given hub. A nil conn is
// allowed so registries can be exercised without a live transport.
func NewClient(conn *websocket.Conn, h *Hub, addr string, opts ClientOptions) *Client {
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 65536
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultBuffer
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 30
	}
	if opts.RateRefill <= 0 {
		opts.RateRefill = time.Second
	}

	if conn != nil {
		conn.SetReadLimit(opts.MaxMessageSize)
	}

	return &Client{
		conn:           conn,
		send:           make(chan []byte, opts.SendBuffer),
		hub:            h,
		id:             uuid.NewString(),
		addr:           addr,
		maxMessageSize: opts.MaxMessageSize,
		limiter:        newTokenBucket(opts.RateBurst, opts.RateRefill),
		rateBurst:      opts.RateBurst,
		rateRefill:     opts.RateRefill,
	}
}

// ID returns the registry-assigned connection identity.
func (c *Client) ID() string {
	return c.id
}

// GetSendChan exposes the outbound queue, read-only, for tests and the
// write pump.
func (c *Client) GetSendChan() <-chan []byte {
	return c.send
}

func (c *Client) configureRead() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Error setting read deadline for %s: %v", c.addr, err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Error setting read deadline in pong handler for %s: %v", c.addr, err)
		}
		return nil
	})
}

// logReadError classifies the read failure for diagnostics; every read error
// terminates the pump.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		log.Printf("Message from %s exceeded maximum size of %d bytes", c.addr, c.maxMessageSize)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		log.Printf("Client %s disconnected: %v", c.addr, err)
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		log.Printf("Client %s connection closed: %v", c.addr, err)
	default:
		log.Printf("WebSocket read error from %s: %v", c.addr, err)
	}
}

// readPump feeds inbound frames to the hub's event loop until the transport
// dies, then triggers unregistration.
func (c *Client) readPump() {
	defer func() {
		// The loop may already be gone during shutdown; don't hang on it.
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			log.Printf("Error closing connection in readPump: %v", err)
		}
	}()

	c.configureRead()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}

		if c.limiter != nil && !c.limiter.allow() {
			log.Printf("Rate limit exceeded for %s (%d messages per %s); discarding message",
				c.addr, c.rateBurst, c.rateRefill)
			dropped(c.hub.name, dropRateLimited)
			continue
		}

		select {
		case c.hub.inbound <- inboundMessage{sender: c, payload: raw}:
		case <-c.hub.ctx.Done():
			return
		}
	}
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			log.Printf("Error closing connection in writePump: %v", err)
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error setting write deadline for %s: %v", c.addr, err)
				}
				return
			}
			if !ok {
				// Hub closed the queue; say goodbye.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
					log.Printf("Error writing close message to %s: %v", c.addr, err)
				}
				return
			}
			if !c.writeFrame(payload) {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error setting write deadline for ping to %s: %v", c.addr, err)
				}
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error writing ping message to %s: %v", c.addr, err)
				}
				return
			}
		}
	}
}

// writeFrame writes one text frame. Queued payloads are not coalesced into a
// single frame: each envelope must arrive as its own message so clients can
// decode frames independently.
func (c *Client) writeFrame(payload []byte) bool {
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error writing message to %s: %v", c.addr, err)
		}
		return false
	}
	return true
}

// isExpectedCloseError reports whether an error is routine connection
// teardown noise.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "websocket: close sent") ||
		strings.Contains(msg, "broken pipe")
}
