// Package testhelpers provides common utilities for testing the Inklet
// relay: configuring the server for a test origin, dialing WebSocket
// endpoints, and exchanging envelopes with timeouts.
package testhelpers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/inklet/inklet/internal/server"
)

// Configure points the active server configuration at the given test server
// URL so its origin passes the upgrade check, and restores defaults when the
// test finishes.
func Configure(t *testing.T, serverURL string, mutate func(*server.Config)) {
	t.Helper()

	cfg := server.NewConfig()
	cfg.AllowedOrigins = []string{serverURL}
	if mutate != nil {
		mutate(cfg)
	}
	server.SetConfig(cfg)
	t.Cleanup(func() { server.SetConfig(nil) })
}

// WebSocketURL rewrites an httptest server URL into a ws:// URL for the
// given endpoint path.
func WebSocketURL(t *testing.T, serverURL, path string) string {
	t.Helper()

	if !strings.HasPrefix(serverURL, "http") {
		t.Fatalf("unexpected test server URL %q", serverURL)
	}
	return "ws" + strings.TrimPrefix(serverURL, "http") + path
}

// ConnectWebSocket dials a relay endpoint with the given Origin header and
// fails the test on handshake errors.
func ConnectWebSocket(t *testing.T, wsURL, origin string) *websocket.Conn {
	t.Helper()

	conn, err := DialWebSocket(wsURL, origin)
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", wsURL, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// DialWebSocket dials a relay endpoint and returns the handshake error, for
// tests that expect rejection.
func DialWebSocket(wsURL, origin string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(wsURL, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// SendEnvelope marshals v and sends it as one text frame.
func SendEnvelope(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()

	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("Failed to send envelope: %v", err)
	}
}

// SendRaw sends raw bytes as one text frame.
func SendRaw(t *testing.T, conn *websocket.Conn, payload []byte) {
	t.Helper()

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("Failed to send raw message: %v", err)
	}
}

// ReadEnvelope reads one frame within the timeout and decodes it as loose
// JSON.
func ReadEnvelope(t *testing.T, conn *websocket.Conn, timeout time.Duration) map[string]interface{} {
	t.Helper()

	raw := ReadRaw(t, conn, timeout)
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Received frame is not JSON: %v (%s)", err, raw)
	}
	return decoded
}

// ReadRaw reads one frame within the timeout and returns its bytes.
func ReadRaw(t *testing.T, conn *websocket.Conn, timeout time.Duration) []byte {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	return raw
}

// ExpectSilence asserts that no frame arrives within the window. A read
// timeout poisons the underlying connection, so this must be the last read
// performed on conn.
func ExpectSilence(t *testing.T, conn *websocket.Conn, window time.Duration) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(window)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("Expected no frame, got %s", raw)
	}
	if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
		t.Fatalf("Expected read timeout, got %v", err)
	}
}

// JoinRoom sends a well-formed join envelope.
func JoinRoom(t *testing.T, conn *websocket.Conn, roomID, name string) {
	t.Helper()

	SendEnvelope(t, conn, map[string]string{
		"type":         "join",
		"roomId":       roomID,
		"playerName":   name,
		"playerAvatar": ":" + strings.ToLower(name) + ":",
	})
}

// CloseWebSocket performs a polite close handshake.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}
