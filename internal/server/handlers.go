// Package server exposes HTTP handlers: WebSocket upgrades for the two
// relay endpoints, the health check, and the built-in test page.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/inklet/inklet/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// socketHandler returns the upgrade handler for one hub. It validates the
// method, upgrades the connection, and hands the new client to the hub,
// which launches the pump goroutines.
func socketHandler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		client := hub.NewClient(conn, h, r.RemoteAddr, clientOptions())
		select {
		case h.GetRegisterChan() <- client:
		case <-h.Done():
			// The event loop is gone; nobody will ever consume the
			// registration, so drop the connection here.
			log.Printf("Rejecting connection from %s: hub is shutting down", r.RemoteAddr)
			_ = conn.Close()
		}
	}
}

// clientOptions snapshots the per-connection limits from the active
// configuration at accept time.
func clientOptions() hub.ClientOptions {
	cfg := currentConfig()
	return hub.ClientOptions{
		MaxMessageSize: cfg.MaxMessageSize,
		SendBuffer:     cfg.SendBufferSize,
		RateBurst:      cfg.RateLimit.Burst,
		RateRefill:     cfg.RateLimit.RefillInterval,
	}
}

// HealthHandler provides a simple health check endpoint that returns server
// status as plain text.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Inklet relay server is running!")
}

// TestPageHandler serves an HTML page for poking the room relay by hand:
// join a room, chat, send reactions, and watch raw envelopes go by.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPageHTML); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}

const testPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Inklet Relay Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #log {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
            font-family: monospace;
            font-size: 13px;
        }
        input[type="text"] { padding: 5px; margin-right: 6px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        .status { margin: 10px 0; padding: 5px; border-radius: 3px; }
        .connected { background-color: #d4edda; color: #155724; }
        .disconnected { background-color: #f8d7da; color: #721c24; }
    </style>
</head>
<body>
    <h1>Inklet Relay Test</h1>

    <div id="status" class="status disconnected">Disconnected</div>

    <div>
        <button id="connectButton" onclick="toggleConnection()">Connect</button>
        <button onclick="send({type:'getRooms'})" id="roomsButton" disabled>List rooms</button>
    </div>
    <div style="margin-top:10px">
        <input type="text" id="roomId" placeholder="Room id" value="lobby">
        <input type="text" id="playerName" placeholder="Name">
        <button onclick="joinRoom()" id="joinButton" disabled>Join</button>
    </div>
    <div style="margin-top:10px">
        <input type="text" id="chatInput" placeholder="Say something..." style="width:300px" disabled>
        <button onclick="sendChat()" id="chatButton" disabled>Chat</button>
        <button onclick="send({type:'emoji', emoji:'&#127881;'})" id="emojiButton" disabled>&#127881;</button>
    </div>

    <div id="log"></div>

    <script>
        let ws = null;
        const logDiv = document.getElementById('log');
        const controls = ['roomsButton', 'joinButton', 'chatInput', 'chatButton', 'emojiButton'];

        function logLine(text) {
            const el = document.createElement('div');
            el.textContent = text;
            logDiv.appendChild(el);
            logDiv.scrollTop = logDiv.scrollHeight;
        }

        function updateStatus(connected) {
            const statusDiv = document.getElementById('status');
            statusDiv.textContent = connected ? 'Connected' : 'Disconnected';
            statusDiv.className = 'status ' + (connected ? 'connected' : 'disconnected');
            document.getElementById('connectButton').textContent = connected ? 'Disconnect' : 'Connect';
            controls.forEach(id => document.getElementById(id).disabled = !connected);
        }

        function toggleConnection() {
            if (ws && ws.readyState === WebSocket.OPEN) { ws.close(); return; }
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/rooms');
            ws.onopen = () => { logLine('-- connected --'); updateStatus(true); };
            ws.onmessage = e => logLine('<< ' + e.data);
            ws.onclose = () => { logLine('-- disconnected --'); updateStatus(false); ws = null; };
            ws.onerror = () => logLine('-- connection error --');
        }

        function send(envelope) {
            if (!ws || ws.readyState !== WebSocket.OPEN) return;
            const raw = JSON.stringify(envelope);
            ws.send(raw);
            logLine('>> ' + raw);
        }

        function joinRoom() {
            send({
                type: 'join',
                roomId: document.getElementById('roomId').value,
                playerName: document.getElementById('playerName').value || 'anonymous',
                playerAvatar: '&#128025;'
            });
        }

        function sendChat() {
            const input = document.getElementById('chatInput');
            if (!input.value.trim()) return;
            send({type: 'chat', message: input.value});
            input.value = '';
        }

        document.getElementById('chatInput').addEventListener('keypress', e => {
            if (e.key === 'Enter') sendChat();
        });
    </script>
</body>
</html>`
