// Package server constructs and starts the Inklet HTTP service with helpers
// that apply sensible production defaults.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/inklet/inklet/internal/hub"
)

var (
	drawHub = hub.NewHub("draw")
	roomHub = hub.NewHub("rooms")
)

// CreateServer creates and configures an HTTP server with the specified port
// and handler. It sets reasonable timeout values for production use.
func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartHubs launches the event loops of both default hubs. This should be
// called before starting the HTTP server.
func StartHubs() {
	go drawHub.Run()
	go roomHub.Run()
	log.Println("Hubs started and ready to manage WebSocket connections")
}

// DrawHub returns the default drawing relay hub.
func DrawHub() *hub.Hub {
	return drawHub
}

// RoomHub returns the default room/chat relay hub.
func RoomHub() *hub.Hub {
	return roomHub
}

// ShutdownHubs gracefully stops both default hubs, giving each up to the
// timeout to drain its client goroutines.
func ShutdownHubs(timeout time.Duration) {
	if err := drawHub.Shutdown(timeout); err != nil {
		log.Printf("Draw hub shutdown incomplete: %v", err)
	}
	if err := roomHub.Shutdown(timeout); err != nil {
		log.Printf("Room hub shutdown incomplete: %v", err)
	}
}

// StartServer starts the HTTP server and begins listening for connections.
// It returns an error if the server fails to start.
func StartServer(server *http.Server) error {
	fmt.Printf("Server listening on port %s\n", server.Addr)
	return server.ListenAndServe()
}

// ShutdownServer gracefully shuts down the HTTP server without interrupting
// active connections. It waits for active connections to close or until the
// timeout is reached.
func ShutdownServer(server *http.Server, timeout time.Duration) error {
	log.Println("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		return err
	}

	log.Println("HTTP server shutdown completed")
	return nil
}
