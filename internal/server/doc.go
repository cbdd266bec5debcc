// Package server implements the HTTP and WebSocket transport for the Inklet
// relay.
//
// The implementation is organized into specialized files for configuration,
// origin policy, routing, and HTTP handlers; the relay core itself lives in
// internal/hub.
package server
