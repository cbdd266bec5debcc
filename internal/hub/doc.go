// Package hub implements the relay core for the Inklet server: the
// connection registry, the room registry, envelope routing, and fan-out
// broadcasting.
//
// Each Hub runs a single event loop that serializes every mutation of the
// connection and room tables, so audience snapshots handed to the broadcast
// path always reflect the state at the instant of the triggering event.
package hub
