// Package hub fans envelopes out to broadcast audiences.
package hub

import "log"

// broadcast delivers payload to every target except exclude. Delivery is
// fire-and-forget per recipient: a full send buffer marks that client for
// removal and never blocks delivery to the rest. Successive broadcasts from
// one triggering event keep their relative order per recipient because each
// client's queue is filled sequentially on the event loop.
func (h *Hub) broadcast(targets []*Client, payload []byte, exclude *Client) {
	var stalled []*Client
	for _, c := range targets {
		if c == exclude {
			continue
		}
		if !h.registry.Send(c, payload) {
			stalled = append(stalled, c)
		}
	}

	for _, c := range stalled {
		log.Printf("Client from %s removed due to full send buffer", c.addr)
		dropped(h.name, dropSlowConsumer)
		h.disconnect(c)
	}
}

// broadcastAll sends to every registered connection, minus the sender.
func (h *Hub) broadcastAll(payload []byte, exclude *Client) {
	h.broadcast(h.registry.Snapshot(), payload, exclude)
}

// broadcastRoom sends to the members of one room. A stale room id resolves
// to an empty audience and the broadcast is a no-op.
func (h *Hub) broadcastRoom(roomID string, payload []byte, exclude *Client) {
	h.broadcast(h.rooms.Members(roomID), payload, exclude)
}

// sendTo queues a reply for a single connection.
func (h *Hub) sendTo(c *Client, payload []byte) {
	if !h.registry.Send(c, payload) {
		log.Printf("Client from %s removed due to full send buffer", c.addr)
		dropped(h.name, dropSlowConsumer)
		h.disconnect(c)
	}
}
