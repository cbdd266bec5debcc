// Package hub exports Prometheus metrics describing relay traffic.
package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons recorded on inklet_messages_dropped_total.
const (
	dropMalformed    = "malformed"
	dropUnknownType  = "unknown_type"
	dropNoRoom       = "no_room"
	dropRateLimited  = "rate_limited"
	dropSlowConsumer = "slow_consumer"
)

var (
	connectedClients = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "inklet_connected_clients",
		Help: "Live WebSocket connections per hub.",
	}, []string{"hub"})

	openRooms = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "inklet_open_rooms",
		Help: "Rooms with at least one member.",
	}, []string{"hub"})

	messagesRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inklet_messages_relayed_total",
		Help: "Inbound messages accepted and delivered, by envelope type.",
	}, []string{"hub", "type"})

	messagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inklet_messages_dropped_total",
		Help: "Inbound messages discarded before delivery, by reason.",
	}, []string{"hub", "reason"})
)

func relayed(hubName, msgType string) {
	messagesRelayed.WithLabelValues(hubName, msgType).Inc()
}

func dropped(hubName, reason string) {
	messagesDropped.WithLabelValues(hubName, reason).Inc()
}
