package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebSocketConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)

	WebSocketEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_events_total",
			Help: "Total number of WebSocket events by type",
		},
		[]string{"event"},
	)

	WebSocketDisconnections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_disconnections_total",
			Help: "Total number of WebSocket disconnections",
		},
		[]string{"reason"},
	)

	RealtimeDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_deliveries_total",
			Help: "Total number of realtime message deliveries by outcome",
		},
		[]string{"outcome"},
	)

	PresenceEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presence_entries",
			Help: "Number of users currently mapped in the presence registry",
		},
	)
)
