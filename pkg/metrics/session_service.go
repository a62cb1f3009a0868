package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RoomMetrics contains Prometheus metrics for the lobby's room lifecycle and
// the game processes the supervisor spawns on START_GAME.
type RoomMetrics struct {
	RoomsCreatedTotal *prometheus.CounterVec
	RoomsClosedTotal  *prometheus.CounterVec
	RoomsActive       prometheus.Gauge
	RoomJoinFailures  *prometheus.CounterVec
	RoomExpirySweeps  prometheus.Counter

	GameProcessesStarted *prometheus.CounterVec
	GameProcessesActive  prometheus.Gauge
	GameProcessFailures  *prometheus.CounterVec
	GameProcessDuration  *prometheus.HistogramVec

	ConnectionsActive *prometheus.GaugeVec
}

// NewRoomMetrics creates and registers the room/supervisor metrics.
func NewRoomMetrics(namespace string) *RoomMetrics {
	return &RoomMetrics{
		RoomsCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "room",
			Name:      "created_total",
			Help:      "Total number of rooms created",
		}, []string{"game_id"}),
		RoomsClosedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "room",
			Name:      "closed_total",
			Help:      "Total number of rooms closed",
		}, []string{"reason"}),
		RoomsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "room",
			Name:      "active",
			Help:      "Number of rooms currently waiting or playing",
		}),
		RoomJoinFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "room",
			Name:      "join_failures_total",
			Help:      "Total number of rejected JOIN_ROOM attempts",
		}, []string{"reason"}),
		RoomExpirySweeps: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "room",
			Name:      "expiry_sweeps_total",
			Help:      "Total number of rooms closed by the expiry sweeper",
		}),

		GameProcessesStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "processes_started_total",
			Help:      "Total number of game server processes spawned",
		}, []string{"game_name"}),
		GameProcessesActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "processes_active",
			Help:      "Number of game server processes currently running",
		}),
		GameProcessFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "process_failures_total",
			Help:      "Total number of game server processes that failed to start or exited non-zero",
		}, []string{"game_name", "reason"}),
		GameProcessDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "process_duration_seconds",
			Help:      "Game server process lifetime in seconds",
			Buckets:   []float64{30, 60, 300, 900, 1800, 3600, 7200, 14400},
		}, []string{"game_name"}),

		ConnectionsActive: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "listener",
			Name:      "connections_active",
			Help:      "Number of currently connected sockets",
		}, []string{"listener"}),
	}
}
