package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AlertsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_consumed_total",
			Help: "Total number of alerts consumed from RabbitMQ",
		},
		[]string{"status"},
	)

	AlertsBroadcastTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_broadcast_total",
			Help: "Total number of alerts broadcast via WebSocket",
		},
		[]string{"kind", "severity", "delivered"},
	)

	WebSocketConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of WebSocket connections",
		},
		[]string{"role"},
	)

	RabbitMQConsumeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rabbitmq_consume_duration_seconds",
			Help:    "Duration of RabbitMQ message consumption",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"status"},
	)
)

// RegisterAlertConsumerMetrics registers all alert-consumer metrics
func RegisterAlertConsumerMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AlertsConsumedTotal)
	reg.MustRegister(AlertsBroadcastTotal)
	reg.MustRegister(WebSocketConnections)
	reg.MustRegister(RabbitMQConsumeDuration)
}

// ObserveAlertConsumed records one processed queue message
func ObserveAlertConsumed(status string, elapsed time.Duration) {
	AlertsConsumedTotal.WithLabelValues(status).Inc()
	RabbitMQConsumeDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// ObserveConnection tracks websocket clients per role
func ObserveConnection(role string, delta float64) {
	WebSocketConnections.WithLabelValues(strings.ToLower(role)).Add(delta)
}

func observeBroadcast(kind, severity string, sent int) {
	AlertsBroadcastTotal.WithLabelValues(kind, severity, strconv.FormatBool(sent > 0)).Inc()
}
