// Package metrics provides ports.Metrics implementations: a prometheus
// adapter for operators who scrape, and a noop default.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fold-labs/fahlink/internal/ports"
)

// Prometheus implements ports.Metrics with prometheus collectors.
type Prometheus struct {
	connected      prometheus.Gauge
	framesReceived *prometheus.CounterVec
	patchesDropped prometheus.Counter
	reconnects     prometheus.Counter
	commandsSent   *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with the given
// registerer. Pass prometheus.DefaultRegisterer for the process default.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	m := &Prometheus{
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fahlink",
			Subsystem: "conn",
			Name:      "connected",
			Help:      "Whether the WebSocket to the folding client is up (0 or 1)",
		}),
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fahlink",
			Subsystem: "sync",
			Name:      "frames_received_total",
			Help:      "Inbound frames by kind (snapshot, patch, ping, invalid)",
		}, []string{"kind"}),
		patchesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fahlink",
			Subsystem: "sync",
			Name:      "patches_dropped_total",
			Help:      "Patches that could not be applied to the mirrored document",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fahlink",
			Subsystem: "conn",
			Name:      "reconnects_scheduled_total",
			Help:      "Reconnect attempts scheduled after disconnects",
		}),
		commandsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fahlink",
			Subsystem: "commands",
			Name:      "sent_total",
			Help:      "Outbound commands by outcome (ok, failed)",
		}, []string{"outcome"}),
	}

	collectors := []prometheus.Collector{
		m.connected, m.framesReceived, m.patchesDropped, m.reconnects, m.commandsSent,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ConnState sets the connected gauge.
func (m *Prometheus) ConnState(connected bool) {
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

// FrameReceived counts one inbound frame.
func (m *Prometheus) FrameReceived(kind string) {
	m.framesReceived.WithLabelValues(kind).Inc()
}

// PatchDropped counts one dropped patch.
func (m *Prometheus) PatchDropped() {
	m.patchesDropped.Inc()
}

// ReconnectScheduled counts one scheduled reconnect.
func (m *Prometheus) ReconnectScheduled() {
	m.reconnects.Inc()
}

// CommandSent counts one outbound command.
func (m *Prometheus) CommandSent(outcome string) {
	m.commandsSent.WithLabelValues(outcome).Inc()
}

var _ ports.Metrics = (*Prometheus)(nil)
