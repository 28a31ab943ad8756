// Package metrics exposes the engine's Prometheus metrics. One
// Collector is registered per Node; a nil *Collector is safe to call
// so tests and embedders can opt out.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "diampeer"
	subsystem = "peer"
)

// Label names.
const (
	labelCommand   = "command"
	labelDirection = "direction"
	labelFromState = "from_state"
	labelToState   = "to_state"
	labelCause     = "cause"
)

// Collector holds the engine's Prometheus metrics.
type Collector struct {
	// ActiveConnections tracks live peer connections.
	ActiveConnections prometheus.Gauge

	// Messages counts Diameter messages by command code and direction
	// ("in"/"out").
	Messages *prometheus.CounterVec

	// StateTransitions counts connection state machine transitions,
	// labeled with the old and new state for precise alerting.
	StateTransitions *prometheus.CounterVec

	// Disconnects counts closed connections by disconnect cause.
	Disconnects *prometheus.CounterVec

	// DecodeErrors counts messages that failed to decode. A decode
	// failure is fatal to its connection, so this should stay at zero.
	DecodeErrors prometheus.Counter
}

// NewCollector creates a Collector registered against reg. If reg is
// nil, prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := newMetrics()
	reg.MustRegister(
		c.ActiveConnections,
		c.Messages,
		c.StateTransitions,
		c.Disconnects,
		c.DecodeErrors,
	)
	return c
}

func newMetrics() *Collector {
	return &Collector{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_connections",
			Help:      "Number of live peer connections.",
		}),
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_total",
			Help:      "Total Diameter messages by command code and direction.",
		}, []string{labelCommand, labelDirection}),
		StateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "state_transitions_total",
			Help:      "Total connection state machine transitions.",
		}, []string{labelFromState, labelToState}),
		Disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "disconnects_total",
			Help:      "Total closed connections by disconnect cause.",
		}, []string{labelCause}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "decode_errors_total",
			Help:      "Total messages that failed to decode.",
		}),
	}
}

// ConnOpened records a new live connection.
func (c *Collector) ConnOpened() {
	if c == nil {
		return
	}
	c.ActiveConnections.Inc()
}

// ConnClosed records a closed connection and its cause.
func (c *Collector) ConnClosed(cause string) {
	if c == nil {
		return
	}
	c.ActiveConnections.Dec()
	c.Disconnects.WithLabelValues(cause).Inc()
}

// MessageIn records one received message.
func (c *Collector) MessageIn(commandCode uint32) {
	if c == nil {
		return
	}
	c.Messages.WithLabelValues(strconv.FormatUint(uint64(commandCode), 10), "in").Inc()
}

// MessageOut records one sent message.
func (c *Collector) MessageOut(commandCode uint32) {
	if c == nil {
		return
	}
	c.Messages.WithLabelValues(strconv.FormatUint(uint64(commandCode), 10), "out").Inc()
}

// Transition records a state machine transition.
func (c *Collector) Transition(from, to string) {
	if c == nil {
		return
	}
	c.StateTransitions.WithLabelValues(from, to).Inc()
}

// DecodeError records a message decode failure.
func (c *Collector) DecodeError() {
	if c == nil {
		return
	}
	c.DecodeErrors.Inc()
}
