package metrics

import "github.com/prometheus/client_golang/prometheus"

// RealtimeMetrics tracks the order change relay and its stream consumers.
type RealtimeMetrics struct {
	connections prometheus.Gauge
	events      *prometheus.CounterVec
	dropped     prometheus.Counter
}

// NewRealtimeMetrics registers relay metrics on the provided registerer.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	connections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_stream_connections",
		Help: "Open SSE connections on the order change relay.",
	})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_emitted_total",
		Help: "Frames emitted on the order change relay by event type.",
	}, []string{"type"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realtime_events_dropped_total",
		Help: "Change notifications dropped because the order re-fetch failed.",
	})
	reg.MustRegister(connections, events, dropped)
	return &RealtimeMetrics{
		connections: connections,
		events:      events,
		dropped:     dropped,
	}
}

// ConnOpened records one additional open relay connection.
func (m *RealtimeMetrics) ConnOpened() {
	if m == nil || m.connections == nil {
		return
	}
	m.connections.Inc()
}

// ConnClosed records a relay connection teardown.
func (m *RealtimeMetrics) ConnClosed() {
	if m == nil || m.connections == nil {
		return
	}
	m.connections.Dec()
}

// EventEmitted counts an emitted frame by type.
func (m *RealtimeMetrics) EventEmitted(eventType string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
}

// EventDropped counts a change notification discarded after a failed re-fetch.
func (m *RealtimeMetrics) EventDropped() {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.Inc()
}
