package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRealtimeMetricsTracksConnectionsAndEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewRealtimeMetrics(reg)

	metrics.ConnOpened()
	metrics.ConnOpened()
	metrics.ConnClosed()
	metrics.EventEmitted("order_update")
	metrics.EventEmitted("order_update")
	metrics.EventDropped()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	conns := findMetricFamily(mfs, "realtime_stream_connections")
	if conns == nil {
		t.Fatal("connections gauge not registered")
	}
	if got := conns.GetMetric()[0].GetGauge().GetValue(); got != 1 {
		t.Fatalf("expected 1 open connection, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "realtime_events_emitted_total", "type", "order_update"); err != nil {
		t.Fatalf("fetch emitted: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 emitted events, got %f", got)
	}

	dropped := findMetricFamily(mfs, "realtime_events_dropped_total")
	if dropped == nil {
		t.Fatal("dropped counter not registered")
	}
	if got := dropped.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected 1 dropped event, got %f", got)
	}
}

func TestRealtimeMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewRealtimeMetrics(nil)
	metrics.ConnOpened()
	metrics.ConnClosed()
	metrics.EventEmitted("order_update")
	metrics.EventDropped()
}
