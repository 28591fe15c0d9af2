package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinesync/backend/internal/realtime"
	"github.com/dinesync/backend/pkg/enums"
)

func sseHandler(t *testing.T, frames ...realtime.Frame) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for _, frame := range frames {
			payload, err := json.Marshal(frame)
			require.NoError(t, err)
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func TestClientReceivesFrames(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		realtime.Frame{Type: enums.RealtimeEventConnected, Timestamp: time.Now()},
		realtime.Frame{Type: enums.RealtimeEventOrderUpdate, Event: enums.ChangeKindUpdate, Timestamp: time.Now()},
	))
	defer server.Close()

	client, err := New(Options{
		URL:           server.URL,
		ReconnectBase: 10 * time.Millisecond,
		ReconnectCap:  20 * time.Millisecond,
		MaxReconnects: 2,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)
	defer client.Close()

	first := <-client.Events()
	assert.Equal(t, enums.RealtimeEventConnected, first.Type)

	second := <-client.Events()
	assert.Equal(t, enums.RealtimeEventOrderUpdate, second.Type)
}

func TestClientGivesUpWhenServerKeepsFailing(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(Options{
		URL:           server.URL,
		ReconnectBase: 5 * time.Millisecond,
		ReconnectCap:  10 * time.Millisecond,
		MaxReconnects: 3,
	})
	require.NoError(t, err)

	client.Start(context.Background())

	select {
	case <-client.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("client never gave up")
	}

	assert.Equal(t, StateGaveUp, client.State())
	assert.Error(t, client.Err())
	// First attempt plus the configured retries.
	assert.Equal(t, int32(4), attempts.Load())

	_, open := <-client.Events()
	assert.False(t, open, "frame channel should be closed after giving up")
}

func TestClientReconnectsWithFreshBudgetAfterDrop(t *testing.T) {
	var connections atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connections.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		payload, _ := json.Marshal(realtime.Frame{
			Type:      enums.RealtimeEventHeartbeat,
			Message:   fmt.Sprintf("conn-%d", n),
			Timestamp: time.Now(),
		})
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		// Drop after one frame so the client reconnects.
	}))
	defer server.Close()

	client, err := New(Options{
		URL:           server.URL,
		ReconnectBase: 5 * time.Millisecond,
		ReconnectCap:  10 * time.Millisecond,
		MaxReconnects: 2,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)
	defer client.Close()

	first := <-client.Events()
	assert.Equal(t, "conn-1", first.Message)

	second := <-client.Events()
	assert.Equal(t, "conn-2", second.Message)

	assert.GreaterOrEqual(t, connections.Load(), int32(2))
}

func TestClientSkipsMalformedFrames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {not json}\n\n")
		payload, _ := json.Marshal(realtime.Frame{Type: enums.RealtimeEventHeartbeat, Timestamp: time.Now()})
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}))
	defer server.Close()

	client, err := New(Options{
		URL:           server.URL,
		ReconnectBase: 5 * time.Millisecond,
		ReconnectCap:  10 * time.Millisecond,
		MaxReconnects: 1,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)
	defer client.Close()

	frame := <-client.Events()
	assert.Equal(t, enums.RealtimeEventHeartbeat, frame.Type)
}

func TestClientCloseBeforeStartDoesNotBlock(t *testing.T) {
	client, err := New(Options{URL: "http://localhost:0"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		client.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked without a running loop")
	}

	_, open := <-client.Events()
	assert.False(t, open, "frame channel should be closed")
	select {
	case <-client.Done():
	default:
		t.Fatal("Done should be closed after Close")
	}
}
