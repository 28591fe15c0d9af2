// Package stream implements the consumer side of the order change feed: a
// long-lived SSE client with automatic reconnection.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dinesync/backend/internal/realtime"
	"github.com/dinesync/backend/pkg/logger"
)

// State is the client's connection lifecycle phase.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateGaveUp       State = "gave-up"
)

// errStreamEnded signals a dropped stream after a successful connection. The
// run loop treats it as a cue to reconnect with a fresh backoff schedule.
var errStreamEnded = errors.New("stream ended")

// Options configures a stream Client.
type Options struct {
	// URL is the full SSE endpoint, e.g. http://host/api/orders/realtime.
	URL string
	// BearerToken, when set, is sent as an Authorization header.
	BearerToken string
	HTTPClient  *http.Client
	// ReconnectBase is the first retry delay; each subsequent delay doubles.
	ReconnectBase time.Duration
	// ReconnectCap bounds the delay between attempts.
	ReconnectCap time.Duration
	// MaxReconnects is the number of consecutive failed attempts tolerated
	// before the client gives up. A successful connection resets the count.
	MaxReconnects uint64
	Logger        *logger.Logger
	// Buffer sizes the outbound frame channel.
	Buffer int
}

// Client consumes the order SSE stream and republishes decoded frames on a
// channel. It reconnects on failure with capped exponential backoff and
// reaches a terminal gave-up state once the attempt budget is spent.
type Client struct {
	opts   Options
	frames chan realtime.Frame

	mu      sync.RWMutex
	state   State
	lastErr error

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New validates options and builds a Client. Call Start to begin consuming.
func New(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("stream URL required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.ReconnectBase <= 0 {
		opts.ReconnectBase = time.Second
	}
	if opts.ReconnectCap < opts.ReconnectBase {
		opts.ReconnectCap = opts.ReconnectBase
	}
	if opts.MaxReconnects == 0 {
		opts.MaxReconnects = 8
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	return &Client{
		opts:   opts,
		frames: make(chan realtime.Frame, opts.Buffer),
		state:  StateDisconnected,
		done:   make(chan struct{}),
	}, nil
}

// Events returns the decoded frame channel. It is closed when the client
// stops, whether by Close, context cancellation, or giving up.
func (c *Client) Events() <-chan realtime.Frame {
	return c.frames
}

// State reports the current connection phase.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Err returns the error that drove the client into gave-up, if any.
func (c *Client) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Done is closed once the run loop has fully stopped.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Start launches the consume loop. It returns immediately.
func (c *Client) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.run(ctx)
}

// Close stops the client and releases its connection. Safe to call before
// Start, in which case there is no run loop to wind down.
func (c *Client) Close() {
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
			return
		}
		close(c.frames)
		close(c.done)
	})
	<-c.done
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)
	defer close(c.frames)

	for {
		// A fresh backoff per cycle: connecting successfully earns a full
		// reconnect budget for the next drop.
		backoff := retry.WithMaxRetries(c.opts.MaxReconnects,
			retry.WithCappedDuration(c.opts.ReconnectCap,
				retry.NewExponential(c.opts.ReconnectBase)))

		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			c.setState(StateConnecting, nil)
			if err := c.consume(ctx); err != nil {
				if errors.Is(err, errStreamEnded) || errors.Is(err, context.Canceled) {
					return err
				}
				c.setState(StateDisconnected, nil)
				c.logWarn(ctx, fmt.Sprintf("stream connect failed, will retry: %v", err))
				return retry.RetryableError(err)
			}
			return errStreamEnded
		})

		switch {
		case err == nil || errors.Is(err, errStreamEnded):
			// Stream dropped after a good connection; reconnect immediately
			// with a reset backoff.
			c.setState(StateDisconnected, nil)
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			c.setState(StateDisconnected, nil)
			return
		default:
			c.setState(StateGaveUp, err)
			c.logWarn(ctx, fmt.Sprintf("stream reconnect budget exhausted: %v", err))
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// consume dials the endpoint and pumps frames until the stream drops. A nil
// or errStreamEnded return means the connection was established; any other
// error means the attempt failed outright.
func (c *Client) consume(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.URL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.opts.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.BearerToken)
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream endpoint returned %d", resp.StatusCode)
	}

	c.setState(StateConnected, nil)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame realtime.Frame
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			c.logWarn(ctx, "dropping malformed stream frame")
			continue
		}
		select {
		case c.frames <- frame:
		case <-ctx.Done():
			return context.Canceled
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return errStreamEnded
}

func (c *Client) setState(state State, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	if err != nil {
		c.lastErr = err
	}
}

func (c *Client) logWarn(ctx context.Context, msg string) {
	if c.opts.Logger != nil {
		c.opts.Logger.Warn(ctx, msg)
	}
}
