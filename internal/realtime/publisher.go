package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/dinesync/backend/pkg/logger"
)

type pubSubClient interface {
	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(ctx context.Context, channels ...string) (*redislib.PubSub, error)
}

// RedisPublisher pushes change notifications onto the shared Redis channel.
type RedisPublisher struct {
	client  pubSubClient
	channel string
	logg    *logger.Logger
}

// NewRedisPublisher wires a publisher onto the configured channel.
func NewRedisPublisher(client pubSubClient, channel string, logg *logger.Logger) (*RedisPublisher, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if channel == "" {
		return nil, fmt.Errorf("channel name required")
	}
	return &RedisPublisher{client: client, channel: channel, logg: logg}, nil
}

// PublishChange serializes and publishes the change. Publish failures are
// logged but never fail the originating mutation; the polling fallback covers
// missed notifications.
func (p *RedisPublisher) PublishChange(ctx context.Context, change Change) error {
	if change.OccurredAt.IsZero() {
		change.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload); err != nil {
		if p.logg != nil {
			p.logg.Error(ctx, "publish order change", err)
		}
		return err
	}
	return nil
}

// SubscribeChanges opens a subscription on the change channel and returns a
// receive-only Go channel of decoded notifications. Malformed payloads are
// logged and skipped. The goroutine exits when ctx is canceled.
func (p *RedisPublisher) SubscribeChanges(ctx context.Context) (<-chan Change, func() error, error) {
	sub, err := p.client.Subscribe(ctx, p.channel)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan Change)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					if p.logg != nil {
						p.logg.Warn(ctx, "dropping malformed change payload")
					}
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, sub.Close, nil
}
