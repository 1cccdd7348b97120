package broadcast

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis fans out over pub/sub channels named <prefix>:<room>.
type Redis struct {
	client    *redis.Client
	prefix    string
	fanout    core.Fanout
	ready     chan struct{}
	readyOnce sync.Once
}

func NewRedis(client *redis.Client, prefix string, fanout core.Fanout) *Redis {
	return &Redis{client: client, prefix: prefix, fanout: fanout, ready: make(chan struct{})}
}

func (r *Redis) channel(room domain.RoomID) string {
	return r.prefix + ":" + string(room)
}

func (r *Redis) Publish(ctx context.Context, room domain.RoomID, except core.SessionID, data core.Frame) error {
	if err := checkRoom(room); err != nil {
		return err
	}
	b, err := encodeEnvelope(room, except, data)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel(room), b).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (r *Redis) Run(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, r.prefix+":*")
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	r.readyOnce.Do(func() { close(r.ready) })
	log.Info().Str("module", "broadcast").Str("backend", "redis").Str("pattern", r.prefix+":*").Msg("subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			deliverEnvelope(r.fanout, []byte(msg.Payload), "redis")
		}
	}
}

func (r *Redis) Ready() <-chan struct{} { return r.ready }

func (r *Redis) Close() error { return r.client.Close() }
