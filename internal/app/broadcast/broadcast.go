// Package broadcast carries room frames between processes serving the same rooms.
// Every backend ends in core.Fanout on each process, which delivers to the
// connections that process holds.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/StudyHub/internal/config"
	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Backend is a core.Broadcaster with a receive loop.
type Backend interface {
	core.Broadcaster
	// Run consumes remote publications until ctx ends.
	Run(ctx context.Context) error
	// Ready is closed once Run is receiving.
	Ready() <-chan struct{}
}

// envelope is the inter-process form of one publication.
type envelope struct {
	Room   domain.RoomID   `json:"room"`
	Except core.SessionID  `json:"except,omitempty"`
	Frame  json.RawMessage `json:"frame"`
}

func encodeEnvelope(room domain.RoomID, except core.SessionID, data core.Frame) ([]byte, error) {
	return json.Marshal(envelope{Room: room, Except: except, Frame: json.RawMessage(data)})
}

func deliverEnvelope(fanout core.Fanout, raw []byte, backend string) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Room == "" {
		log.Warn().Err(err).Str("module", "broadcast").Str("backend", backend).Msg("dropping malformed envelope")
		return
	}
	fanout.Deliver(env.Room, env.Except, core.Frame(env.Frame))
}

func checkRoom(room domain.RoomID) error {
	if room == "" || strings.ContainsAny(string(room), ".*> :") {
		return fmt.Errorf("%w: room id %q not routable", domain.ErrProtocol, room)
	}
	return nil
}

// New builds the backend named in cfg. Remote backends are connected before returning.
func New(ctx context.Context, cfg config.BroadcastConfig, fanout core.Fanout) (Backend, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal(fanout), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return NewRedis(client, cfg.Prefix, fanout), nil
	case "nats":
		nc, err := nats.Connect(cfg.NatsURL,
			nats.Name("studyhub"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Warn().Err(err).Str("module", "broadcast").Msg("nats disconnected")
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				log.Info().Str("module", "broadcast").Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("nats connect %s: %w", cfg.NatsURL, err)
		}
		return NewNATS(nc, cfg.Prefix, fanout), nil
	}
	return nil, fmt.Errorf("unknown broadcast backend %q", cfg.Backend)
}
