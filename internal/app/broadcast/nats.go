package broadcast

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATS fans out over core subjects named <prefix>.<room>.
type NATS struct {
	nc        *nats.Conn
	prefix    string
	fanout    core.Fanout
	ready     chan struct{}
	readyOnce sync.Once
}

func NewNATS(nc *nats.Conn, prefix string, fanout core.Fanout) *NATS {
	return &NATS{nc: nc, prefix: prefix, fanout: fanout, ready: make(chan struct{})}
}

func (n *NATS) subject(room domain.RoomID) string {
	return n.prefix + "." + string(room)
}

func (n *NATS) Publish(_ context.Context, room domain.RoomID, except core.SessionID, data core.Frame) error {
	if err := checkRoom(room); err != nil {
		return err
	}
	b, err := encodeEnvelope(room, except, data)
	if err != nil {
		return err
	}
	if err := n.nc.Publish(n.subject(room), b); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

func (n *NATS) Run(ctx context.Context) error {
	sub, err := n.nc.Subscribe(n.prefix+".*", func(msg *nats.Msg) {
		deliverEnvelope(n.fanout, msg.Data, "nats")
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	defer func() { _ = sub.Unsubscribe() }()
	if err := n.nc.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	n.readyOnce.Do(func() { close(n.ready) })
	log.Info().Str("module", "broadcast").Str("backend", "nats").Str("subject", n.prefix+".*").Msg("subscribed")

	<-ctx.Done()
	return nil
}

func (n *NATS) Ready() <-chan struct{} { return n.ready }

func (n *NATS) Close() error {
	n.nc.Close()
	return nil
}
