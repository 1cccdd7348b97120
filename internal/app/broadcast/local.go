package broadcast

import (
	"context"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
)

// Local delivers in-process, synchronously.
type Local struct {
	fanout core.Fanout
	ready  chan struct{}
}

func NewLocal(fanout core.Fanout) *Local {
	ready := make(chan struct{})
	close(ready)
	return &Local{fanout: fanout, ready: ready}
}

func (l *Local) Publish(_ context.Context, room domain.RoomID, except core.SessionID, data core.Frame) error {
	l.fanout.Deliver(room, except, data)
	return nil
}

func (l *Local) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (l *Local) Ready() <-chan struct{} { return l.ready }

func (l *Local) Close() error { return nil }
