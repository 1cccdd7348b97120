package orch

import (
	"context"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/protocol"
	"github.com/rs/zerolog/log"
)

// WhiteboardDraw relays strokes to the other members. The board is saved over REST.
func (o *Orchestrator) WhiteboardDraw(ctx context.Context, sess core.MemberSession, ev protocol.WhiteboardDraw) {
	if err := o.requireJoined(sess, ev.Room()); err != nil {
		log.Info().Err(err).Str("module", "orch").Str("sid", string(sess.SID())).Msg("draw refused")
		o.emitError(sess, msgWhiteboardFailed)
		return
	}
	update := protocol.WhiteboardUpdate{Elements: ev.Elements, AppState: ev.AppState}
	o.publish(ctx, sess, ev.Room(), sess.SID(), protocol.EventWhiteboardUpdate, update, msgWhiteboardFailed)
}
