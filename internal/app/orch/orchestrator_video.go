package orch

import (
	"context"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Video events reach peers before the snapshot is written. A failed write
// is reported to the sender only; peers keep what they received.

func (o *Orchestrator) VideoLoad(ctx context.Context, sess core.MemberSession, ev protocol.VideoLoad) {
	room := ev.Room()
	o.publish(ctx, sess, room, sess.SID(), protocol.EventVideoLoadNew, protocol.VideoLoadNew{URL: ev.URL}, msgVideoFailed)

	pctx, cancel := o.persistCtx(ctx)
	defer cancel()
	if err := o.Sessions.LoadVideo(pctx, room, ev.URL, sess.Meta().User.ID); err != nil {
		o.videoFailed(sess, room, err)
	}
}

func (o *Orchestrator) VideoPlayback(ctx context.Context, sess core.MemberSession, room domain.RoomID, playing bool, position float64) {
	event := protocol.EventVideoPauseNew
	if playing {
		event = protocol.EventVideoPlayNew
	}
	o.publish(ctx, sess, room, sess.SID(), event, protocol.Position{Position: position}, msgVideoFailed)

	pctx, cancel := o.persistCtx(ctx)
	defer cancel()
	if err := o.Sessions.SetPlayback(pctx, room, playing, position, sess.Meta().User.ID); err != nil {
		o.videoFailed(sess, room, err)
	}
}

// VideoSeek is relay only.
func (o *Orchestrator) VideoSeek(ctx context.Context, sess core.MemberSession, ev protocol.VideoSeek) {
	o.publish(ctx, sess, ev.Room(), sess.SID(), protocol.EventVideoSeekNew, protocol.Position{Position: ev.Position}, msgVideoFailed)
}

func (o *Orchestrator) videoFailed(sess core.MemberSession, room domain.RoomID, err error) {
	log.Error().Err(err).Str("module", "orch").Str("sid", string(sess.SID())).Str("room", string(room)).Msg("video state not stored")
	o.emitError(sess, msgVideoFailed)
}
