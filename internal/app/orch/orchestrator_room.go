package orch

import (
	"context"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Join asks the membership oracle and adds sess to the room group on success.
// Membership is not re-checked for later events of this session.
func (o *Orchestrator) Join(ctx context.Context, sess core.MemberSession, room domain.RoomID, ack *int) {
	sid := sess.SID()
	user := sess.Meta().User

	pctx, cancel := o.persistCtx(ctx)
	ok, err := o.Membership.IsMember(pctx, room, user.ID)
	cancel()
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Msg("membership lookup failed")
		o.emitError(sess, msgJoinFailed)
		return
	}
	if !ok {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Str("user", string(user.ID)).Msg("join refused")
		o.emitError(sess, msgUnauthorized)
		return
	}

	if !o.Registry.AddRoom(sid, room) {
		return
	}
	o.Rooms.Join(room, sess)
	// a kick may have unbound the session meanwhile
	if _, still := o.Registry.GetSession(sid); !still {
		o.Rooms.Leave(room, sid)
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Msg("joined room")

	if ack == nil {
		return
	}
	frame, err := protocol.EncodeAck(protocol.EventAck, protocol.JoinAck{RoomID: room}, *ack)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode ack")
		return
	}
	o.emit(sess, frame)
}
