package orch

import (
	"context"
	"errors"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/protocol"
	"github.com/rs/zerolog/log"
)

// HandleFrame decodes and runs one inbound frame of sid.
// Frames of one connection must be handled one at a time, in arrival order.
func (o *Orchestrator) HandleFrame(ctx context.Context, sid core.SessionID, raw []byte) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	ev, ack, err := protocol.Decode(raw)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("bad frame")
		msg := "Invalid event."
		if errors.Is(err, protocol.ErrUnknownEvent) {
			msg = "Unknown event."
		}
		o.emitError(sess, msg)
		return
	}
	o.Handle(ctx, sess, ev, ack)
}

// Handle runs a decoded event for sess.
func (o *Orchestrator) Handle(ctx context.Context, sess core.MemberSession, ev protocol.ClientEvent, ack *int) {
	if re, ok := ev.(protocol.RoomEvent); ok && needsJoin(ev) {
		if err := o.requireJoined(sess, re.Room()); err != nil {
			log.Info().Err(err).Str("module", "orch").Str("sid", string(sess.SID())).Str("event", ev.Name()).Msg("event refused")
			o.emitError(sess, msgNotJoined)
			return
		}
	}

	switch e := ev.(type) {
	case protocol.Auth:
		o.emitError(sess, msgAlreadyAuthorized)
	case protocol.Join:
		o.Join(ctx, sess, e.Room(), ack)
	case protocol.SendMessage:
		o.SendMessage(ctx, sess, e)
	case protocol.TypingStart:
		o.Typing(ctx, sess, e.Room(), protocol.EventTypingStart)
	case protocol.TypingStop:
		o.Typing(ctx, sess, e.Room(), protocol.EventTypingStop)
	case protocol.VideoLoad:
		o.VideoLoad(ctx, sess, e)
	case protocol.VideoPlay:
		o.VideoPlayback(ctx, sess, e.Room(), true, e.Position)
	case protocol.VideoPause:
		o.VideoPlayback(ctx, sess, e.Room(), false, e.Position)
	case protocol.VideoSeek:
		o.VideoSeek(ctx, sess, e)
	case protocol.WhiteboardDraw:
		o.WhiteboardDraw(ctx, sess, e)
	default:
		log.Warn().Str("module", "orch").Str("event", ev.Name()).Msg("unhandled event")
		o.emitError(sess, "Unknown event.")
	}
}

// needsJoin is false for events that establish or check the group themselves.
func needsJoin(ev protocol.ClientEvent) bool {
	switch ev.(type) {
	case protocol.Join, protocol.WhiteboardDraw:
		return false
	}
	return true
}
