package orch

import (
	"context"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/protocol"
	"github.com/rs/zerolog/log"
)

// SendMessage persists first; only a stored message is broadcast, sender included.
func (o *Orchestrator) SendMessage(ctx context.Context, sess core.MemberSession, ev protocol.SendMessage) {
	room := ev.Room()
	text, err := domain.CheckMessageText(ev.Text, o.maxMessageLength())
	if err != nil {
		o.emitError(sess, msgSendFailed+": "+err.Error())
		return
	}
	author := sess.Meta().User

	pctx, cancel := o.persistCtx(ctx)
	defer cancel()
	msg, err := o.Messages.Append(pctx, domain.Message{
		RoomID:      room,
		UserID:      author.ID,
		Text:        text,
		Attachments: ev.Attachments,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sess.SID())).Str("room", string(room)).Msg("message not stored")
		o.emitError(sess, msgSendFailed)
		return
	}
	o.publish(pctx, sess, room, "", protocol.EventMessageNew, protocol.NewMessageNew(msg, author), msgSendFailed)
}

// Typing relays start/stop to the other members. Nothing is stored.
func (o *Orchestrator) Typing(ctx context.Context, sess core.MemberSession, room domain.RoomID, event string) {
	o.publish(ctx, sess, room, sess.SID(), event, sess.Meta().User, msgSendFailed)
}

func (o *Orchestrator) maxMessageLength() int {
	if o.MaxMessageLength > 0 {
		return o.MaxMessageLength
	}
	return domain.DefaultMessageMaxLen
}
