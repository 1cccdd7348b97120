// Package orch is the room session hub: it admits authenticated connections,
// tracks which room groups they joined and relays events between them.
package orch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/StudyHub/internal/app"
	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultPersistTimeout = 5 * time.Second

// Messages sent back in error events.
const (
	msgUnauthorized      = "Unauthorized: You are not a member of this room."
	msgJoinFailed        = "Failed to join room."
	msgNotJoined         = "You must join this room first."
	msgSendFailed        = "Failed to send message"
	msgVideoFailed       = "Failed to sync video"
	msgWhiteboardFailed  = "Failed to sync whiteboard"
	msgAlreadyAuthorized = "Already authenticated."
)

type Orchestrator struct {
	Registry    *app.Registry
	Rooms       core.RoomManager
	Policy      app.Policy
	Broadcaster core.Broadcaster

	Identity   core.IdentityResolver
	Membership core.MembershipOracle
	Messages   core.MessageStore
	Sessions   core.SessionStateStore

	PersistTimeout   time.Duration
	MaxMessageLength int
}

// Admit authenticates credential and registers conn as a new session.
// Nothing is registered when authentication fails. Resolver errors that are
// not domain.ErrAuthentication come back unwrapped as infrastructure failures.
func (o *Orchestrator) Admit(ctx context.Context, credential string, conn core.SignalConnection, cancel context.CancelFunc) (core.MemberSession, error) {
	actx, done := o.persistCtx(ctx)
	defer done()
	identity, err := o.Identity.Authenticate(actx, credential)
	if err != nil {
		if errors.Is(err, domain.ErrAuthentication) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	sid := core.SessionID(uuid.NewString())
	sess := core.NewMemberSession(sid, domain.NewMember(identity), conn)
	o.Registry.Bind(sess, cancel)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("user", string(identity.ID)).Msg("session admitted")
	return sess, nil
}

// OnDisconnect removes sid from every room group it joined. Idempotent.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	rooms, ok := o.Registry.Unbind(sid)
	if !ok {
		return
	}
	for _, room := range rooms {
		o.Rooms.Leave(room, sid)
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Int("rooms", len(rooms)).Msg("session disconnected")
}

// KickBySID drops the session and closes its transport.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	o.Registry.Cancel(sid)
	o.OnDisconnect(sid)
	sess.Signal().Close()
	log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("session kicked")
}

// EvictRoom drops the live group of a deleted room. Connections stay open.
func (o *Orchestrator) EvictRoom(room domain.RoomID) {
	if _, ok := o.Rooms.Get(room); !ok {
		return
	}
	for _, sid := range o.Registry.MembersOfRoom(room) {
		o.Registry.RemoveRoom(sid, room)
		o.Rooms.Leave(room, sid)
	}
	log.Info().Str("module", "orch").Str("room", string(room)).Msg("room evicted")
}

// Deliver implements core.Fanout for the groups held by this process.
func (o *Orchestrator) Deliver(room domain.RoomID, except core.SessionID, data core.Frame) {
	group, ok := o.Rooms.Get(room)
	if !ok {
		return
	}
	res := group.Broadcast(except, data)
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(group, slow) {
		case app.KickMember:
			o.KickBySID(slow.SID())
		case app.DropFrame, app.NoAction:
			log.Warn().Str("module", "orch").Str("room", string(room)).Str("sid", string(slow.SID())).Msg("frame dropped")
		}
	}
}

// publish hands a frame to the broadcaster; a failure is reported to sess.
func (o *Orchestrator) publish(ctx context.Context, sess core.MemberSession, room domain.RoomID, except core.SessionID, event string, data any, failMsg string) bool {
	frame, err := protocol.Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", event).Msg("encode failed")
		o.emitError(sess, failMsg)
		return false
	}
	if err := o.Broadcaster.Publish(ctx, room, except, frame); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(room)).Str("event", event).Msg("publish failed")
		o.emitError(sess, failMsg)
		return false
	}
	return true
}

func (o *Orchestrator) emit(sess core.MemberSession, frame core.Frame) {
	if err := sess.Signal().TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sess.SID())).Msg("emit failed")
	}
}

func (o *Orchestrator) emitError(sess core.MemberSession, message string) {
	o.emit(sess, protocol.ErrorFrame(message))
}

// persistCtx detaches from the connection so a disconnect does not abort a write.
func (o *Orchestrator) persistCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := o.PersistTimeout
	if timeout <= 0 {
		timeout = defaultPersistTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// joined returns true when sess is in the live group of room.
func (o *Orchestrator) joined(sess core.MemberSession, room domain.RoomID) bool {
	group, ok := o.Rooms.Get(room)
	return ok && group.HasMember(sess.SID())
}

// requireJoined fails with domain.ErrNotJoined when sess is outside the group of room.
func (o *Orchestrator) requireJoined(sess core.MemberSession, room domain.RoomID) error {
	if o.joined(sess, room) {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrNotJoined, room)
}
