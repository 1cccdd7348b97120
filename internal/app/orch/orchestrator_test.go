package orch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/StudyHub/internal/app"
	"github.com/dkeye/StudyHub/internal/app/broadcast"
	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/mocks"
	"github.com/dkeye/StudyHub/internal/protocol"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []protocol.Envelope
	closed bool
	full   bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errors.New("full")
	}
	var env protocol.Envelope
	if err := json.Unmarshal(f, &env); err != nil {
		return err
	}
	c.frames = append(c.frames, env)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		out = append(out, f.Event)
	}
	return out
}

func (c *fakeConn) last() protocol.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return protocol.Envelope{}
	}
	return c.frames[len(c.frames)-1]
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

type fixture struct {
	orch       *Orchestrator
	identity   *mocks.MockIdentityResolver
	membership *mocks.MockMembershipOracle
	messages   *mocks.MockMessageStore
	sessions   *mocks.MockSessionStateStore
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		identity:   mocks.NewMockIdentityResolver(ctrl),
		membership: mocks.NewMockMembershipOracle(ctrl),
		messages:   mocks.NewMockMessageStore(ctrl),
		sessions:   mocks.NewMockSessionStateStore(ctrl),
	}
	f.orch = &Orchestrator{
		Registry:       app.NewRegistry(),
		Rooms:          app.NewRoomManager(),
		Policy:         app.SimplePolicy{},
		Identity:       f.identity,
		Membership:     f.membership,
		Messages:       f.messages,
		Sessions:       f.sessions,
		PersistTimeout: time.Second,
	}
	f.orch.Broadcaster = broadcast.NewLocal(f.orch)
	return f
}

func identity(name string) domain.Identity {
	return domain.Identity{ID: domain.UserID("u-" + name), Name: name}
}

// admit registers a connection authenticated as name.
func (f *fixture) admit(t *testing.T, name string) (core.MemberSession, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	f.identity.EXPECT().Authenticate(gomock.Any(), "token-"+name).Return(identity(name), nil)
	sess, err := f.orch.Admit(context.Background(), "token-"+name, conn, func() {})
	require.NoError(t, err)
	return sess, conn
}

// enter admits name and joins room.
func (f *fixture) enter(t *testing.T, name string, room domain.RoomID) (core.MemberSession, *fakeConn) {
	t.Helper()
	sess, conn := f.admit(t, name)
	f.membership.EXPECT().IsMember(gomock.Any(), room, identity(name).ID).Return(true, nil)
	f.orch.Join(context.Background(), sess, room, nil)
	require.True(t, f.orch.joined(sess, room))
	return sess, conn
}

func frame(t *testing.T, event string, data any) []byte {
	t.Helper()
	b, err := json.Marshal(data)
	require.NoError(t, err)
	out, err := json.Marshal(protocol.Envelope{Event: event, Data: b})
	require.NoError(t, err)
	return out
}

func errorMessage(t *testing.T, env protocol.Envelope) string {
	t.Helper()
	require.Equal(t, protocol.EventError, env.Event)
	var e protocol.Error
	require.NoError(t, json.Unmarshal(env.Data, &e))
	return e.Message
}

func TestAdmit_FailureRegistersNothing(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.identity.EXPECT().Authenticate(gomock.Any(), "bad").
		Return(domain.Identity{}, fmt.Errorf("%w: token expired", domain.ErrAuthentication))

	sess, err := f.orch.Admit(context.Background(), "bad", &fakeConn{}, func() {})

	req.Nil(sess)
	req.ErrorIs(err, domain.ErrAuthentication)
	req.Zero(f.orch.Registry.Count())
}

func TestAdmit_ResolverOutageIsNotAuthentication(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	outage := errors.New("database is down")
	f.identity.EXPECT().Authenticate(gomock.Any(), "token").Return(domain.Identity{}, outage)

	sess, err := f.orch.Admit(context.Background(), "token", &fakeConn{}, func() {})

	req.Nil(sess)
	req.ErrorIs(err, outage)
	req.NotErrorIs(err, domain.ErrAuthentication)
	req.Zero(f.orch.Registry.Count())
}

func TestJoin_AckAndGroup(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	sess, conn := f.admit(t, "alice")
	f.membership.EXPECT().IsMember(gomock.Any(), domain.RoomID("r1"), identity("alice").ID).Return(true, nil)

	ack := 7
	f.orch.Join(context.Background(), sess, "r1", &ack)

	req.True(f.orch.joined(sess, "r1"))
	last := conn.last()
	req.Equal(protocol.EventAck, last.Event)
	req.NotNil(last.Ack)
	req.Equal(7, *last.Ack)
}

func TestJoin_RejectedNotAdded(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	sess, conn := f.admit(t, "mallory")
	f.membership.EXPECT().IsMember(gomock.Any(), domain.RoomID("r1"), identity("mallory").ID).Return(false, nil)

	f.orch.HandleFrame(context.Background(), sess.SID(), frame(t, protocol.EventJoin, map[string]string{"roomId": "r1"}))

	req.False(f.orch.joined(sess, "r1"))
	_, exists := f.orch.Rooms.Get("r1")
	req.False(exists)
	req.Equal(msgUnauthorized, errorMessage(t, conn.last()))
}

func TestJoin_OracleFailure(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	sess, conn := f.admit(t, "alice")
	f.membership.EXPECT().IsMember(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, domain.ErrPersistence)

	f.orch.Join(context.Background(), sess, "r1", nil)

	req.False(f.orch.joined(sess, "r1"))
	req.Equal(msgJoinFailed, errorMessage(t, conn.last()))
}

func TestSendMessage_BroadcastIncludesSender(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, aliceConn := f.enter(t, "alice", "r1")
	_, bobConn := f.enter(t, "bob", "r1")
	_, otherConn := f.enter(t, "carol", "r2")

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f.messages.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, m domain.Message) (domain.Message, error) {
			req.Equal(domain.RoomID("r1"), m.RoomID)
			req.Equal(identity("alice").ID, m.UserID)
			req.Equal("hello", m.Text)
			m.ID = "m1"
			m.CreatedAt = created
			return m, nil
		})

	f.orch.HandleFrame(context.Background(), alice.SID(),
		frame(t, protocol.EventMessageSend, map[string]any{"roomId": "r1", "text": "  hello  "}))

	for _, conn := range []*fakeConn{aliceConn, bobConn} {
		last := conn.last()
		req.Equal(protocol.EventMessageNew, last.Event)
		var got protocol.MessageNew
		req.NoError(json.Unmarshal(last.Data, &got))
		req.Equal(domain.MessageID("m1"), got.ID)
		req.Equal("hello", got.Text)
		req.Equal(identity("alice"), got.User)
		req.Empty(got.Attachments)
		req.NotNil(got.Attachments)
		req.True(created.Equal(got.CreatedAt))
	}
	req.NotContains(otherConn.events(), protocol.EventMessageNew)
}

func TestSendMessage_StoreFailureOnlyErrorsSender(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, aliceConn := f.enter(t, "alice", "r1")
	_, bobConn := f.enter(t, "bob", "r1")
	bobConn.reset()
	f.messages.EXPECT().Append(gomock.Any(), gomock.Any()).Return(domain.Message{}, domain.ErrPersistence)

	ev := protocol.SendMessage{Text: "hi"}
	ev.RoomID = "r1"
	f.orch.SendMessage(context.Background(), alice, ev)

	req.Equal(msgSendFailed, errorMessage(t, aliceConn.last()))
	req.Empty(bobConn.events())
}

func TestSendMessage_DisconnectDuringStoreStillReachesPeers(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, _ := f.enter(t, "alice", "r1")
	_, bobConn := f.enter(t, "bob", "r1")
	bobConn.reset()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.messages.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
		func(sctx context.Context, m domain.Message) (domain.Message, error) {
			cancel()
			f.orch.OnDisconnect(alice.SID())
			req.NoError(sctx.Err())
			m.ID = "m1"
			m.CreatedAt = time.Now().UTC()
			return m, nil
		})

	f.orch.HandleFrame(ctx, alice.SID(),
		frame(t, protocol.EventMessageSend, map[string]any{"roomId": "r1", "text": "bye"}))

	req.Equal([]string{protocol.EventMessageNew}, bobConn.events())
	req.False(f.orch.joined(alice, "r1"))
}

func TestSendMessage_EmptyTextRejected(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, aliceConn := f.enter(t, "alice", "r1")

	f.orch.HandleFrame(context.Background(), alice.SID(),
		frame(t, protocol.EventMessageSend, map[string]any{"roomId": "r1", "text": "   "}))

	req.Contains(errorMessage(t, aliceConn.last()), msgSendFailed)
}

func TestTyping_NotEchoed(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, aliceConn := f.enter(t, "alice", "r1")
	_, bobConn := f.enter(t, "bob", "r1")
	aliceConn.reset()

	f.orch.HandleFrame(context.Background(), alice.SID(), frame(t, protocol.EventTypingStart, map[string]string{"roomId": "r1"}))
	f.orch.HandleFrame(context.Background(), alice.SID(), frame(t, protocol.EventTypingStop, map[string]string{"roomId": "r1"}))

	req.Empty(aliceConn.events())
	req.Equal([]string{protocol.EventTypingStart, protocol.EventTypingStop}, bobConn.events()[len(bobConn.events())-2:])
	var who domain.Identity
	req.NoError(json.Unmarshal(bobConn.last().Data, &who))
	req.Equal(identity("alice"), who)
}

func TestRoomEvent_RequiresJoin(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, aliceConn := f.admit(t, "alice")
	_, bobConn := f.enter(t, "bob", "r1")
	bobConn.reset()

	f.orch.HandleFrame(context.Background(), alice.SID(),
		frame(t, protocol.EventMessageSend, map[string]any{"roomId": "r1", "text": "sneaky"}))
	req.Equal(msgNotJoined, errorMessage(t, aliceConn.last()))

	f.orch.HandleFrame(context.Background(), alice.SID(),
		frame(t, protocol.EventWhiteboardDraw, map[string]any{"roomId": "r1", "elements": []int{1}}))
	req.Equal(msgWhiteboardFailed, errorMessage(t, aliceConn.last()))

	req.Empty(bobConn.events())
}

func TestVideo_LoadPersistsAfterRelay(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, aliceConn := f.enter(t, "alice", "r1")
	_, bobConn := f.enter(t, "bob", "r1")
	aliceConn.reset()

	f.sessions.EXPECT().LoadVideo(gomock.Any(), domain.RoomID("r1"), "https://v.example/x.mp4", identity("alice").ID).
		DoAndReturn(func(context.Context, domain.RoomID, string, domain.UserID) error {
			req.Equal(protocol.EventVideoLoadNew, bobConn.last().Event)
			return nil
		})

	f.orch.HandleFrame(context.Background(), alice.SID(),
		frame(t, protocol.EventVideoLoad, map[string]any{"roomId": "r1", "url": "https://v.example/x.mp4"}))

	req.Empty(aliceConn.events())
	var got protocol.VideoLoadNew
	req.NoError(json.Unmarshal(bobConn.last().Data, &got))
	req.Equal("https://v.example/x.mp4", got.URL)
}

func TestVideo_PauseStoreFailureKeepsRelay(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, aliceConn := f.enter(t, "alice", "r1")
	_, bobConn := f.enter(t, "bob", "r1")
	f.sessions.EXPECT().SetPlayback(gomock.Any(), domain.RoomID("r1"), false, 42.5, identity("alice").ID).
		Return(domain.ErrPersistence)

	f.orch.HandleFrame(context.Background(), alice.SID(),
		frame(t, protocol.EventVideoPause, map[string]any{"roomId": "r1", "position": 42.5}))

	req.Equal(protocol.EventVideoPauseNew, bobConn.last().Event)
	var pos protocol.Position
	req.NoError(json.Unmarshal(bobConn.last().Data, &pos))
	req.Equal(42.5, pos.Position)
	req.Equal(msgVideoFailed, errorMessage(t, aliceConn.last()))
}

func TestVideo_SeekIsRelayOnly(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, _ := f.enter(t, "alice", "r1")
	_, bobConn := f.enter(t, "bob", "r1")

	f.orch.HandleFrame(context.Background(), alice.SID(),
		frame(t, protocol.EventVideoSeek, map[string]any{"roomId": "r1", "position": 3}))

	req.Equal(protocol.EventVideoSeekNew, bobConn.last().Event)
}

func TestWhiteboard_RelaysToOthers(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, aliceConn := f.enter(t, "alice", "r1")
	_, bobConn := f.enter(t, "bob", "r1")
	aliceConn.reset()

	f.orch.HandleFrame(context.Background(), alice.SID(),
		frame(t, protocol.EventWhiteboardDraw, map[string]any{"roomId": "r1", "elements": []map[string]int{{"x": 1}}, "appState": map[string]string{"tool": "pen"}}))

	req.Empty(aliceConn.events())
	req.Equal(protocol.EventWhiteboardUpdate, bobConn.last().Event)
	var got protocol.WhiteboardUpdate
	req.NoError(json.Unmarshal(bobConn.last().Data, &got))
	req.JSONEq(`[{"x":1}]`, string(got.Elements))
	req.JSONEq(`{"tool":"pen"}`, string(got.AppState))
}

func TestDisconnect_RemovesFromGroups(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, _ := f.enter(t, "alice", "r1")
	bob, bobConn := f.enter(t, "bob", "r1")
	f.membership.EXPECT().IsMember(gomock.Any(), domain.RoomID("r2"), identity("alice").ID).Return(true, nil)
	f.orch.Join(context.Background(), alice, "r2", nil)

	f.orch.OnDisconnect(alice.SID())
	f.orch.OnDisconnect(alice.SID())

	req.False(f.orch.joined(alice, "r1"))
	_, r2 := f.orch.Rooms.Get("r2")
	req.False(r2)
	req.Zero(len(f.orch.Registry.RoomsOf(alice.SID())))

	bobConn.reset()
	f.orch.HandleFrame(context.Background(), bob.SID(), frame(t, protocol.EventTypingStart, map[string]string{"roomId": "r1"}))
	req.Empty(bobConn.events())

	f.orch.HandleFrame(context.Background(), alice.SID(), frame(t, protocol.EventTypingStart, map[string]string{"roomId": "r1"}))
	req.Equal(1, f.orch.Registry.Count())
}

func TestDeliver_SlowMemberKicked(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, _ := f.enter(t, "alice", "r1")
	slow, slowConn := f.enter(t, "slow", "r1")
	slowConn.mu.Lock()
	slowConn.full = true
	slowConn.mu.Unlock()

	f.orch.HandleFrame(context.Background(), alice.SID(), frame(t, protocol.EventTypingStart, map[string]string{"roomId": "r1"}))

	_, bound := f.orch.Registry.GetSession(slow.SID())
	req.False(bound)
	req.True(slowConn.closed)
	req.True(f.orch.joined(alice, "r1"))
}

func TestDeliver_DropPolicyKeepsSlowMember(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	policy, err := app.NewPolicy("drop")
	req.NoError(err)
	f.orch.Policy = policy
	alice, _ := f.enter(t, "alice", "r1")
	slow, slowConn := f.enter(t, "slow", "r1")
	slowConn.mu.Lock()
	slowConn.full = true
	slowConn.mu.Unlock()

	f.orch.HandleFrame(context.Background(), alice.SID(), frame(t, protocol.EventTypingStart, map[string]string{"roomId": "r1"}))

	_, bound := f.orch.Registry.GetSession(slow.SID())
	req.True(bound)
	req.False(slowConn.closed)
	req.True(f.orch.joined(slow, "r1"))
}

func TestRequireJoined(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, _ := f.enter(t, "alice", "r1")

	req.NoError(f.orch.requireJoined(alice, "r1"))
	req.ErrorIs(f.orch.requireJoined(alice, "r2"), domain.ErrNotJoined)
}

func TestEvictRoom(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, aliceConn := f.enter(t, "alice", "r1")

	f.orch.EvictRoom("r1")

	req.False(f.orch.joined(alice, "r1"))
	req.Empty(f.orch.Registry.RoomsOf(alice.SID()))
	req.False(aliceConn.closed)
}

func TestHandleFrame_BadInput(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice, conn := f.admit(t, "alice")

	f.orch.HandleFrame(context.Background(), alice.SID(), []byte("{"))
	req.Equal("Invalid event.", errorMessage(t, conn.last()))

	f.orch.HandleFrame(context.Background(), alice.SID(), frame(t, "dance", map[string]string{}))
	req.Equal("Unknown event.", errorMessage(t, conn.last()))

	f.orch.HandleFrame(context.Background(), alice.SID(), frame(t, protocol.EventAuth, map[string]string{"token": "x"}))
	req.Equal(msgAlreadyAuthorized, errorMessage(t, conn.last()))
}
