package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
}

func (c *fakeConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errors.New("full")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func newSession(sid string, conn SignalConnection) MemberSession {
	meta := domain.NewMember(domain.Identity{ID: domain.UserID("u-" + sid), Name: sid})
	return NewMemberSession(SessionID(sid), meta, conn)
}

func TestRoom_BroadcastSkipsExcept(t *testing.T) {
	req := require.New(t)
	room := NewRoomService("r1")
	a, b := &fakeConn{}, &fakeConn{}
	room.AddMember(newSession("a", a))
	room.AddMember(newSession("b", b))

	res := room.Broadcast("a", Frame("x"))

	req.Equal(1, res.SendTo)
	req.Empty(res.Dropped)
	req.Equal(0, a.count())
	req.Equal(1, b.count())
}

func TestRoom_BroadcastEmptyExceptReachesEveryone(t *testing.T) {
	req := require.New(t)
	room := NewRoomService("r1")
	a, b := &fakeConn{}, &fakeConn{}
	room.AddMember(newSession("a", a))
	room.AddMember(newSession("b", b))

	res := room.Broadcast("", Frame("x"))

	req.Equal(2, res.SendTo)
	req.Equal(1, a.count())
	req.Equal(1, b.count())
}

func TestRoom_BroadcastReportsDropped(t *testing.T) {
	req := require.New(t)
	room := NewRoomService("r1")
	slow := &fakeConn{full: true}
	room.AddMember(newSession("a", &fakeConn{}))
	room.AddMember(newSession("slow", slow))

	res := room.Broadcast("", Frame("x"))

	req.Equal(1, res.SendTo)
	req.Len(res.Dropped, 1)
	req.Equal(SessionID("slow"), res.Dropped[0].SID())
}

func TestRoom_RemoveMember(t *testing.T) {
	req := require.New(t)
	room := NewRoomService("r1")
	a := &fakeConn{}
	room.AddMember(newSession("a", a))
	room.AddMember(newSession("b", &fakeConn{}))

	req.False(room.RemoveMember("a"))
	req.False(room.HasMember("a"))
	req.Equal(1, room.MemberCount())

	room.Broadcast("", Frame("x"))
	req.Equal(0, a.count())

	req.True(room.RemoveMember("b"))
	req.True(room.RemoveMember("missing"))
}

func TestRoom_MembersSnapshot(t *testing.T) {
	req := require.New(t)
	room := NewRoomService("r1")
	room.AddMember(newSession("a", &fakeConn{}))

	snap := room.MembersSnapshot()
	req.Equal([]MemberDTO{{ID: "u-a", Name: "a"}}, snap)
}
