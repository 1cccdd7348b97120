package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/stretchr/testify/require"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func session(sid string) core.MemberSession {
	meta := domain.NewMember(domain.Identity{ID: domain.UserID("u-" + sid), Name: sid})
	return core.NewMemberSession(core.SessionID(sid), meta, nopConn{})
}

func TestRegistry_BindRoomsUnbind(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	canceled := false
	reg.Bind(session("a"), func() { canceled = true })

	req.True(reg.AddRoom("a", "r1"))
	req.True(reg.AddRoom("a", "r2"))
	req.True(reg.AddRoom("a", "r1"))
	req.Equal([]domain.RoomID{"r1", "r2"}, reg.RoomsOf("a"))
	req.False(reg.AddRoom("missing", "r1"))
	req.Equal(1, reg.Count())

	req.True(reg.Cancel("a"))
	req.True(canceled)

	rooms, ok := reg.Unbind("a")
	req.True(ok)
	req.Equal([]domain.RoomID{"r1", "r2"}, rooms)
	_, ok = reg.Unbind("a")
	req.False(ok)
	_, ok = reg.GetSession("a")
	req.False(ok)
	req.False(reg.Cancel("a"))
}

func TestRoomManager_JoinLeavePrunes(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager()

	room := m.Join("r1", session("a"))
	m.Join("r1", session("b"))
	req.Equal(2, room.MemberCount())
	req.Len(m.List(), 1)

	m.Leave("r1", "a")
	_, ok := m.Get("r1")
	req.True(ok)

	m.Leave("r1", "b")
	_, ok = m.Get("r1")
	req.False(ok)

	m.Leave("r1", "b")
	m.Leave("never", "x")
	req.Empty(m.List())
}

func TestRoomManager_ConcurrentJoinLeave(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := fmt.Sprintf("s%d", i)
			m.Join("r1", session(sid))
			if i%2 == 0 {
				m.Leave("r1", core.SessionID(sid))
			}
		}(i)
	}
	wg.Wait()

	room, ok := m.Get("r1")
	req.True(ok)
	req.Equal(25, room.MemberCount())
}

func TestPolicies(t *testing.T) {
	req := require.New(t)
	req.Equal(KickMember, SimplePolicy{}.OnBackPressure(nil, nil))
	req.Equal(DropFrame, TolerantPolicy{}.OnBackPressure(nil, nil))

	p, err := NewPolicy("kick")
	req.NoError(err)
	req.Equal(SimplePolicy{}, p)
	p, err = NewPolicy("drop")
	req.NoError(err)
	req.Equal(TolerantPolicy{}, p)
	_, err = NewPolicy("ignore")
	req.Error(err)
}
