package app

import (
	"sync"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomManagerImpl keeps the live room groups. The manager lock guards only the
// map; member sets are guarded by each room.
type RoomManagerImpl struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]core.RoomService
}

func NewRoomManager() *RoomManagerImpl {
	return &RoomManagerImpl{rooms: make(map[domain.RoomID]core.RoomService)}
}

func (f *RoomManagerImpl) Get(id domain.RoomID) (core.RoomService, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[id]
	return room, ok
}

// Join adds ms to the group of id, creating the group if needed.
// The member is added under the read lock so pruning cannot drop it.
func (f *RoomManagerImpl) Join(id domain.RoomID, ms core.MemberSession) core.RoomService {
	f.mu.RLock()
	room, ok := f.rooms[id]
	if ok {
		room.AddMember(ms)
		f.mu.RUnlock()
		return room
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok = f.rooms[id]; !ok {
		room = core.NewRoomService(id)
		f.rooms[id] = room
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room group created")
	}
	room.AddMember(ms)
	return room
}

// Leave removes sid from the group and drops the group once it is empty.
func (f *RoomManagerImpl) Leave(id domain.RoomID, sid core.SessionID) {
	room, ok := f.Get(id)
	if !ok {
		return
	}
	if empty := room.RemoveMember(sid); !empty {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.rooms[id]; ok && cur == room && cur.MemberCount() == 0 {
		delete(f.rooms, id)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room group dropped")
	}
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for id, r := range f.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: r.MemberCount()})
	}
	return out
}
