package core

import "github.com/dkeye/StudyHub/internal/domain"

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID   domain.UserID `json:"_id"`
	Name string        `json:"name"`
}

// RoomService is the live group of one room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	ID() domain.RoomID
	MemberCount() int
	MembersSnapshot() []MemberDTO
	HasMember(sid SessionID) bool

	AddMember(ms MemberSession)
	// RemoveMember reports whether the group is empty afterwards.
	RemoveMember(sid SessionID) bool
	// Broadcast sends data to every member except the one with sid except.
	// An empty except delivers to everyone.
	Broadcast(except SessionID, data Frame) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID `json:"roomId"`
	MemberCount int           `json:"memberCount"`
}

// RoomManager owns the set of live room groups of this process.
type RoomManager interface {
	Get(id domain.RoomID) (RoomService, bool)
	Join(id domain.RoomID, ms MemberSession) RoomService
	Leave(id domain.RoomID, sid SessionID)
	List() []RoomInfo
}
