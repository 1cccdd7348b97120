package core

import "github.com/dkeye/StudyHub/internal/domain"

// SessionID identifies one live connection. Unique across processes.
type SessionID string

// MemberSession binds an authenticated identity and its transport endpoint.
// This is what a room group stores and fans out to.
type MemberSession interface {
	SID() SessionID
	Meta() *domain.Member
	Signal() SignalConnection
}
