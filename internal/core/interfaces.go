package core

import (
	"context"

	"github.com/dkeye/StudyHub/internal/domain"
)

//go:generate mockgen -destination=../mocks/mock_collaborators.go -package=mocks github.com/dkeye/StudyHub/internal/core IdentityResolver,MembershipOracle,MessageStore,SessionStateStore,Broadcaster

// IdentityResolver turns a bearer credential into a user identity.
type IdentityResolver interface {
	Authenticate(ctx context.Context, credential string) (domain.Identity, error)
}

// MembershipOracle answers whether a user may act in a room.
type MembershipOracle interface {
	IsMember(ctx context.Context, room domain.RoomID, user domain.UserID) (bool, error)
}

// MessageStore is the append-only chat log.
type MessageStore interface {
	// Append assigns ID and CreatedAt and returns the stored message.
	Append(ctx context.Context, msg domain.Message) (domain.Message, error)
}

// SessionStateStore keeps the per-room video playback snapshot.
type SessionStateStore interface {
	// LoadVideo upserts the room's session with a new url, paused at zero.
	LoadVideo(ctx context.Context, room domain.RoomID, url string, by domain.UserID) error
	// SetPlayback updates an existing session. A room without one is left alone.
	SetPlayback(ctx context.Context, room domain.RoomID, playing bool, position float64, by domain.UserID) error
}

// Fanout delivers a frame to the members of a room connected to this process.
type Fanout interface {
	Deliver(room domain.RoomID, except SessionID, data Frame)
}

// Broadcaster publishes a frame to a room across every process serving it.
type Broadcaster interface {
	Publish(ctx context.Context, room domain.RoomID, except SessionID, data Frame) error
	Close() error
}
