package domain

import (
	"crypto/rand"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoomCodeLen       = 8
	roomCodeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	MaxRoomNameLen    = 120
	MaxRoomDescLen    = 2000
	RoomCodeMaxTries  = 10
	DefaultVisibility = VisibilityPrivate
)

type RoomID string

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

type Room struct {
	ID          RoomID
	Name        string
	Description string
	Visibility  Visibility
	Code        string
	AdminID     UserID
	Members     []UserID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRoom makes admin the first member. The code is assigned by storage.
func NewRoom(name, description string, visibility Visibility, admin UserID) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return nil, ErrRoomNameTooLong
	}
	if len(description) > MaxRoomDescLen {
		return nil, ErrRoomDescTooLong
	}
	if visibility == "" {
		visibility = DefaultVisibility
	}
	if !visibility.Valid() {
		return nil, ErrVisibilityInvalid
	}
	now := time.Now().UTC()
	return &Room{
		ID:          RoomID(uuid.NewString()),
		Name:        name,
		Description: description,
		Visibility:  visibility,
		AdminID:     admin,
		Members:     []UserID{admin},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (r *Room) IsMember(uid UserID) bool {
	return slices.Contains(r.Members, uid)
}

func (r *Room) IsAdmin(uid UserID) bool {
	return r.AdminID == uid
}

// CanView reports whether uid may read the room's public card.
func (r *Room) CanView(uid UserID) bool {
	return r.Visibility == VisibilityPublic || r.IsMember(uid)
}

// NewRoomCode returns a random join code over A-Z0-9.
func NewRoomCode() (string, error) {
	var b strings.Builder
	b.Grow(RoomCodeLen)
	size := big.NewInt(int64(len(roomCodeAlphabet)))
	for range RoomCodeLen {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(roomCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
