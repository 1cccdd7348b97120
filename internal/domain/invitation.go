package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

const (
	InvitationTTL       = 7 * 24 * time.Hour
	InvitationResendTTL = 3 * 24 * time.Hour
	invitationTokenLen  = 24
)

type InvitationID string

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

type Invitation struct {
	ID         InvitationID
	RoomID     RoomID
	InviterID  UserID
	Email      string
	Role       string
	Token      string
	Status     InvitationStatus
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	CreatedAt  time.Time
}

func NewInvitation(room RoomID, inviter UserID, email, role string, ttl time.Duration) (*Invitation, error) {
	token, err := NewInvitationToken()
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = "member"
	}
	now := time.Now().UTC()
	return &Invitation{
		ID:        InvitationID(uuid.NewString()),
		RoomID:    room,
		InviterID: inviter,
		Email:     NormalizeEmail(email),
		Role:      role,
		Token:     token,
		Status:    InvitationPending,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// Usable reports whether the invitation can still be accepted at now.
func (i *Invitation) Usable(now time.Time) bool {
	return i.Status == InvitationPending && now.Before(i.ExpiresAt)
}

// Renew issues a fresh token and puts the invitation back to pending.
func (i *Invitation) Renew(ttl time.Duration) error {
	token, err := NewInvitationToken()
	if err != nil {
		return err
	}
	i.Token = token
	i.Status = InvitationPending
	i.ExpiresAt = time.Now().UTC().Add(ttl)
	return nil
}

func (i *Invitation) Accept(now time.Time) {
	i.Status = InvitationAccepted
	i.AcceptedAt = &now
}

// NewResetToken returns a random password reset token.
func NewResetToken() (string, error) {
	return NewInvitationToken()
}

func NewInvitationToken() (string, error) {
	b := make([]byte, invitationTokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
