// Package domain contains entities and their invariants, no I/O.
package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxUserNameLen   = 64
	MinPasswordLen   = 6
	PasswordResetTTL = 15 * time.Minute
)

var (
	ErrUserNameTooLong = errors.New("name too long")
	ErrUserNameEmpty   = errors.New("name empty")
	ErrEmailInvalid    = errors.New("email invalid")
)

type UserID string

type User struct {
	ID           UserID
	Name         string
	Email        string
	PasswordHash string
	// ResetToken is set while a password reset is pending.
	ResetToken     string
	ResetExpiresAt *time.Time
	CreatedAt      time.Time
}

// Identity is the public view of a user, as peers see it.
type Identity struct {
	ID   UserID `json:"_id"`
	Name string `json:"name"`
}

// NewUser validates the name and email and assigns a fresh id.
func NewUser(name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrUserNameEmpty
	}
	if len(name) > MaxUserNameLen {
		return nil, ErrUserNameTooLong
	}
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrEmailInvalid
	}
	return &User{
		ID:        UserID(uuid.NewString()),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name}
}

// Rename validates and applies a new display name.
func (u *User) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrUserNameEmpty
	}
	if len(name) > MaxUserNameLen {
		return ErrUserNameTooLong
	}
	u.Name = name
	return nil
}

func (u *User) ChangeEmail(email string) error {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrEmailInvalid
	}
	u.Email = email
	return nil
}

// ResetUsable reports whether token matches a pending, unexpired reset.
func (u *User) ResetUsable(token string, now time.Time) bool {
	return u.ResetToken != "" && u.ResetToken == token && u.ResetExpiresAt != nil && now.Before(*u.ResetExpiresAt)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
