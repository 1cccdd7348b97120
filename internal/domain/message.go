package domain

import (
	"strings"
	"time"
)

const (
	DefaultMessageMaxLen = 4000
	DefaultHistoryLimit  = 30
	MaxHistoryLimit      = 100
)

type MessageID string

// Message is immutable once stored. CreatedAt is assigned by the server.
type Message struct {
	ID          MessageID
	RoomID      RoomID
	UserID      UserID
	Text        string
	Attachments []string
	CreatedAt   time.Time
}

// CheckMessageText trims text and enforces the length bounds.
func CheckMessageText(text string, maxLen int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrMessageEmpty
	}
	if maxLen > 0 && len([]rune(text)) > maxLen {
		return "", ErrMessageTooLong
	}
	return text, nil
}

// ClampHistoryLimit maps a requested page size onto [1, MaxHistoryLimit].
func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}
