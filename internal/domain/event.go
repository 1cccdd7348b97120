package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxEventTitleLen  = 200
	EventReminderLead = 15 * time.Minute
)

type EventID string

// Event is a scheduled room session, e.g. an exam review.
type Event struct {
	ID          EventID
	RoomID      RoomID
	Title       string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	CreatedBy   UserID
	RemindedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewEvent(room RoomID, by UserID, title, description string, start, end time.Time) (*Event, error) {
	now := time.Now().UTC()
	e := &Event{
		ID:          EventID(uuid.NewString()),
		RoomID:      room,
		Title:       strings.TrimSpace(title),
		Description: description,
		StartAt:     start.UTC(),
		EndAt:       end.UTC(),
		CreatedBy:   by,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Check(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Event) Check() error {
	switch {
	case e.Title == "":
		return ErrEventTitleEmpty
	case len(e.Title) > MaxEventTitleLen:
		return ErrEventTitleTooLong
	case e.StartAt.IsZero() || e.EndAt.Before(e.StartAt):
		return ErrEventRange
	}
	return nil
}

// Reschedule moves the event and re-arms its reminder.
func (e *Event) Reschedule(start, end time.Time) error {
	e.StartAt, e.EndAt = start.UTC(), end.UTC()
	e.RemindedAt = nil
	return e.Check()
}
