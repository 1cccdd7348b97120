package rooms

import (
	"context"
	"strings"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
)

type EventInput struct {
	Title       string
	Description string
	StartAt     time.Time
	EndAt       time.Time
}

type EventPatch struct {
	Title       *string
	Description *string
	StartAt     *time.Time
	EndAt       *time.Time
}

// Events lists the room's events by start time, optionally within [from, to].
func (s *Service) Events(ctx context.Context, by domain.UserID, id domain.RoomID, from, to time.Time) ([]*domain.Event, error) {
	if _, err := s.member(ctx, by, id); err != nil {
		return nil, err
	}
	return s.Stores.Events.ListByRoom(ctx, id, from, to)
}

func (s *Service) CreateEvent(ctx context.Context, by domain.UserID, id domain.RoomID, in EventInput) (*domain.Event, error) {
	if _, err := s.member(ctx, by, id); err != nil {
		return nil, err
	}
	event, err := domain.NewEvent(id, by, in.Title, in.Description, in.StartAt, in.EndAt)
	if err != nil {
		return nil, err
	}
	if err := s.Stores.Events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEvent is reserved to the event's creator.
func (s *Service) UpdateEvent(ctx context.Context, by domain.UserID, id domain.RoomID, eventID domain.EventID, p EventPatch) (*domain.Event, error) {
	if _, err := s.member(ctx, by, id); err != nil {
		return nil, err
	}
	event, err := s.Stores.Events.ByID(ctx, id, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != by {
		return nil, domain.ErrForbidden
	}
	if p.Title != nil {
		event.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		event.Description = *p.Description
	}
	if p.StartAt != nil || p.EndAt != nil {
		start, end := event.StartAt, event.EndAt
		if p.StartAt != nil {
			start = *p.StartAt
		}
		if p.EndAt != nil {
			end = *p.EndAt
		}
		if err := event.Reschedule(start, end); err != nil {
			return nil, err
		}
	}
	if err := event.Check(); err != nil {
		return nil, err
	}
	if err := s.Stores.Events.Save(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent is allowed to the creator and the room admin.
func (s *Service) DeleteEvent(ctx context.Context, by domain.UserID, id domain.RoomID, eventID domain.EventID) error {
	room, err := s.member(ctx, by, id)
	if err != nil {
		return err
	}
	event, err := s.Stores.Events.ByID(ctx, id, eventID)
	if err != nil {
		return err
	}
	if event.CreatedBy != by && !room.IsAdmin(by) {
		return domain.ErrForbidden
	}
	return s.Stores.Events.Delete(ctx, id, eventID)
}
