package rooms

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/samber/lo"
)

// Entry is a stored message with its author resolved.
type Entry struct {
	Message domain.Message
	Author  domain.Identity
}

// History pages backwards from before, oldest first within the page.
func (s *Service) History(ctx context.Context, by domain.UserID, id domain.RoomID, before time.Time, limit int) ([]Entry, error) {
	if _, err := s.member(ctx, by, id); err != nil {
		return nil, err
	}
	msgs, err := s.Stores.Messages.History(ctx, id, before, limit)
	if err != nil {
		return nil, err
	}
	authors, err := s.Stores.Users.Identities(ctx, lo.Map(msgs, func(m domain.Message, _ int) domain.UserID { return m.UserID }))
	if err != nil {
		return nil, err
	}
	return lo.Map(msgs, func(m domain.Message, _ int) Entry {
		author, ok := authors[m.UserID]
		if !ok {
			author = domain.Identity{ID: m.UserID}
		}
		return Entry{Message: m, Author: author}
	}), nil
}

// Video returns the room's playback snapshot, nil when nothing was loaded yet.
func (s *Service) Video(ctx context.Context, by domain.UserID, id domain.RoomID) (*domain.VideoSession, error) {
	if _, err := s.member(ctx, by, id); err != nil {
		return nil, err
	}
	v, err := s.Stores.Sessions.Video(ctx, id)
	if isNotFound(err) {
		return nil, nil
	}
	return v, err
}

// Board returns the stored whiteboard document, nil when none was saved.
func (s *Service) Board(ctx context.Context, by domain.UserID, id domain.RoomID) (json.RawMessage, error) {
	if _, err := s.member(ctx, by, id); err != nil {
		return nil, err
	}
	wb, err := s.Stores.Sessions.Whiteboard(ctx, id)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wb.Data, nil
}

func (s *Service) SaveBoard(ctx context.Context, by domain.UserID, id domain.RoomID, data json.RawMessage) error {
	if _, err := s.member(ctx, by, id); err != nil {
		return err
	}
	return s.Stores.Sessions.SaveWhiteboard(ctx, id, data, by)
}
