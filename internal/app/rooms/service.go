// Package rooms holds the REST-side use cases around a study room:
// lifecycle, history, session snapshots, invitations, tasks, notes,
// events and their reminders.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/StudyHub/internal/config"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/notify"
	"github.com/dkeye/StudyHub/internal/storage"
	"github.com/rs/zerolog/log"
)

// Evictor drops the live group of a deleted room.
type Evictor interface {
	EvictRoom(room domain.RoomID)
}

type Service struct {
	Stores  *storage.Stores
	Mailer  notify.Mailer
	Evictor Evictor

	InviteTTL time.Duration
	ClientURL string
	TaskLead  time.Duration
	EventLead time.Duration
}

func NewService(stores *storage.Stores, mailer notify.Mailer, evictor Evictor, cfg config.InvitationsConfig) *Service {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = domain.InvitationTTL
	}
	return &Service{
		Stores:    stores,
		Mailer:    mailer,
		Evictor:   evictor,
		InviteTTL: ttl,
		ClientURL: cfg.ClientURL,
		TaskLead:  domain.TaskReminderLead,
		EventLead: domain.EventReminderLead,
	}
}

// ConfigureReminders overrides the reminder lead times; zero keeps the default.
func (s *Service) ConfigureReminders(cfg config.RemindersConfig) {
	if cfg.TaskLead > 0 {
		s.TaskLead = cfg.TaskLead
	}
	if cfg.EventLead > 0 {
		s.EventLead = cfg.EventLead
	}
}

type Page struct {
	Rooms []*domain.Room
	Total int64
	Page  int
	Pages int
}

// Patch carries the editable room fields; nil means unchanged.
type Patch struct {
	Name        *string
	Description *string
	Visibility  *domain.Visibility
}

func (s *Service) Create(ctx context.Context, by domain.UserID, name, description string, visibility domain.Visibility) (*domain.Room, error) {
	room, err := domain.NewRoom(name, description, visibility, by)
	if err != nil {
		return nil, err
	}
	if err := s.Stores.Rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	log.Info().Str("module", "rooms").Str("room", string(room.ID)).Str("user", string(by)).Msg("room created")
	return room, nil
}

// JoinByCode adds the caller to the room with that code. Joining twice is a no-op.
func (s *Service) JoinByCode(ctx context.Context, by domain.UserID, code string) (*domain.Room, error) {
	room, err := s.Stores.Rooms.ByCode(ctx, domain.NormalizeRoomCode(code))
	if err != nil {
		return nil, err
	}
	if !room.IsMember(by) {
		if err := s.Stores.Rooms.AddMember(ctx, room.ID, by); err != nil {
			return nil, err
		}
		log.Info().Str("module", "rooms").Str("room", string(room.ID)).Str("user", string(by)).Msg("joined by code")
	}
	return s.Stores.Rooms.ByID(ctx, room.ID)
}

func (s *Service) Mine(ctx context.Context, by domain.UserID, page, limit int) (Page, error) {
	page, limit = paging(page, limit, 20)
	rooms, total, err := s.Stores.Rooms.ListForUser(ctx, by, page, limit)
	if err != nil {
		return Page{}, err
	}
	return Page{Rooms: rooms, Total: total, Page: page, Pages: pageCount(total, limit)}, nil
}

// Get returns a public room to anyone and a private one to its members.
func (s *Service) Get(ctx context.Context, by domain.UserID, id domain.RoomID) (*domain.Room, error) {
	room, err := s.Stores.Rooms.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.CanView(by) {
		return nil, domain.ErrForbidden
	}
	return room, nil
}

func (s *Service) Update(ctx context.Context, by domain.UserID, id domain.RoomID, p Patch) (*domain.Room, error) {
	room, err := s.admin(ctx, by, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, domain.ErrRoomNameEmpty
		}
		if len(name) > domain.MaxRoomNameLen {
			return nil, domain.ErrRoomNameTooLong
		}
		room.Name = name
	}
	if p.Description != nil {
		if len(*p.Description) > domain.MaxRoomDescLen {
			return nil, domain.ErrRoomDescTooLong
		}
		room.Description = *p.Description
	}
	if p.Visibility != nil {
		if !p.Visibility.Valid() {
			return nil, domain.ErrVisibilityInvalid
		}
		room.Visibility = *p.Visibility
	}
	if err := s.Stores.Rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Delete removes the room with its content and drops its live group.
func (s *Service) Delete(ctx context.Context, by domain.UserID, id domain.RoomID) error {
	if _, err := s.admin(ctx, by, id); err != nil {
		return err
	}
	if err := s.Stores.Rooms.Delete(ctx, id); err != nil {
		return err
	}
	if s.Evictor != nil {
		s.Evictor.EvictRoom(id)
	}
	log.Info().Str("module", "rooms").Str("room", string(id)).Str("user", string(by)).Msg("room deleted")
	return nil
}

func (s *Service) RegenerateCode(ctx context.Context, by domain.UserID, id domain.RoomID) (string, error) {
	if _, err := s.admin(ctx, by, id); err != nil {
		return "", err
	}
	return s.Stores.Rooms.RegenerateCode(ctx, id)
}

// CheckMember fails with ErrForbidden unless by belongs to the room.
func (s *Service) CheckMember(ctx context.Context, by domain.UserID, id domain.RoomID) error {
	_, err := s.member(ctx, by, id)
	return err
}

// member loads the room and checks by belongs to it.
func (s *Service) member(ctx context.Context, by domain.UserID, id domain.RoomID) (*domain.Room, error) {
	room, err := s.Stores.Rooms.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.IsMember(by) {
		return nil, fmt.Errorf("%w: %w", domain.ErrForbidden, domain.ErrNotMember)
	}
	return room, nil
}

func (s *Service) admin(ctx context.Context, by domain.UserID, id domain.RoomID) (*domain.Room, error) {
	room, err := s.Stores.Rooms.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.IsAdmin(by) {
		return nil, domain.ErrForbidden
	}
	return room, nil
}

func (s *Service) send(ctx context.Context, m notify.Mail) {
	if s.Mailer == nil {
		return
	}
	if err := s.Mailer.Send(ctx, m); err != nil {
		log.Warn().Err(err).Str("module", "rooms").Str("to", m.To).Msg("mail not sent")
	}
}

func paging(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = def
	}
	return page, limit
}

func pageCount(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
