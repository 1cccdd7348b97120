package rooms

import (
	"context"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/notify"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// SendReminders mails assignees of tasks due within TaskLead and the members
// of rooms whose events start within EventLead. Each item is reminded once.
// It returns the number of mails handed to the mailer.
func (s *Service) SendReminders(ctx context.Context, now time.Time) (int, error) {
	rooms := map[domain.RoomID]*domain.Room{}
	room := func(id domain.RoomID) (*domain.Room, bool) {
		if r, ok := rooms[id]; ok {
			return r, true
		}
		r, err := s.Stores.Rooms.ByID(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("module", "reminders").Str("room", string(id)).Msg("room not loaded")
			return nil, false
		}
		rooms[id] = r
		return r, true
	}

	sent := 0
	tasks, err := s.Stores.Tasks.DueBetween(ctx, now, now.Add(s.TaskLead))
	if err != nil {
		return sent, err
	}
	for _, t := range tasks {
		r, ok := room(t.RoomID)
		if !ok {
			continue
		}
		assignee, err := s.Stores.Users.ByID(ctx, t.AssigneeID)
		if err != nil {
			log.Warn().Err(err).Str("module", "reminders").Str("task", string(t.ID)).Msg("assignee not loaded")
			continue
		}
		s.send(ctx, notify.TaskDueMail(assignee.Email, t.Title, r.Name))
		sent++
		if err := s.Stores.Tasks.MarkReminded(ctx, t.ID, now); err != nil {
			return sent, err
		}
	}

	events, err := s.Stores.Events.StartingBetween(ctx, now, now.Add(s.EventLead))
	if err != nil {
		return sent, err
	}
	for _, e := range events {
		r, ok := room(e.RoomID)
		if !ok {
			continue
		}
		members, err := s.Stores.Users.ByIDs(ctx, r.Members)
		if err != nil {
			log.Warn().Err(err).Str("module", "reminders").Str("event", string(e.ID)).Msg("members not loaded")
			continue
		}
		lo.ForEach(members, func(u *domain.User, _ int) {
			s.send(ctx, notify.EventSoonMail(u.Email, e.Title, r.Name))
		})
		sent += len(members)
		if err := s.Stores.Events.MarkReminded(ctx, e.ID, now); err != nil {
			return sent, err
		}
	}
	return sent, nil
}
