package rooms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
)

type TaskInput struct {
	Title       string
	Description string
	AssigneeID  domain.UserID
	DueAt       *time.Time
}

type TaskPatch struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	AssigneeID  *domain.UserID
	DueAt       *time.Time
}

func (s *Service) Tasks(ctx context.Context, by domain.UserID, id domain.RoomID) ([]*domain.Task, error) {
	if _, err := s.member(ctx, by, id); err != nil {
		return nil, err
	}
	return s.Stores.Tasks.ListByRoom(ctx, id)
}

func (s *Service) CreateTask(ctx context.Context, by domain.UserID, id domain.RoomID, in TaskInput) (*domain.Task, error) {
	room, err := s.member(ctx, by, id)
	if err != nil {
		return nil, err
	}
	if err := checkAssignee(room, in.AssigneeID); err != nil {
		return nil, err
	}
	task, err := domain.NewTask(id, in.Title, in.Description, by)
	if err != nil {
		return nil, err
	}
	task.AssigneeID = in.AssigneeID
	task.DueAt = utc(in.DueAt)
	if err := s.Stores.Tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) UpdateTask(ctx context.Context, by domain.UserID, id domain.RoomID, taskID domain.TaskID, p TaskPatch) (*domain.Task, error) {
	room, err := s.member(ctx, by, id)
	if err != nil {
		return nil, err
	}
	task, err := s.Stores.Tasks.ByID(ctx, id, taskID)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, domain.ErrTaskTitleEmpty
		}
		task.Title = title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, domain.ErrTaskStatusInvalid
		}
		task.Status = *p.Status
	}
	if p.AssigneeID != nil {
		if err := checkAssignee(room, *p.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = *p.AssigneeID
	}
	if p.DueAt != nil {
		task.DueAt = utc(p.DueAt)
		task.RemindedAt = nil
	}
	task.UpdatedBy = by
	if err := s.Stores.Tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) DeleteTask(ctx context.Context, by domain.UserID, id domain.RoomID, taskID domain.TaskID) error {
	if _, err := s.member(ctx, by, id); err != nil {
		return err
	}
	return s.Stores.Tasks.Delete(ctx, id, taskID)
}

// checkAssignee accepts an empty assignee or a member of room.
func checkAssignee(room *domain.Room, assignee domain.UserID) error {
	if assignee == "" || room.IsMember(assignee) {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrAssigneeNotMember, assignee)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
