package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskReminderLead is how long before DueAt the assignee is mailed.
const TaskReminderLead = 5 * time.Minute

type TaskID string

type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskDone:
		return true
	}
	return false
}

type Task struct {
	ID          TaskID
	RoomID      RoomID
	Title       string
	Description string
	Status      TaskStatus
	AssigneeID  UserID
	DueAt       *time.Time
	RemindedAt  *time.Time
	CreatedBy   UserID
	UpdatedBy   UserID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewTask(room RoomID, title, description string, by UserID) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTaskTitleEmpty
	}
	now := time.Now().UTC()
	return &Task{
		ID:          TaskID(uuid.NewString()),
		RoomID:      room,
		Title:       title,
		Description: description,
		Status:      TaskPending,
		CreatedBy:   by,
		UpdatedBy:   by,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
