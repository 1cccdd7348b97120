package storage

import (
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
)

type userRecord struct {
	ID             string `gorm:"primarykey;size:36"`
	Name           string `gorm:"size:64;not null"`
	Email          string `gorm:"size:320;uniqueIndex;not null"`
	PasswordHash   string `gorm:"not null"`
	ResetToken     string `gorm:"size:64;index"`
	ResetExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (userRecord) TableName() string { return "users" }

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:             domain.UserID(r.ID),
		Name:           r.Name,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		ResetToken:     r.ResetToken,
		ResetExpiresAt: r.ResetExpiresAt,
		CreatedAt:      r.CreatedAt,
	}
}

func newUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:             string(u.ID),
		Name:           u.Name,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		ResetToken:     u.ResetToken,
		ResetExpiresAt: u.ResetExpiresAt,
		CreatedAt:      u.CreatedAt,
	}
}

type roomRecord struct {
	ID          string `gorm:"primarykey;size:36"`
	Name        string `gorm:"size:120;not null"`
	Description string `gorm:"size:2000"`
	Visibility  string `gorm:"size:16;not null"`
	Code        string `gorm:"size:8;uniqueIndex;not null"`
	AdminID     string `gorm:"size:36;index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time `gorm:"index"`
}

func (roomRecord) TableName() string { return "rooms" }

func (r roomRecord) toDomain(members []domain.UserID) *domain.Room {
	return &domain.Room{
		ID:          domain.RoomID(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Visibility:  domain.Visibility(r.Visibility),
		Code:        r.Code,
		AdminID:     domain.UserID(r.AdminID),
		Members:     members,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type roomMemberRecord struct {
	RoomID    string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time
}

func (roomMemberRecord) TableName() string { return "room_members" }

type messageRecord struct {
	ID          string    `gorm:"primarykey;size:36"`
	RoomID      string    `gorm:"size:36;not null;index:idx_messages_room_created,priority:1"`
	UserID      string    `gorm:"size:36;not null"`
	Text        string    `gorm:"not null"`
	Attachments []string  `gorm:"serializer:json"`
	CreatedAt   time.Time `gorm:"index:idx_messages_room_created,priority:2"`
}

func (messageRecord) TableName() string { return "messages" }

func (r messageRecord) toDomain() domain.Message {
	return domain.Message{
		ID:          domain.MessageID(r.ID),
		RoomID:      domain.RoomID(r.RoomID),
		UserID:      domain.UserID(r.UserID),
		Text:        r.Text,
		Attachments: r.Attachments,
		CreatedAt:   r.CreatedAt,
	}
}

type videoSessionRecord struct {
	RoomID          string `gorm:"primarykey;size:36"`
	URL             string `gorm:"not null"`
	LastPositionSec float64
	IsPlaying       bool
	UpdatedBy       string `gorm:"size:36"`
	UpdatedAt       time.Time
}

func (videoSessionRecord) TableName() string { return "video_sessions" }

func (r videoSessionRecord) toDomain() *domain.VideoSession {
	return &domain.VideoSession{
		RoomID:    domain.RoomID(r.RoomID),
		URL:       r.URL,
		Position:  r.LastPositionSec,
		Playing:   r.IsPlaying,
		UpdatedBy: domain.UserID(r.UpdatedBy),
		UpdatedAt: r.UpdatedAt,
	}
}

type whiteboardRecord struct {
	RoomID    string `gorm:"primarykey;size:36"`
	Data      string
	UpdatedBy string `gorm:"size:36"`
	UpdatedAt time.Time
}

func (whiteboardRecord) TableName() string { return "whiteboards" }

type invitationRecord struct {
	ID         string `gorm:"primarykey;size:36"`
	RoomID     string `gorm:"size:36;not null;index"`
	InviterID  string `gorm:"size:36;not null"`
	Email      string `gorm:"size:320;not null;index"`
	Role       string `gorm:"size:32"`
	Token      string `gorm:"size:64;uniqueIndex;not null"`
	Status     string `gorm:"size:16;not null;index"`
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (invitationRecord) TableName() string { return "invitations" }

func newInvitationRecord(i *domain.Invitation) invitationRecord {
	return invitationRecord{
		ID:         string(i.ID),
		RoomID:     string(i.RoomID),
		InviterID:  string(i.InviterID),
		Email:      i.Email,
		Role:       i.Role,
		Token:      i.Token,
		Status:     string(i.Status),
		ExpiresAt:  i.ExpiresAt,
		AcceptedAt: i.AcceptedAt,
		CreatedAt:  i.CreatedAt,
	}
}

func (r invitationRecord) toDomain() *domain.Invitation {
	return &domain.Invitation{
		ID:         domain.InvitationID(r.ID),
		RoomID:     domain.RoomID(r.RoomID),
		InviterID:  domain.UserID(r.InviterID),
		Email:      r.Email,
		Role:       r.Role,
		Token:      r.Token,
		Status:     domain.InvitationStatus(r.Status),
		ExpiresAt:  r.ExpiresAt,
		AcceptedAt: r.AcceptedAt,
		CreatedAt:  r.CreatedAt,
	}
}

type taskRecord struct {
	ID          string `gorm:"primarykey;size:36"`
	RoomID      string `gorm:"size:36;not null;index"`
	Title       string `gorm:"size:200;not null"`
	Description string
	Status      string `gorm:"size:16;not null"`
	AssigneeID  string `gorm:"size:36"`
	DueAt       *time.Time `gorm:"index"`
	RemindedAt  *time.Time
	CreatedBy   string `gorm:"size:36"`
	UpdatedBy   string `gorm:"size:36"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (taskRecord) TableName() string { return "tasks" }

func newTaskRecord(t *domain.Task) taskRecord {
	return taskRecord{
		ID:          string(t.ID),
		RoomID:      string(t.RoomID),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		AssigneeID:  string(t.AssigneeID),
		DueAt:       t.DueAt,
		RemindedAt:  t.RemindedAt,
		CreatedBy:   string(t.CreatedBy),
		UpdatedBy:   string(t.UpdatedBy),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r taskRecord) toDomain() *domain.Task {
	return &domain.Task{
		ID:          domain.TaskID(r.ID),
		RoomID:      domain.RoomID(r.RoomID),
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		AssigneeID:  domain.UserID(r.AssigneeID),
		DueAt:       r.DueAt,
		RemindedAt:  r.RemindedAt,
		CreatedBy:   domain.UserID(r.CreatedBy),
		UpdatedBy:   domain.UserID(r.UpdatedBy),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type noteRecord struct {
	ID          string    `gorm:"primarykey;size:36"`
	RoomID      string    `gorm:"size:36;not null;index:idx_notes_room_created,priority:1"`
	AuthorID    string    `gorm:"size:36;not null"`
	Title       string    `gorm:"size:200;not null"`
	Content     string    `gorm:"not null"`
	Attachments []string  `gorm:"serializer:json"`
	CreatedAt   time.Time `gorm:"index:idx_notes_room_created,priority:2"`
	UpdatedAt   time.Time
}

func (noteRecord) TableName() string { return "notes" }

func newNoteRecord(n *domain.Note) noteRecord {
	return noteRecord{
		ID:          string(n.ID),
		RoomID:      string(n.RoomID),
		AuthorID:    string(n.AuthorID),
		Title:       n.Title,
		Content:     n.Content,
		Attachments: n.Attachments,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func (r noteRecord) toDomain() *domain.Note {
	attachments := r.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return &domain.Note{
		ID:          domain.NoteID(r.ID),
		RoomID:      domain.RoomID(r.RoomID),
		AuthorID:    domain.UserID(r.AuthorID),
		Title:       r.Title,
		Content:     r.Content,
		Attachments: attachments,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type commentRecord struct {
	ID        string    `gorm:"primarykey;size:36"`
	NoteID    string    `gorm:"size:36;not null;index:idx_comments_note_created,priority:1"`
	RoomID    string    `gorm:"size:36;not null;index"`
	AuthorID  string    `gorm:"size:36;not null"`
	Text      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index:idx_comments_note_created,priority:2"`
}

func (commentRecord) TableName() string { return "comments" }

func (r commentRecord) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        domain.CommentID(r.ID),
		NoteID:    domain.NoteID(r.NoteID),
		RoomID:    domain.RoomID(r.RoomID),
		AuthorID:  domain.UserID(r.AuthorID),
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}

type eventRecord struct {
	ID          string    `gorm:"primarykey;size:36"`
	RoomID      string    `gorm:"size:36;not null;index:idx_events_room_start,priority:1"`
	Title       string    `gorm:"size:200;not null"`
	Description string
	StartAt     time.Time `gorm:"not null;index:idx_events_room_start,priority:2;index"`
	EndAt       time.Time `gorm:"not null"`
	CreatedBy   string    `gorm:"size:36;not null"`
	RemindedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (eventRecord) TableName() string { return "events" }

func newEventRecord(e *domain.Event) eventRecord {
	return eventRecord{
		ID:          string(e.ID),
		RoomID:      string(e.RoomID),
		Title:       e.Title,
		Description: e.Description,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
		CreatedBy:   string(e.CreatedBy),
		RemindedAt:  e.RemindedAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (r eventRecord) toDomain() *domain.Event {
	return &domain.Event{
		ID:          domain.EventID(r.ID),
		RoomID:      domain.RoomID(r.RoomID),
		Title:       r.Title,
		Description: r.Description,
		StartAt:     r.StartAt,
		EndAt:       r.EndAt,
		CreatedBy:   domain.UserID(r.CreatedBy),
		RemindedAt:  r.RemindedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
