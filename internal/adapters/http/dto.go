package http

import (
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/samber/lo"
)

type userResponse struct {
	ID    domain.UserID `json:"_id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Token string        `json:"token,omitempty"`
}

func newUserResponse(u *domain.User, token string) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Token: token}
}

type roomResponse struct {
	ID          domain.RoomID     `json:"_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Visibility  domain.Visibility `json:"visibility"`
	Code        string            `json:"code,omitempty"`
	Admin       domain.UserID     `json:"admin"`
	Members     []domain.UserID   `json:"members"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// newRoomResponse hides the join code from non-members.
func newRoomResponse(r *domain.Room, viewer domain.UserID) roomResponse {
	out := roomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Visibility:  r.Visibility,
		Admin:       r.AdminID,
		Members:     r.Members,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.IsMember(viewer) {
		out.Code = r.Code
	}
	if out.Members == nil {
		out.Members = []domain.UserID{}
	}
	return out
}

func newRoomResponses(rs []*domain.Room, viewer domain.UserID) []roomResponse {
	return lo.Map(rs, func(r *domain.Room, _ int) roomResponse { return newRoomResponse(r, viewer) })
}

type videoResponse struct {
	URL       string        `json:"url"`
	Position  float64       `json:"position"`
	Playing   bool          `json:"playing"`
	UpdatedBy domain.UserID `json:"updatedBy"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type invitationResponse struct {
	ID         domain.InvitationID     `json:"_id"`
	RoomID     domain.RoomID           `json:"roomId"`
	Email      string                  `json:"email"`
	Role       string                  `json:"role"`
	Status     domain.InvitationStatus `json:"status"`
	ExpiresAt  time.Time               `json:"expiresAt"`
	AcceptedAt *time.Time              `json:"acceptedAt,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
}

func newInvitationResponse(i *domain.Invitation) invitationResponse {
	return invitationResponse{
		ID:         i.ID,
		RoomID:     i.RoomID,
		Email:      i.Email,
		Role:       i.Role,
		Status:     i.Status,
		ExpiresAt:  i.ExpiresAt,
		AcceptedAt: i.AcceptedAt,
		CreatedAt:  i.CreatedAt,
	}
}

type taskResponse struct {
	ID          domain.TaskID     `json:"_id"`
	RoomID      domain.RoomID     `json:"roomId"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	AssigneeID  domain.UserID     `json:"assigneeId,omitempty"`
	DueAt       *time.Time        `json:"dueAt,omitempty"`
	CreatedBy   domain.UserID     `json:"createdBy"`
	UpdatedBy   domain.UserID     `json:"updatedBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func newTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		RoomID:      t.RoomID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		AssigneeID:  t.AssigneeID,
		DueAt:       t.DueAt,
		CreatedBy:   t.CreatedBy,
		UpdatedBy:   t.UpdatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type noteResponse struct {
	ID          domain.NoteID `json:"_id"`
	RoomID      domain.RoomID `json:"roomId"`
	AuthorID    domain.UserID `json:"author"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Attachments []string      `json:"attachments"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func newNoteResponse(n *domain.Note) noteResponse {
	return noteResponse{
		ID:          n.ID,
		RoomID:      n.RoomID,
		AuthorID:    n.AuthorID,
		Title:       n.Title,
		Content:     n.Content,
		Attachments: lo.Ternary(n.Attachments == nil, []string{}, n.Attachments),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

type commentResponse struct {
	ID        domain.CommentID `json:"_id"`
	NoteID    domain.NoteID    `json:"noteId"`
	AuthorID  domain.UserID    `json:"author"`
	Text      string           `json:"text"`
	CreatedAt time.Time        `json:"createdAt"`
}

func newCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{ID: c.ID, NoteID: c.NoteID, AuthorID: c.AuthorID, Text: c.Text, CreatedAt: c.CreatedAt}
}

type eventResponse struct {
	ID          domain.EventID `json:"_id"`
	RoomID      domain.RoomID  `json:"roomId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartAt     time.Time      `json:"startAt"`
	EndAt       time.Time      `json:"endAt"`
	CreatedBy   domain.UserID  `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func newEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		RoomID:      e.RoomID,
		Title:       e.Title,
		Description: e.Description,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
