package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	MaxNoteTitleLen   = 200
	MaxCommentLen     = 2000
	DefaultNotesLimit = 10
)

type NoteID string

type CommentID string

// Note is a shared study note inside a room. Only its author edits it.
type Note struct {
	ID          NoteID
	RoomID      RoomID
	AuthorID    UserID
	Title       string
	Content     string
	Attachments []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewNote(room RoomID, author UserID, title, content string, attachments []string) (*Note, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if err := checkNote(title, content); err != nil {
		return nil, err
	}
	if attachments == nil {
		attachments = []string{}
	}
	now := time.Now().UTC()
	return &Note{
		ID:          NoteID(uuid.NewString()),
		RoomID:      room,
		AuthorID:    author,
		Title:       title,
		Content:     content,
		Attachments: attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func checkNote(title, content string) error {
	if title == "" {
		return ErrNoteTitleEmpty
	}
	if len(title) > MaxNoteTitleLen {
		return ErrNoteTitleTooLong
	}
	if content == "" {
		return ErrNoteContentEmpty
	}
	return nil
}

// Edit applies non-empty fields, keeping the rest.
func (n *Note) Edit(title, content string, attachments []string) error {
	if t := strings.TrimSpace(title); t != "" {
		n.Title = t
	}
	if c := strings.TrimSpace(content); c != "" {
		n.Content = c
	}
	if attachments != nil {
		n.Attachments = attachments
	}
	return checkNote(n.Title, n.Content)
}

// Comment belongs to a note. RoomID is denormalized for room-wide cleanup.
type Comment struct {
	ID        CommentID
	NoteID    NoteID
	RoomID    RoomID
	AuthorID  UserID
	Text      string
	CreatedAt time.Time
}

func NewComment(note *Note, author UserID, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentEmpty
	}
	if len([]rune(text)) > MaxCommentLen {
		return nil, ErrCommentTooLong
	}
	return &Comment{
		ID:        CommentID(uuid.NewString()),
		NoteID:    note.ID,
		RoomID:    note.RoomID,
		AuthorID:  author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}, nil
}

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// Mentions returns the distinct lower-cased names written as @name in text.
func Mentions(text string) []string {
	names := lo.Map(mentionPattern.FindAllStringSubmatch(text, -1), func(m []string, _ int) string {
		return strings.ToLower(m[1])
	})
	return lo.Uniq(names)
}
