package rooms

import (
	"context"
	"strings"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/notify"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type NoteInput struct {
	Title       string
	Content     string
	Attachments []string
}

type NotePage struct {
	Notes []*domain.Note
	Total int64
	Page  int
	Pages int
}

type CommentPage struct {
	Comments []*domain.Comment
	Total    int64
	Page     int
	Pages    int
}

func (s *Service) Notes(ctx context.Context, by domain.UserID, id domain.RoomID, search string, page, limit int) (NotePage, error) {
	if _, err := s.member(ctx, by, id); err != nil {
		return NotePage{}, err
	}
	page, limit = paging(page, limit, domain.DefaultNotesLimit)
	notes, total, err := s.Stores.Notes.ListByRoom(ctx, id, search, page, limit)
	if err != nil {
		return NotePage{}, err
	}
	return NotePage{Notes: notes, Total: total, Page: page, Pages: pageCount(total, limit)}, nil
}

func (s *Service) Note(ctx context.Context, by domain.UserID, id domain.RoomID, noteID domain.NoteID) (*domain.Note, error) {
	if _, err := s.member(ctx, by, id); err != nil {
		return nil, err
	}
	return s.Stores.Notes.ByID(ctx, id, noteID)
}

func (s *Service) CreateNote(ctx context.Context, by domain.UserID, id domain.RoomID, in NoteInput) (*domain.Note, error) {
	if _, err := s.member(ctx, by, id); err != nil {
		return nil, err
	}
	note, err := domain.NewNote(id, by, in.Title, in.Content, in.Attachments)
	if err != nil {
		return nil, err
	}
	if err := s.Stores.Notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateNote is reserved to the note's author. Empty fields are kept.
func (s *Service) UpdateNote(ctx context.Context, by domain.UserID, id domain.RoomID, noteID domain.NoteID, in NoteInput) (*domain.Note, error) {
	if _, err := s.member(ctx, by, id); err != nil {
		return nil, err
	}
	note, err := s.Stores.Notes.ByID(ctx, id, noteID)
	if err != nil {
		return nil, err
	}
	if note.AuthorID != by {
		return nil, domain.ErrForbidden
	}
	if err := note.Edit(in.Title, in.Content, in.Attachments); err != nil {
		return nil, err
	}
	if err := s.Stores.Notes.Save(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote is allowed to the author and the room admin.
func (s *Service) DeleteNote(ctx context.Context, by domain.UserID, id domain.RoomID, noteID domain.NoteID) error {
	room, err := s.member(ctx, by, id)
	if err != nil {
		return err
	}
	note, err := s.Stores.Notes.ByID(ctx, id, noteID)
	if err != nil {
		return err
	}
	if note.AuthorID != by && !room.IsAdmin(by) {
		return domain.ErrForbidden
	}
	return s.Stores.Notes.Delete(ctx, id, noteID)
}

func (s *Service) Comments(ctx context.Context, by domain.UserID, id domain.RoomID, noteID domain.NoteID, page, limit int) (CommentPage, error) {
	if _, err := s.Note(ctx, by, id, noteID); err != nil {
		return CommentPage{}, err
	}
	page, limit = paging(page, limit, domain.DefaultNotesLimit)
	comments, total, err := s.Stores.Comments.ListByNote(ctx, noteID, page, limit)
	if err != nil {
		return CommentPage{}, err
	}
	return CommentPage{Comments: comments, Total: total, Page: page, Pages: pageCount(total, limit)}, nil
}

// AddComment stores the comment and mails room members named as @name in it.
func (s *Service) AddComment(ctx context.Context, by domain.UserID, id domain.RoomID, noteID domain.NoteID, text string) (*domain.Comment, error) {
	room, err := s.member(ctx, by, id)
	if err != nil {
		return nil, err
	}
	note, err := s.Stores.Notes.ByID(ctx, id, noteID)
	if err != nil {
		return nil, err
	}
	comment, err := domain.NewComment(note, by, text)
	if err != nil {
		return nil, err
	}
	if err := s.Stores.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.notifyMentions(ctx, room, note, comment)
	return comment, nil
}

// DeleteComment is allowed to the author and the room admin.
func (s *Service) DeleteComment(ctx context.Context, by domain.UserID, id domain.RoomID, commentID domain.CommentID) error {
	room, err := s.member(ctx, by, id)
	if err != nil {
		return err
	}
	comment, err := s.Stores.Comments.ByID(ctx, id, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != by && !room.IsAdmin(by) {
		return domain.ErrForbidden
	}
	return s.Stores.Comments.Delete(ctx, commentID)
}

// notifyMentions matches @name against member names with spaces removed.
func (s *Service) notifyMentions(ctx context.Context, room *domain.Room, note *domain.Note, c *domain.Comment) {
	mentions := domain.Mentions(c.Text)
	if len(mentions) == 0 {
		return
	}
	members, err := s.Stores.Users.ByIDs(ctx, room.Members)
	if err != nil {
		log.Warn().Err(err).Str("module", "rooms").Str("room", string(room.ID)).Msg("mentions not resolved")
		return
	}
	author, ok := lo.Find(members, func(u *domain.User) bool { return u.ID == c.AuthorID })
	if !ok {
		return
	}
	for _, u := range members {
		handle := strings.ToLower(strings.ReplaceAll(u.Name, " ", ""))
		if u.ID == c.AuthorID || !lo.Contains(mentions, handle) {
			continue
		}
		s.send(ctx, notify.MentionMail(u.Email, author.Name, room.Name, note.Title))
	}
}
