package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) error {
	rec := newNoteRecord(n)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListByRoom pages a room's notes, newest first. A non-empty search matches
// title or content case-insensitively.
func (r *NoteRepository) ListByRoom(ctx context.Context, room domain.RoomID, search string, page, limit int) ([]*domain.Note, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&noteRecord{}).Where("room_id = ?", string(room))
		if search = strings.TrimSpace(search); search != "" {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
			q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}
	var recs []noteRecord
	err := scoped().Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}
	return lo.Map(recs, func(rec noteRecord, _ int) *domain.Note { return rec.toDomain() }), total, nil
}

func (r *NoteRepository) ByID(ctx context.Context, room domain.RoomID, id domain.NoteID) (*domain.Note, error) {
	var rec noteRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ? AND room_id = ?", string(id), string(room)).Error; err != nil {
		return nil, fmt.Errorf("note %s: %w", id, notFound(err))
	}
	return rec.toDomain(), nil
}

func (r *NoteRepository) Save(ctx context.Context, n *domain.Note) error {
	n.UpdatedAt = time.Now().UTC()
	rec := newNoteRecord(n)
	if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return nil
}

// Delete removes the note with its comments.
func (r *NoteRepository) Delete(ctx context.Context, room domain.RoomID, id domain.NoteID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&noteRecord{}, "id = ? AND room_id = ?", string(id), string(room))
		if res.Error != nil {
			return fmt.Errorf("failed to delete note: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if err := tx.Where("note_id = ?", string(id)).Delete(&commentRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		return nil
	})
}

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	rec := commentRecord{
		ID:        string(c.ID),
		NoteID:    string(c.NoteID),
		RoomID:    string(c.RoomID),
		AuthorID:  string(c.AuthorID),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListByNote pages a note's comments, newest first.
func (r *CommentRepository) ListByNote(ctx context.Context, note domain.NoteID, page, limit int) ([]*domain.Comment, int64, error) {
	scoped := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&commentRecord{}).Where("note_id = ?", string(note))
	}
	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}
	var recs []commentRecord
	err := scoped().Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return lo.Map(recs, func(rec commentRecord, _ int) *domain.Comment { return rec.toDomain() }), total, nil
}

func (r *CommentRepository) ByID(ctx context.Context, room domain.RoomID, id domain.CommentID) (*domain.Comment, error) {
	var rec commentRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ? AND room_id = ?", string(id), string(room)).Error; err != nil {
		return nil, fmt.Errorf("comment %s: %w", id, notFound(err))
	}
	return rec.toDomain(), nil
}

func (r *CommentRepository) Delete(ctx context.Context, id domain.CommentID) error {
	res := r.db.WithContext(ctx).Delete(&commentRecord{}, "id = ?", string(id))
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
