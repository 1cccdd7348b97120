package storage

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append stores msg with a fresh id and server timestamp.
func (r *MessageRepository) Append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	rec := messageRecord{
		ID:          uuid.NewString(),
		RoomID:      string(msg.RoomID),
		UserID:      string(msg.UserID),
		Text:        msg.Text,
		Attachments: msg.Attachments,
		CreatedAt:   time.Now().UTC(),
	}
	if rec.Attachments == nil {
		rec.Attachments = []string{}
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Message{}, fmt.Errorf("%w: append message: %v", domain.ErrPersistence, err)
	}
	return rec.toDomain(), nil
}

// History returns up to limit messages created before the cursor, oldest first.
// A zero cursor starts from the newest message.
func (r *MessageRepository) History(ctx context.Context, room domain.RoomID, before time.Time, limit int) ([]domain.Message, error) {
	limit = domain.ClampHistoryLimit(limit)
	q := r.db.WithContext(ctx).Where("room_id = ?", string(room))
	if !before.IsZero() {
		q = q.Where("created_at < ?", before.UTC())
	}
	var recs []messageRecord
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	out := lo.Map(recs, func(rec messageRecord, _ int) domain.Message { return rec.toDomain() })
	slices.Reverse(out)
	return out, nil
}
