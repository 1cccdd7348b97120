package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository holds the per-room video and whiteboard snapshots.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) LoadVideo(ctx context.Context, room domain.RoomID, url string, by domain.UserID) error {
	rec := videoSessionRecord{
		RoomID:          string(room),
		URL:             url,
		LastPositionSec: 0,
		IsPlaying:       false,
		UpdatedBy:       string(by),
		UpdatedAt:       time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "last_position_sec", "is_playing", "updated_by", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("%w: load video: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (r *SessionRepository) SetPlayback(ctx context.Context, room domain.RoomID, playing bool, position float64, by domain.UserID) error {
	err := r.db.WithContext(ctx).Model(&videoSessionRecord{}).Where("room_id = ?", string(room)).
		Updates(map[string]any{
			"is_playing":        playing,
			"last_position_sec": position,
			"updated_by":        string(by),
			"updated_at":        time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("%w: set playback: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (r *SessionRepository) Video(ctx context.Context, room domain.RoomID) (*domain.VideoSession, error) {
	var rec videoSessionRecord
	if err := r.db.WithContext(ctx).First(&rec, "room_id = ?", string(room)).Error; err != nil {
		return nil, fmt.Errorf("video session: %w", notFound(err))
	}
	return rec.toDomain(), nil
}

func (r *SessionRepository) Whiteboard(ctx context.Context, room domain.RoomID) (*domain.Whiteboard, error) {
	var rec whiteboardRecord
	if err := r.db.WithContext(ctx).First(&rec, "room_id = ?", string(room)).Error; err != nil {
		return nil, fmt.Errorf("whiteboard: %w", notFound(err))
	}
	return &domain.Whiteboard{
		RoomID:    domain.RoomID(rec.RoomID),
		Data:      json.RawMessage(rec.Data),
		UpdatedBy: domain.UserID(rec.UpdatedBy),
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

// SaveWhiteboard replaces the stored board wholesale.
func (r *SessionRepository) SaveWhiteboard(ctx context.Context, room domain.RoomID, data json.RawMessage, by domain.UserID) error {
	rec := whiteboardRecord{
		RoomID:    string(room),
		Data:      string(data),
		UpdatedBy: string(by),
		UpdatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_by", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("%w: save whiteboard: %v", domain.ErrPersistence, err)
	}
	return nil
}
