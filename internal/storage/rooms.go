package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create assigns a unique join code to room and stores it with its members.
func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	code, err := r.freeCode(ctx)
	if err != nil {
		return err
	}
	room.Code = code

	rec := roomRecord{
		ID:          string(room.ID),
		Name:        room.Name,
		Description: room.Description,
		Visibility:  string(room.Visibility),
		Code:        room.Code,
		AdminID:     string(room.AdminID),
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
	}
	members := lo.Map(room.Members, func(uid domain.UserID, _ int) roomMemberRecord {
		return roomMemberRecord{RoomID: rec.ID, UserID: string(uid), CreatedAt: room.CreatedAt}
	})
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	log.Info().Str("module", "storage").Str("room", rec.ID).Str("code", code).Msg("room created")
	return nil
}

func (r *RoomRepository) freeCode(ctx context.Context) (string, error) {
	for range domain.RoomCodeMaxTries {
		code, err := domain.NewRoomCode()
		if err != nil {
			return "", err
		}
		var n int64
		if err := r.db.WithContext(ctx).Model(&roomRecord{}).Where("code = ?", code).Count(&n).Error; err != nil {
			return "", fmt.Errorf("failed to check room code: %w", err)
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", domain.ErrRoomCodeExhausted
}

func (r *RoomRepository) ByID(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var rec roomRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", string(id)).Error; err != nil {
		return nil, fmt.Errorf("room %s: %w", id, notFound(err))
	}
	return r.withMembers(ctx, rec)
}

func (r *RoomRepository) ByCode(ctx context.Context, code string) (*domain.Room, error) {
	var rec roomRecord
	err := r.db.WithContext(ctx).First(&rec, "code = ?", domain.NormalizeRoomCode(code)).Error
	if err != nil {
		return nil, fmt.Errorf("room by code: %w", notFound(err))
	}
	return r.withMembers(ctx, rec)
}

func (r *RoomRepository) withMembers(ctx context.Context, rec roomRecord) (*domain.Room, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&roomMemberRecord{}).
		Where("room_id = ?", rec.ID).Order("created_at ASC").Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	members := lo.Map(ids, func(id string, _ int) domain.UserID { return domain.UserID(id) })
	return rec.toDomain(members), nil
}

// IsMember reports whether user belongs to room. A missing room has no members.
func (r *RoomRepository) IsMember(ctx context.Context, room domain.RoomID, user domain.UserID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&roomMemberRecord{}).
		Where("room_id = ? AND user_id = ?", string(room), string(user)).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return n > 0, nil
}

// AddMember is idempotent.
func (r *RoomRepository) AddMember(ctx context.Context, room domain.RoomID, user domain.UserID) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := roomMemberRecord{RoomID: string(room), UserID: string(user), CreatedAt: now}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&roomRecord{}).Where("id = ?", string(room)).Update("updated_at", now).Error
	})
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// ListForUser pages through the rooms user belongs to, most recently updated first.
func (r *RoomRepository) ListForUser(ctx context.Context, user domain.UserID, page, limit int) ([]*domain.Room, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	mine := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&roomRecord{}).
			Joins("JOIN room_members ON room_members.room_id = rooms.id").
			Where("room_members.user_id = ?", string(user))
	}

	var total int64
	if err := mine().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	var recs []roomRecord
	err := mine().Select("rooms.*").Order("rooms.updated_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rooms: %w", err)
	}
	out := make([]*domain.Room, 0, len(recs))
	for _, rec := range recs {
		room, err := r.withMembers(ctx, rec)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, room)
	}
	return out, total, nil
}

// Update stores the editable fields of room.
func (r *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	room.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&roomRecord{}).Where("id = ?", string(room.ID)).Updates(map[string]any{
		"name":        room.Name,
		"description": room.Description,
		"visibility":  string(room.Visibility),
		"updated_at":  room.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update room: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RegenerateCode replaces the join code and returns the new one.
func (r *RoomRepository) RegenerateCode(ctx context.Context, id domain.RoomID) (string, error) {
	code, err := r.freeCode(ctx)
	if err != nil {
		return "", err
	}
	res := r.db.WithContext(ctx).Model(&roomRecord{}).Where("id = ?", string(id)).
		Updates(map[string]any{"code": code, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return "", fmt.Errorf("failed to regenerate code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", domain.ErrNotFound
	}
	return code, nil
}

// Delete removes the room and everything scoped to it.
func (r *RoomRepository) Delete(ctx context.Context, id domain.RoomID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&roomRecord{}, "id = ?", string(id))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		for _, model := range []any{
			&roomMemberRecord{}, &messageRecord{}, &videoSessionRecord{},
			&whiteboardRecord{}, &invitationRecord{}, &taskRecord{},
			&noteRecord{}, &commentRecord{}, &eventRecord{},
		} {
			if err := tx.Where("room_id = ?", string(id)).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}
