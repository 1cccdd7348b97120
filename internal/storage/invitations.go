package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	rec := newInvitationRecord(inv)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// Save overwrites every mutable field of inv.
func (r *InvitationRepository) Save(ctx context.Context, inv *domain.Invitation) error {
	rec := newInvitationRecord(inv)
	if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to save invitation: %w", err)
	}
	return nil
}

func (r *InvitationRepository) ByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	var rec invitationRecord
	if err := r.db.WithContext(ctx).First(&rec, "token = ?", token).Error; err != nil {
		return nil, fmt.Errorf("invitation: %w", notFound(err))
	}
	return rec.toDomain(), nil
}

func (r *InvitationRepository) ByID(ctx context.Context, room domain.RoomID, id domain.InvitationID) (*domain.Invitation, error) {
	var rec invitationRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ? AND room_id = ?", string(id), string(room)).Error
	if err != nil {
		return nil, fmt.Errorf("invitation %s: %w", id, notFound(err))
	}
	return rec.toDomain(), nil
}

// PendingFor finds the pending invitation of email to room, if any.
func (r *InvitationRepository) PendingFor(ctx context.Context, room domain.RoomID, email string) (*domain.Invitation, error) {
	var rec invitationRecord
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND email = ? AND status = ?", string(room), domain.NormalizeEmail(email), string(domain.InvitationPending)).
		Order("created_at DESC").First(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("pending invitation: %w", notFound(err))
	}
	return rec.toDomain(), nil
}

// ListByRoom returns the room's invitations, newest first.
func (r *InvitationRepository) ListByRoom(ctx context.Context, room domain.RoomID) ([]*domain.Invitation, error) {
	var recs []invitationRecord
	err := r.db.WithContext(ctx).Where("room_id = ?", string(room)).Order("created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return lo.Map(recs, func(rec invitationRecord, _ int) *domain.Invitation { return rec.toDomain() }), nil
}

// ExpirePending marks every pending invitation past its deadline as expired.
func (r *InvitationRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&invitationRecord{}).
		Where("status = ? AND expires_at < ?", string(domain.InvitationPending), now.UTC()).
		Updates(map[string]any{"status": string(domain.InvitationExpired), "updated_at": now.UTC()})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", res.Error)
	}
	return res.RowsAffected, nil
}
