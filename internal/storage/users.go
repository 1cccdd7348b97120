package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores u. A taken email yields domain.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.ByEmail(ctx, u.Email)
	switch {
	case err == nil:
		return fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	rec := newUserRecord(u)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) ByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", string(id)).Error; err != nil {
		return nil, fmt.Errorf("user %s: %w", id, notFound(err))
	}
	return rec.toDomain(), nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var rec userRecord
	err := r.db.WithContext(ctx).First(&rec, "email = ?", domain.NormalizeEmail(email)).Error
	if err != nil {
		return nil, fmt.Errorf("user by email: %w", notFound(err))
	}
	return rec.toDomain(), nil
}

// Identities resolves public identities for a set of ids. Unknown ids are skipped.
func (r *UserRepository) Identities(ctx context.Context, ids []domain.UserID) (map[domain.UserID]domain.Identity, error) {
	keys := lo.Uniq(lo.Map(ids, func(id domain.UserID, _ int) string { return string(id) }))
	if len(keys) == 0 {
		return map[domain.UserID]domain.Identity{}, nil
	}
	var recs []userRecord
	if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", keys).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return lo.SliceToMap(recs, func(rec userRecord) (domain.UserID, domain.Identity) {
		return domain.UserID(rec.ID), domain.Identity{ID: domain.UserID(rec.ID), Name: rec.Name}
	}), nil
}

// Save writes the profile, password and reset fields of u. Taking another
// user's email yields domain.ErrConflict.
func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	other, err := r.ByEmail(ctx, u.Email)
	switch {
	case err == nil && other.ID != u.ID:
		return fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return err
	}
	rec := newUserRecord(u)
	err = r.db.WithContext(ctx).Model(&userRecord{ID: rec.ID}).
		Select("name", "email", "password_hash", "reset_token", "reset_expires_at").
		Updates(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *UserRepository) ByResetToken(ctx context.Context, token string) (*domain.User, error) {
	var rec userRecord
	if token == "" {
		return nil, domain.ErrNotFound
	}
	if err := r.db.WithContext(ctx).First(&rec, "reset_token = ?", token).Error; err != nil {
		return nil, fmt.Errorf("user by reset token: %w", notFound(err))
	}
	return rec.toDomain(), nil
}

// ByIDs loads full users, e.g. to mail them. Unknown ids are skipped.
func (r *UserRepository) ByIDs(ctx context.Context, ids []domain.UserID) ([]*domain.User, error) {
	keys := lo.Uniq(lo.Map(ids, func(id domain.UserID, _ int) string { return string(id) }))
	if len(keys) == 0 {
		return nil, nil
	}
	var recs []userRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", keys).Order("name").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return lo.Map(recs, func(rec userRecord, _ int) *domain.User { return rec.toDomain() }), nil
}
