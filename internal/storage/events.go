package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	rec := newEventRecord(e)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// ListByRoom returns a room's events by start time. Zero bounds are open.
func (r *EventRepository) ListByRoom(ctx context.Context, room domain.RoomID, from, to time.Time) ([]*domain.Event, error) {
	q := r.db.WithContext(ctx).Where("room_id = ?", string(room))
	if !from.IsZero() {
		q = q.Where("start_at >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("start_at <= ?", to.UTC())
	}
	var recs []eventRecord
	if err := q.Order("start_at").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return lo.Map(recs, func(rec eventRecord, _ int) *domain.Event { return rec.toDomain() }), nil
}

func (r *EventRepository) ByID(ctx context.Context, room domain.RoomID, id domain.EventID) (*domain.Event, error) {
	var rec eventRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ? AND room_id = ?", string(id), string(room)).Error; err != nil {
		return nil, fmt.Errorf("event %s: %w", id, notFound(err))
	}
	return rec.toDomain(), nil
}

func (r *EventRepository) Save(ctx context.Context, e *domain.Event) error {
	e.UpdatedAt = time.Now().UTC()
	rec := newEventRecord(e)
	if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, room domain.RoomID, id domain.EventID) error {
	res := r.db.WithContext(ctx).Delete(&eventRecord{}, "id = ? AND room_id = ?", string(id), string(room))
	if res.Error != nil {
		return fmt.Errorf("failed to delete event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// StartingBetween lists events starting in [from, to] not reminded yet.
func (r *EventRepository) StartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	var recs []eventRecord
	err := r.db.WithContext(ctx).
		Where("start_at >= ? AND start_at <= ? AND reminded_at IS NULL", from.UTC(), to.UTC()).
		Order("start_at").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return lo.Map(recs, func(rec eventRecord, _ int) *domain.Event { return rec.toDomain() }), nil
}

func (r *EventRepository) MarkReminded(ctx context.Context, id domain.EventID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&eventRecord{}).Where("id = ?", string(id)).Update("reminded_at", at.UTC()).Error
	if err != nil {
		return fmt.Errorf("failed to mark event reminded: %w", err)
	}
	return nil
}
