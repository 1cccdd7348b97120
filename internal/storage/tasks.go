package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	rec := newTaskRecord(t)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListByRoom(ctx context.Context, room domain.RoomID) ([]*domain.Task, error) {
	var recs []taskRecord
	err := r.db.WithContext(ctx).Where("room_id = ?", string(room)).Order("created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return lo.Map(recs, func(rec taskRecord, _ int) *domain.Task { return rec.toDomain() }), nil
}

func (r *TaskRepository) ByID(ctx context.Context, room domain.RoomID, id domain.TaskID) (*domain.Task, error) {
	var rec taskRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ? AND room_id = ?", string(id), string(room)).Error; err != nil {
		return nil, fmt.Errorf("task %s: %w", id, notFound(err))
	}
	return rec.toDomain(), nil
}

func (r *TaskRepository) Save(ctx context.Context, t *domain.Task) error {
	t.UpdatedAt = time.Now().UTC()
	rec := newTaskRecord(t)
	if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, room domain.RoomID, id domain.TaskID) error {
	res := r.db.WithContext(ctx).Delete(&taskRecord{}, "id = ? AND room_id = ?", string(id), string(room))
	if res.Error != nil {
		return fmt.Errorf("failed to delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DueBetween lists assigned, unfinished tasks due in [from, to] not reminded yet.
func (r *TaskRepository) DueBetween(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
	var recs []taskRecord
	err := r.db.WithContext(ctx).
		Where("due_at >= ? AND due_at <= ?", from.UTC(), to.UTC()).
		Where("status <> ? AND assignee_id <> '' AND reminded_at IS NULL", string(domain.TaskDone)).
		Order("due_at").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due tasks: %w", err)
	}
	return lo.Map(recs, func(rec taskRecord, _ int) *domain.Task { return rec.toDomain() }), nil
}

func (r *TaskRepository) MarkReminded(ctx context.Context, id domain.TaskID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&taskRecord{}).Where("id = ?", string(id)).Update("reminded_at", at.UTC()).Error
	if err != nil {
		return fmt.Errorf("failed to mark task reminded: %w", err)
	}
	return nil
}
