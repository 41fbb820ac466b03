package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tasktracker/internal/model"
)

// TaskRepository defines task persistence operations. Tasks are always
// addressed through their project id, never by task id alone.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	FindByIDAndProject(ctx context.Context, id, projectID uuid.UUID) (*model.Task, error)
	FindByIDAndProjectForUpdate(ctx context.Context, id, projectID uuid.UUID) (*model.Task, error)
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	CountCompletedByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create creates a new task.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return translate(r.db.WithContext(ctx).Create(task).Error, "create task")
}

// Update writes the mutable columns of an existing task, including a cleared
// CompletedAt or DueDate. It never inserts.
func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return translate(r.db.WithContext(ctx).Model(task).
		Select("title", "description", "completed", "due_date", "completed_at", "updated_at").
		Updates(task).Error, "update task")
}

// FindByIDAndProject finds a task scoped to its project.
func (r *taskRepository) FindByIDAndProject(ctx context.Context, id, projectID uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", id, projectID).
		First(&task).Error; err != nil {
		return nil, translate(err, "find task")
	}
	return &task, nil
}

// FindByIDAndProjectForUpdate finds a task with a row-level lock so that
// concurrent writers to the same task serialize. Only meaningful inside a transaction.
func (r *taskRepository) FindByIDAndProjectForUpdate(ctx context.Context, id, projectID uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ? AND project_id = ?", id, projectID).
		First(&task).Error; err != nil {
		return nil, translate(err, "lock task")
	}
	return &task, nil
}

// FindByProject lists a project's tasks, newest first.
func (r *taskRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").Order("id DESC").
		Find(&tasks).Error; err != nil {
		return nil, translate(err, "list tasks")
	}
	return tasks, nil
}

// CountByProject counts all tasks in a project.
func (r *taskRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ?", projectID).
		Count(&count).Error; err != nil {
		return 0, translate(err, "count tasks")
	}
	return count, nil
}

// CountCompletedByProject counts completed tasks in a project.
func (r *taskRepository) CountCompletedByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ? AND completed = ?", projectID, true).
		Count(&count).Error; err != nil {
		return 0, translate(err, "count completed tasks")
	}
	return count, nil
}

// Delete removes a single task.
func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return translate(res.Error, "delete task")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete task")
	}
	return nil
}

// DeleteAllByProject removes every task of a project and returns how many were removed.
func (r *taskRepository) DeleteAllByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Task{})
	if res.Error != nil {
		return 0, translate(res.Error, "delete project tasks")
	}
	return res.RowsAffected, nil
}
