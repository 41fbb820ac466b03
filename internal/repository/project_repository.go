package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tasktracker/internal/model"
)

// ProjectRepository defines project persistence operations. Every lookup that
// takes an owner id matches id and owner together.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Project, error)
	FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*model.Project, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create creates a new project.
func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return translate(r.db.WithContext(ctx).Create(project).Error, "create project")
}

// Update writes the mutable columns of an existing project. It never inserts.
func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return translate(r.db.WithContext(ctx).Model(project).
		Select("title", "description", "updated_at").
		Updates(project).Error, "update project")
}

// FindByIDAndOwner finds a project only if ownerID owns it.
func (r *projectRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&project).Error; err != nil {
		return nil, translate(err, "find project")
	}
	return &project, nil
}

// FindByIDAndOwnerForUpdate is FindByIDAndOwner with a row-level lock held
// until the surrounding transaction ends.
func (r *projectRepository) FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&project).Error; err != nil {
		return nil, translate(err, "lock project")
	}
	return &project, nil
}

// FindByOwner lists an owner's projects, newest first.
func (r *projectRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error) {
	projects := []model.Project{}
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Find(&projects).Error; err != nil {
		return nil, translate(err, "list projects")
	}
	return projects, nil
}

// Delete removes a project row. Tasks must be removed by the caller in the same transaction.
func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Project{})
	if res.Error != nil {
		return translate(res.Error, "delete project")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete project")
	}
	return nil
}
