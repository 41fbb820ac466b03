package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasktracker/internal/model"
	"tasktracker/internal/mq"
	"tasktracker/internal/progress"
	"tasktracker/internal/repository"
)

// ProjectPatch is a partial update. Nil fields are left unchanged.
type ProjectPatch struct {
	Title       *string
	Description *string
}

// ProjectDetails is a project together with its task counts.
type ProjectDetails struct {
	Project  model.Project
	Progress progress.Summary
}

// ProjectProgress is the progress report of a single project.
type ProjectProgress struct {
	ProjectID    uuid.UUID
	ProjectTitle string
	progress.Summary
}

// ProjectService owns the project lifecycle. Every call names the principal explicitly.
type ProjectService interface {
	Create(ctx context.Context, ownerID uuid.UUID, title, description string) (*model.Project, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]ProjectDetails, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (*ProjectDetails, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, patch ProjectPatch) (*ProjectDetails, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	Progress(ctx context.Context, id, ownerID uuid.UUID) (*ProjectProgress, error)
}

type projectService struct {
	store  repository.Store
	events eventSink
	logger *zap.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(store repository.Store, publisher mq.Publisher, logger *zap.Logger) ProjectService {
	logger = orNop(logger)
	return &projectService{
		store:  store,
		events: newEventSink(publisher, logger),
		logger: logger,
	}
}

func (s *projectService) Create(ctx context.Context, ownerID uuid.UUID, title, description string) (*model.Project, error) {
	s.logger.Info("Creating project", zap.String("user_id", ownerID.String()))

	project := &model.Project{
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
	}
	if err := s.store.Projects().Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("Project created", zap.String("project_id", project.ID.String()))
	s.events.emit(ctx, mq.ProjectCreated, mq.ProjectPayload{ProjectID: project.ID, OwnerID: ownerID, Title: project.Title})
	return project, nil
}

func (s *projectService) List(ctx context.Context, ownerID uuid.UUID) ([]ProjectDetails, error) {
	var result []ProjectDetails
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		projects, err := tx.Projects().FindByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		result = make([]ProjectDetails, 0, len(projects))
		for _, p := range projects {
			summary, err := summarize(ctx, tx, p.ID)
			if err != nil {
				return err
			}
			result = append(result, ProjectDetails{Project: p, Progress: summary})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *projectService) Get(ctx context.Context, id, ownerID uuid.UUID) (*ProjectDetails, error) {
	var details *ProjectDetails
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		project, err := NewOwnershipGuard(tx).OwnedProject(ctx, id, ownerID, false)
		if err != nil {
			return err
		}
		summary, err := summarize(ctx, tx, project.ID)
		if err != nil {
			return err
		}
		details = &ProjectDetails{Project: *project, Progress: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *projectService) Update(ctx context.Context, id, ownerID uuid.UUID, patch ProjectPatch) (*ProjectDetails, error) {
	s.logger.Info("Updating project",
		zap.String("project_id", id.String()),
		zap.String("user_id", ownerID.String()),
	)

	var details *ProjectDetails
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		project, err := NewOwnershipGuard(tx).OwnedProject(ctx, id, ownerID, true)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			project.Title = *patch.Title
		}
		if patch.Description != nil {
			project.Description = *patch.Description
		}
		if err := tx.Projects().Update(ctx, project); err != nil {
			return err
		}

		summary, err := summarize(ctx, tx, project.ID)
		if err != nil {
			return err
		}
		details = &ProjectDetails{Project: *project, Progress: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.emit(ctx, mq.ProjectUpdated, mq.ProjectPayload{ProjectID: id, OwnerID: ownerID, Title: details.Project.Title})
	return details, nil
}

// Delete removes the project and all of its tasks in one transaction.
func (s *projectService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	s.logger.Info("Deleting project",
		zap.String("project_id", id.String()),
		zap.String("user_id", ownerID.String()),
	)

	var removed int64
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := NewOwnershipGuard(tx).OwnedProject(ctx, id, ownerID, true); err != nil {
			return err
		}
		n, err := tx.Tasks().DeleteAllByProject(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return tx.Projects().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Project deleted",
		zap.String("project_id", id.String()),
		zap.Int64("tasks_deleted", removed),
	)
	s.events.emit(ctx, mq.ProjectDeleted, mq.ProjectPayload{ProjectID: id, OwnerID: ownerID, TasksDeleted: removed})
	return nil
}

func (s *projectService) Progress(ctx context.Context, id, ownerID uuid.UUID) (*ProjectProgress, error) {
	details, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return &ProjectProgress{
		ProjectID:    details.Project.ID,
		ProjectTitle: details.Project.Title,
		Summary:      details.Progress,
	}, nil
}

func summarize(ctx context.Context, tx repository.Store, projectID uuid.UUID) (progress.Summary, error) {
	total, err := tx.Tasks().CountByProject(ctx, projectID)
	if err != nil {
		return progress.Summary{}, fmt.Errorf("count tasks: %w", err)
	}
	completed, err := tx.Tasks().CountCompletedByProject(ctx, projectID)
	if err != nil {
		return progress.Summary{}, fmt.Errorf("count completed tasks: %w", err)
	}
	return progress.ProgressSummary(int(total), int(completed)), nil
}
