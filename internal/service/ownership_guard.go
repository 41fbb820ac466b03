package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "tasktracker/internal/errors"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// OwnershipGuard is the single authorization chokepoint for the
// User -> Project -> Task hierarchy. Build it from the transaction-bound
// Store so the check and the mutation that follows share one transaction.
type OwnershipGuard struct {
	store repository.Store
}

// NewOwnershipGuard binds a guard to store.
func NewOwnershipGuard(store repository.Store) *OwnershipGuard {
	return &OwnershipGuard{store: store}
}

// AssertProjectOwnership fails with ErrAuthorization unless projectID exists and
// belongs to userID. A missing project and a foreign project are indistinguishable.
func (g *OwnershipGuard) AssertProjectOwnership(ctx context.Context, projectID, userID uuid.UUID) error {
	_, err := g.OwnedProject(ctx, projectID, userID, false)
	return err
}

// OwnedProject loads a project the user owns. With lock set the row stays
// locked until the transaction ends.
func (g *OwnershipGuard) OwnedProject(ctx context.Context, projectID, userID uuid.UUID, lock bool) (*model.Project, error) {
	find := g.store.Projects().FindByIDAndOwner
	if lock {
		find = g.store.Projects().FindByIDAndOwnerForUpdate
	}
	project, err := find(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, projectDenied(projectID)
		}
		return nil, err
	}
	return project, nil
}

// AssertTaskAccess checks project ownership first, then requires taskID to
// exist inside that same project.
func (g *OwnershipGuard) AssertTaskAccess(ctx context.Context, projectID, taskID, userID uuid.UUID) error {
	_, _, err := g.AccessTask(ctx, projectID, taskID, userID, false)
	return err
}

// AccessTask is AssertTaskAccess returning the project and task it checked.
// With lock set both rows are locked, project first.
func (g *OwnershipGuard) AccessTask(ctx context.Context, projectID, taskID, userID uuid.UUID, lock bool) (*model.Project, *model.Task, error) {
	project, err := g.OwnedProject(ctx, projectID, userID, lock)
	if err != nil {
		return nil, nil, err
	}

	find := g.store.Tasks().FindByIDAndProject
	if lock {
		find = g.store.Tasks().FindByIDAndProjectForUpdate
	}
	task, err := find(ctx, taskID, projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, taskNotFound(projectID, taskID)
		}
		return nil, nil, err
	}
	return project, task, nil
}

func projectDenied(projectID uuid.UUID) error {
	return fmt.Errorf("%w: project %s is not accessible", apperrors.ErrAuthorization, projectID)
}

func taskNotFound(projectID, taskID uuid.UUID) error {
	return fmt.Errorf("%w: task %s in project %s", apperrors.ErrNotFound, taskID, projectID)
}
