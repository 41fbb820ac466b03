package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasktracker/internal/metrics"
	"tasktracker/internal/model"
	"tasktracker/internal/mq"
	"tasktracker/internal/repository"
)

// NewTask is the input for TaskService.Create.
type NewTask struct {
	Title       string
	Description string
	DueDate     *time.Time
}

// TaskPatch is a partial update. Nil fields are left unchanged; a non-nil
// Completed goes through the completion state machine.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Completed   *bool
}

// TaskDetails is a task with its derived, non-persisted fields.
type TaskDetails struct {
	Task         model.Task
	ProjectTitle string
	Overdue      bool
}

// TaskService owns the task lifecycle. Every call is authorized against the
// principal and the project in the path before anything is read or written.
type TaskService interface {
	Create(ctx context.Context, userID, projectID uuid.UUID, input NewTask) (*TaskDetails, error)
	List(ctx context.Context, userID, projectID uuid.UUID) ([]TaskDetails, error)
	Get(ctx context.Context, userID, projectID, taskID uuid.UUID) (*TaskDetails, error)
	Update(ctx context.Context, userID, projectID, taskID uuid.UUID, patch TaskPatch) (*TaskDetails, error)
	MarkCompleted(ctx context.Context, userID, projectID, taskID uuid.UUID) (*TaskDetails, error)
	MarkIncomplete(ctx context.Context, userID, projectID, taskID uuid.UUID) (*TaskDetails, error)
	Delete(ctx context.Context, userID, projectID, taskID uuid.UUID) error
}

type taskService struct {
	store  repository.Store
	events eventSink
	logger *zap.Logger
	now    func() time.Time
}

// NewTaskService creates a new task service.
func NewTaskService(store repository.Store, publisher mq.Publisher, logger *zap.Logger) TaskService {
	return newTaskService(store, publisher, logger, func() time.Time { return time.Now().UTC() })
}

func newTaskService(store repository.Store, publisher mq.Publisher, logger *zap.Logger, now func() time.Time) *taskService {
	logger = orNop(logger)
	return &taskService{
		store:  store,
		events: newEventSink(publisher, logger),
		logger: logger,
		now:    now,
	}
}

func (s *taskService) details(project *model.Project, task *model.Task) *TaskDetails {
	return &TaskDetails{
		Task:         *task,
		ProjectTitle: project.Title,
		Overdue:      task.IsOverdue(s.now()),
	}
}

func (s *taskService) Create(ctx context.Context, userID, projectID uuid.UUID, input NewTask) (*TaskDetails, error) {
	s.logger.Info("Creating task",
		zap.String("project_id", projectID.String()),
		zap.String("user_id", userID.String()),
	)

	var created *TaskDetails
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		// Lock the project so a concurrent delete cannot orphan the new task.
		project, err := NewOwnershipGuard(tx).OwnedProject(ctx, projectID, userID, true)
		if err != nil {
			return err
		}

		task := &model.Task{
			Title:       input.Title,
			Description: input.Description,
			DueDate:     input.DueDate,
			ProjectID:   projectID,
		}
		if err := tx.Tasks().Create(ctx, task); err != nil {
			return err
		}
		created = s.details(project, task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task created", zap.String("task_id", created.Task.ID.String()))
	s.events.emit(ctx, mq.TaskCreated, taskPayload(&created.Task, userID))
	return created, nil
}

func (s *taskService) List(ctx context.Context, userID, projectID uuid.UUID) ([]TaskDetails, error) {
	var result []TaskDetails
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		project, err := NewOwnershipGuard(tx).OwnedProject(ctx, projectID, userID, false)
		if err != nil {
			return err
		}
		tasks, err := tx.Tasks().FindByProject(ctx, projectID)
		if err != nil {
			return err
		}
		result = make([]TaskDetails, 0, len(tasks))
		for i := range tasks {
			result = append(result, *s.details(project, &tasks[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *taskService) Get(ctx context.Context, userID, projectID, taskID uuid.UUID) (*TaskDetails, error) {
	var found *TaskDetails
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		project, task, err := NewOwnershipGuard(tx).AccessTask(ctx, projectID, taskID, userID, false)
		if err != nil {
			return err
		}
		found = s.details(project, task)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *taskService) Update(ctx context.Context, userID, projectID, taskID uuid.UUID, patch TaskPatch) (*TaskDetails, error) {
	s.logger.Info("Updating task",
		zap.String("task_id", taskID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("user_id", userID.String()),
	)

	var updated *TaskDetails
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		project, task, err := NewOwnershipGuard(tx).AccessTask(ctx, projectID, taskID, userID, true)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			task.Title = *patch.Title
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.DueDate != nil {
			due := *patch.DueDate
			task.DueDate = &due
		}
		if patch.Completed != nil {
			task.SetCompleted(*patch.Completed, s.now())
		}

		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}
		updated = s.details(project, task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	routingKey := mq.TaskUpdated
	if patch.Completed != nil {
		metrics.IncrementCompletionTransition(*patch.Completed)
		routingKey = mq.TaskReopened
		if *patch.Completed {
			routingKey = mq.TaskCompleted
		}
	}
	s.events.emit(ctx, routingKey, taskPayload(&updated.Task, userID))
	return updated, nil
}

// MarkCompleted completes the task. Completing an already completed task re-stamps CompletedAt.
func (s *taskService) MarkCompleted(ctx context.Context, userID, projectID, taskID uuid.UUID) (*TaskDetails, error) {
	completed := true
	return s.Update(ctx, userID, projectID, taskID, TaskPatch{Completed: &completed})
}

// MarkIncomplete reopens the task and clears CompletedAt.
func (s *taskService) MarkIncomplete(ctx context.Context, userID, projectID, taskID uuid.UUID) (*TaskDetails, error) {
	completed := false
	return s.Update(ctx, userID, projectID, taskID, TaskPatch{Completed: &completed})
}

func (s *taskService) Delete(ctx context.Context, userID, projectID, taskID uuid.UUID) error {
	s.logger.Info("Deleting task",
		zap.String("task_id", taskID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("user_id", userID.String()),
	)

	var deleted *model.Task
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		_, task, err := NewOwnershipGuard(tx).AccessTask(ctx, projectID, taskID, userID, true)
		if err != nil {
			return err
		}
		deleted = task
		return tx.Tasks().Delete(ctx, task.ID)
	})
	if err != nil {
		return err
	}

	s.events.emit(ctx, mq.TaskDeleted, taskPayload(deleted, userID))
	return nil
}

func taskPayload(task *model.Task, ownerID uuid.UUID) mq.TaskPayload {
	return mq.TaskPayload{
		TaskID:      task.ID,
		ProjectID:   task.ProjectID,
		OwnerID:     ownerID,
		Title:       task.Title,
		Completed:   task.Completed,
		CompletedAt: task.CompletedAt,
	}
}
