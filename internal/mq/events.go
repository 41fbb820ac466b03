package mq

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for domain events on the topic exchange.
const (
	UserRegistered = "user.registered"
	ProjectCreated = "project.created"
	ProjectUpdated = "project.updated"
	ProjectDeleted = "project.deleted"
	TaskCreated    = "task.created"
	TaskUpdated    = "task.updated"
	TaskCompleted  = "task.completed"
	TaskReopened   = "task.reopened"
	TaskDeleted    = "task.deleted"
)

// Event is the envelope written to the broker.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// UserRegisteredPayload is the data of a user.registered event.
type UserRegisteredPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// ProjectPayload is the data of every project.* event.
type ProjectPayload struct {
	ProjectID uuid.UUID `json:"project_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title,omitempty"`
	// Set on project.deleted only.
	TasksDeleted int64 `json:"tasks_deleted,omitempty"`
}

// TaskPayload is the data of every task.* event.
type TaskPayload struct {
	TaskID      uuid.UUID  `json:"task_id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
