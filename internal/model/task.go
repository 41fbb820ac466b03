package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasktracker/internal/progress"
)

// Task belongs to a single project. CompletedAt is set exactly when Completed is true.
type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Description string     `json:"description" gorm:"type:text"`
	Completed   bool       `json:"completed" gorm:"not null;index"`
	DueDate     *time.Time `json:"due_date,omitempty" gorm:"type:date;index"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ProjectID   uuid.UUID  `json:"project_id" gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// MarkCompleted moves the task to the completed state and stamps CompletedAt with now.
// Calling it on an already completed task re-stamps CompletedAt.
func (t *Task) MarkCompleted(now time.Time) {
	stamp := now
	t.Completed = true
	t.CompletedAt = &stamp
}

// MarkIncomplete moves the task back to the incomplete state and clears CompletedAt.
func (t *Task) MarkIncomplete() {
	t.Completed = false
	t.CompletedAt = nil
}

// SetCompleted routes a requested completion flag through the state machine.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	if completed {
		t.MarkCompleted(now)
		return
	}
	t.MarkIncomplete()
}

// IsOverdue is derived, never stored.
func (t *Task) IsOverdue(today time.Time) bool {
	return progress.Overdue(t.DueDate, t.Completed, today)
}
