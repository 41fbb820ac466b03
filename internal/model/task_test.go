package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_CompletionStateMachine(t *testing.T) {
	now := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)
	task := &Task{Title: "write report"}

	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)

	task.MarkCompleted(now)
	assert.True(t, task.Completed)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)

	later := now.Add(time.Hour)
	task.MarkCompleted(later)
	assert.True(t, task.Completed)
	assert.Equal(t, later, *task.CompletedAt, "re-marking refreshes the completion stamp")

	task.MarkIncomplete()
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)

	task.MarkIncomplete()
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)
}

func TestTask_SetCompleted(t *testing.T) {
	now := time.Now()
	task := &Task{}

	task.SetCompleted(true, now)
	assert.True(t, task.Completed)
	assert.NotNil(t, task.CompletedAt)

	task.SetCompleted(false, now)
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)
}

func TestTask_IsOverdue(t *testing.T) {
	today := time.Date(2024, time.May, 2, 12, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	task := &Task{DueDate: &yesterday}

	assert.True(t, task.IsOverdue(today))

	task.MarkCompleted(today)
	assert.False(t, task.IsOverdue(today), "completed tasks are never overdue")

	task.MarkIncomplete()
	assert.True(t, task.IsOverdue(today))

	task.DueDate = nil
	assert.False(t, task.IsOverdue(today))
}
