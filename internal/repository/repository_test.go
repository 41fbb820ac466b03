package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "tasktracker/internal/errors"
	"tasktracker/internal/model"
)

// sqlRecorder captures every statement gorm renders.
type sqlRecorder struct {
	mu         sync.Mutex
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }

func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, sql)
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.statements, "no statement was rendered")
	return r.statements[len(r.statements)-1]
}

// dryRunDB renders SQL without ever opening a connection.
func dryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "tasks:tasks@tcp(127.0.0.1:3306)/tasks?parseTime=true&loc=UTC",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	require.NoError(t, err)
	return db, rec
}

func TestProjectRepository_ScopesByOwner(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	id, owner := uuid.New(), uuid.New()
	scope := fmt.Sprintf("WHERE id = '%s' AND owner_id = '%s'", id, owner)

	_, err := repo.FindByIDAndOwner(ctx, id, owner)
	require.NoError(t, err)
	assert.Contains(t, rec.last(t), scope)
	assert.NotContains(t, rec.last(t), "FOR UPDATE")

	_, err = repo.FindByIDAndOwnerForUpdate(ctx, id, owner)
	require.NoError(t, err)
	assert.Contains(t, rec.last(t), scope)
	assert.Contains(t, rec.last(t), "FOR UPDATE")

	_, err = repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Contains(t, rec.last(t), fmt.Sprintf("WHERE owner_id = '%s'", owner))
	assert.Contains(t, rec.last(t), "ORDER BY created_at DESC,id DESC")
}

func TestProjectRepository_UpdateWritesMutableColumnsOnly(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewProjectRepository(db)
	project := &model.Project{ID: uuid.New(), Title: "Renamed", OwnerID: uuid.New()}

	require.NoError(t, repo.Update(context.Background(), project))

	sql := rec.last(t)
	assert.Contains(t, sql, "UPDATE `projects` SET")
	assert.Contains(t, sql, "`title`='Renamed'")
	assert.Contains(t, sql, "`description`=''")
	assert.NotContains(t, sql, "`owner_id`")
	assert.Contains(t, sql, project.ID.String())
}

func TestTaskRepository_ScopesByProject(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	id, projectID := uuid.New(), uuid.New()
	scope := fmt.Sprintf("WHERE id = '%s' AND project_id = '%s'", id, projectID)

	_, err := repo.FindByIDAndProject(ctx, id, projectID)
	require.NoError(t, err)
	assert.Contains(t, rec.last(t), scope)

	_, err = repo.FindByIDAndProjectForUpdate(ctx, id, projectID)
	require.NoError(t, err)
	assert.Contains(t, rec.last(t), scope)
	assert.Contains(t, rec.last(t), "FOR UPDATE")

	_, err = repo.FindByProject(ctx, projectID)
	require.NoError(t, err)
	assert.Contains(t, rec.last(t), fmt.Sprintf("WHERE project_id = '%s'", projectID))
	assert.Contains(t, rec.last(t), "ORDER BY created_at DESC,id DESC")

	_, err = repo.CountCompletedByProject(ctx, projectID)
	require.NoError(t, err)
	assert.Contains(t, rec.last(t), fmt.Sprintf("WHERE project_id = '%s' AND completed = true", projectID))
}

func TestTaskRepository_UpdateClearsCompletion(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewTaskRepository(db)
	task := &model.Task{ID: uuid.New(), Title: "Reopened", ProjectID: uuid.New()}
	task.MarkCompleted(time.Date(2024, time.March, 10, 14, 0, 0, 0, time.UTC))
	task.MarkIncomplete()

	require.NoError(t, repo.Update(context.Background(), task))

	sql := rec.last(t)
	assert.Contains(t, sql, "UPDATE `tasks` SET")
	assert.Contains(t, sql, "`completed`=false")
	assert.Contains(t, sql, "`completed_at`=NULL")
	assert.Contains(t, sql, "`due_date`=NULL")
	assert.NotContains(t, sql, "`project_id`")
	assert.Contains(t, sql, task.ID.String())
}

func TestTaskRepository_DeleteAllByProject(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewTaskRepository(db)
	projectID := uuid.New()

	removed, err := repo.DeleteAllByProject(context.Background(), projectID)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Contains(t, rec.last(t), fmt.Sprintf("DELETE FROM `tasks` WHERE project_id = '%s'", projectID))
}

func TestTaskRepository_DeleteReportsMissingRow(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewTaskRepository(db)
	id := uuid.New()

	// a dry run affects no rows
	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, rec.last(t), fmt.Sprintf("DELETE FROM `tasks` WHERE id = '%s'", id))
}
