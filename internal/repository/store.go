package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories so that several of them can share one transaction.
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Tasks() TaskRepository
	// WithTransaction runs fn inside a single database transaction. The Store
	// handed to fn is bound to that transaction; any error or panic rolls back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type gormStore struct {
	db       *gorm.DB
	users    UserRepository
	projects ProjectRepository
	tasks    TaskRepository
}

// NewStore creates a GORM-backed Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:       db,
		users:    NewUserRepository(db),
		projects: NewProjectRepository(db),
		tasks:    NewTaskRepository(db),
	}
}

func (s *gormStore) Users() UserRepository       { return s.users }
func (s *gormStore) Projects() ProjectRepository { return s.projects }
func (s *gormStore) Tasks() TaskRepository       { return s.tasks }

// WithTransaction executes a function within a database transaction.
func (s *gormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStore(tx))
	})
}
