package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "tasktracker/internal/errors"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// memStore is an in-memory repository.Store. A transaction holds the store
// mutex for its whole lifetime, which serializes writers the way row locks
// on the project would, and works on a copy that is swapped in on commit.
type memStore struct {
	mu    *sync.Mutex
	data  *memData
	inTx  bool
	clock time.Time
}

type memData struct {
	users    map[uuid.UUID]model.User
	projects map[uuid.UUID]model.Project
	tasks    map[uuid.UUID]model.Task
	seq      int64
}

func newMemStore() *memStore {
	return &memStore{
		mu: &sync.Mutex{},
		data: &memData{
			users:    map[uuid.UUID]model.User{},
			projects: map[uuid.UUID]model.Project{},
			tasks:    map[uuid.UUID]model.Task{},
		},
		clock: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		users:    make(map[uuid.UUID]model.User, len(d.users)),
		projects: make(map[uuid.UUID]model.Project, len(d.projects)),
		tasks:    make(map[uuid.UUID]model.Task, len(d.tasks)),
		seq:      d.seq,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.projects {
		c.projects[k] = v
	}
	for k, v := range d.tasks {
		c.tasks[k] = v
	}
	return c
}

func (s *memStore) Users() repository.UserRepository       { return memUsers{s} }
func (s *memStore) Projects() repository.ProjectRepository { return memProjects{s} }
func (s *memStore) Tasks() repository.TaskRepository       { return memTasks{s} }

func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memStore{mu: s.mu, data: s.data.clone(), inTx: true, clock: s.clock}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	*s.data = *tx.data
	return nil
}

// do runs f against the live data, taking the mutex unless a transaction already holds it.
func (s *memStore) do(f func(d *memData) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return f(s.data)
}

// stamp hands out strictly increasing creation times.
func (s *memStore) stamp(d *memData) time.Time {
	d.seq++
	return s.clock.Add(time.Duration(d.seq) * time.Millisecond)
}

func (s *memStore) taskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.tasks)
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, user *model.User) error {
	return r.s.do(func(d *memData) error {
		for _, u := range d.users {
			if u.Email == user.Email {
				return fmt.Errorf("create user: %w", apperrors.ErrConflict)
			}
		}
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		user.CreatedAt = r.s.stamp(d)
		user.UpdatedAt = user.CreatedAt
		d.users[user.ID] = *user
		return nil
	})
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var out *model.User
	err := r.s.do(func(d *memData) error {
		for _, u := range d.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return notFound("find user")
	})
	return out, err
}

func (r memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

type memProjects struct{ s *memStore }

func (r memProjects) Create(ctx context.Context, project *model.Project) error {
	return r.s.do(func(d *memData) error {
		if project.ID == uuid.Nil {
			project.ID = uuid.New()
		}
		project.CreatedAt = r.s.stamp(d)
		project.UpdatedAt = project.CreatedAt
		d.projects[project.ID] = *project
		return nil
	})
}

func (r memProjects) Update(ctx context.Context, project *model.Project) error {
	return r.s.do(func(d *memData) error {
		stored, ok := d.projects[project.ID]
		if !ok {
			return nil
		}
		stored.Title = project.Title
		stored.Description = project.Description
		stored.UpdatedAt = r.s.stamp(d)
		project.UpdatedAt = stored.UpdatedAt
		d.projects[project.ID] = stored
		return nil
	})
}

func (r memProjects) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Project, error) {
	var out *model.Project
	err := r.s.do(func(d *memData) error {
		p, ok := d.projects[id]
		if !ok || p.OwnerID != ownerID {
			return notFound("find project")
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memProjects) FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*model.Project, error) {
	return r.FindByIDAndOwner(ctx, id, ownerID)
}

func (r memProjects) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error) {
	var out []model.Project
	err := r.s.do(func(d *memData) error {
		for _, p := range d.projects {
			if p.OwnerID == ownerID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func (r memProjects) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.do(func(d *memData) error {
		if _, ok := d.projects[id]; !ok {
			return notFound("delete project")
		}
		delete(d.projects, id)
		return nil
	})
}

type memTasks struct{ s *memStore }

func (r memTasks) Create(ctx context.Context, task *model.Task) error {
	return r.s.do(func(d *memData) error {
		if task.ID == uuid.Nil {
			task.ID = uuid.New()
		}
		task.CreatedAt = r.s.stamp(d)
		task.UpdatedAt = task.CreatedAt
		d.tasks[task.ID] = *task
		return nil
	})
}

func (r memTasks) Update(ctx context.Context, task *model.Task) error {
	return r.s.do(func(d *memData) error {
		stored, ok := d.tasks[task.ID]
		if !ok {
			return nil
		}
		stored.Title = task.Title
		stored.Description = task.Description
		stored.Completed = task.Completed
		stored.DueDate = task.DueDate
		stored.CompletedAt = task.CompletedAt
		stored.UpdatedAt = r.s.stamp(d)
		task.UpdatedAt = stored.UpdatedAt
		d.tasks[task.ID] = stored
		return nil
	})
}

func (r memTasks) FindByIDAndProject(ctx context.Context, id, projectID uuid.UUID) (*model.Task, error) {
	var out *model.Task
	err := r.s.do(func(d *memData) error {
		t, ok := d.tasks[id]
		if !ok || t.ProjectID != projectID {
			return notFound("find task")
		}
		out = &t
		return nil
	})
	return out, err
}

func (r memTasks) FindByIDAndProjectForUpdate(ctx context.Context, id, projectID uuid.UUID) (*model.Task, error) {
	return r.FindByIDAndProject(ctx, id, projectID)
}

func (r memTasks) FindByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	var out []model.Task
	err := r.s.do(func(d *memData) error {
		for _, t := range d.tasks {
			if t.ProjectID == projectID {
				out = append(out, t)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func (r memTasks) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	tasks, err := r.FindByProject(ctx, projectID)
	return int64(len(tasks)), err
}

func (r memTasks) CountCompletedByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	tasks, err := r.FindByProject(ctx, projectID)
	var n int64
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n, err
}

func (r memTasks) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.do(func(d *memData) error {
		if _, ok := d.tasks[id]; !ok {
			return notFound("delete task")
		}
		delete(d.tasks, id)
		return nil
	})
}

func (r memTasks) DeleteAllByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	err := r.s.do(func(d *memData) error {
		for id, t := range d.tasks {
			if t.ProjectID == projectID {
				delete(d.tasks, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
