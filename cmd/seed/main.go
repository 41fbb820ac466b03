package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"tasktracker/internal/auth"
	"tasktracker/internal/config"
	"tasktracker/internal/db"
	"tasktracker/internal/logger"
	"tasktracker/internal/model"
	"tasktracker/internal/mq"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
)

// SeedData is the demo dataset. SEED_FILE may point to a JSON file of the same shape.
type SeedData struct {
	Email       string        `json:"email"`
	Password    string        `json:"password"`
	DisplayName string        `json:"displayName"`
	Projects    []SeedProject `json:"projects"`
}

// SeedProject is a project with its tasks.
type SeedProject struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tasks       []SeedTask `json:"tasks"`
}

// SeedTask is a task; DueInDays is relative to today and may be negative.
type SeedTask struct {
	Title     string `json:"title"`
	DueInDays *int   `json:"dueInDays"`
	Completed bool   `json:"completed"`
}

func intPtr(v int) *int { return &v }

var defaultSeed = SeedData{
	Email:       "demo@example.com",
	Password:    "demo-password",
	DisplayName: "Demo User",
	Projects: []SeedProject{
		{
			Title:       "Website relaunch",
			Description: "Rebuild the marketing site",
			Tasks: []SeedTask{
				{Title: "Collect requirements", DueInDays: intPtr(-7), Completed: true},
				{Title: "Draft wireframes", DueInDays: intPtr(-1)},
				{Title: "Write copy", DueInDays: intPtr(5)},
			},
		},
		{
			Title: "Household",
			Tasks: []SeedTask{
				{Title: "Renew passport", DueInDays: intPtr(30)},
				{Title: "Fix the bike"},
			},
		},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("Starting seed script")

	data, err := loadSeed(os.Getenv("SEED_FILE"))
	if err != nil {
		zl.Fatal("Failed to load seed data", zap.Error(err))
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		zl.Fatal("Failed to run migrations", zap.Error(err))
	}
	zl.Info("Database migrations completed")

	store := repository.NewStore(gormDB)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(store.Users(), auth.NewBcryptHasher(0), tokens, mq.NoopPublisher{}, zl)
	projectService := service.NewProjectService(store, mq.NoopPublisher{}, zl)
	taskService := service.NewTaskService(store, mq.NoopPublisher{}, zl)

	ctx := context.Background()
	token, user, err := ensureUser(ctx, authService, data)
	if err != nil {
		zl.Fatal("Failed to create demo user", zap.Error(err))
	}

	today := time.Now().UTC()
	created := 0
	for _, p := range data.Projects {
		project, err := projectService.Create(ctx, user.ID, p.Title, p.Description)
		if err != nil {
			zl.Fatal("Failed to create project", zap.String("title", p.Title), zap.Error(err))
		}
		for _, t := range p.Tasks {
			input := service.NewTask{Title: t.Title}
			if t.DueInDays != nil {
				due := today.AddDate(0, 0, *t.DueInDays)
				due = time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
				input.DueDate = &due
			}
			task, err := taskService.Create(ctx, user.ID, project.ID, input)
			if err != nil {
				zl.Fatal("Failed to create task", zap.String("title", t.Title), zap.Error(err))
			}
			if t.Completed {
				if _, err := taskService.MarkCompleted(ctx, user.ID, project.ID, task.Task.ID); err != nil {
					zl.Fatal("Failed to complete task", zap.String("title", t.Title), zap.Error(err))
				}
			}
			created++
		}
	}

	zl.Info("Seed completed",
		zap.String("email", user.Email),
		zap.Int("projects", len(data.Projects)),
		zap.Int("tasks", created),
	)
	fmt.Printf("Authorization: Bearer %s\n", token)
}

func ensureUser(ctx context.Context, authService service.AuthService, data SeedData) (string, *model.User, error) {
	token, user, err := authService.Register(ctx, data.Email, data.Password, data.DisplayName)
	if errors.Is(err, service.ErrUserAlreadyExists) {
		return authService.Login(ctx, data.Email, data.Password)
	}
	return token, user, err
}

func loadSeed(path string) (SeedData, error) {
	if path == "" {
		return defaultSeed, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("read seed file: %w", err)
	}
	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("parse seed file: %w", err)
	}
	return data, nil
}
