package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tasktracker/internal/service"
)

// TaskHandler handles task endpoints nested under a project.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	DueDate     *string `json:"dueDate" example:"2024-03-31"`
}

// UpdateTaskRequest represents a partial task update. Omitted fields are unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	DueDate     *string `json:"dueDate" example:"2024-03-31"`
	Completed   *bool   `json:"completed"`
}

// TaskResponse is a task with its derived fields.
type TaskResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Completed    bool       `json:"completed"`
	DueDate      *string    `json:"dueDate"`
	CompletedAt  *time.Time `json:"completedAt"`
	Overdue      bool       `json:"overdue"`
	ProjectID    string     `json:"projectId"`
	ProjectTitle string     `json:"projectTitle"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func newTaskResponse(d *service.TaskDetails) TaskResponse {
	return TaskResponse{
		ID:           d.Task.ID.String(),
		Title:        d.Task.Title,
		Description:  d.Task.Description,
		Completed:    d.Task.Completed,
		DueDate:      formatDate(d.Task.DueDate),
		CompletedAt:  d.Task.CompletedAt,
		Overdue:      d.Overdue,
		ProjectID:    d.Task.ProjectID.String(),
		ProjectTitle: d.ProjectTitle,
		CreatedAt:    d.Task.CreatedAt,
		UpdatedAt:    d.Task.UpdatedAt,
	}
}

// Create godoc
// @Summary Create a task in a project
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/{projectId}/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(err)
	}
	projectID, err := uuidParam(c, "projectId")
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return err
	}

	task, err := h.taskService.Create(c.Request().Context(), user.ID, projectID, service.NewTask{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, newTaskResponse(task))
}

// List godoc
// @Summary List the tasks of a project
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Success 200 {array} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/{projectId}/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(err)
	}
	projectID, err := uuidParam(c, "projectId")
	if err != nil {
		return err
	}

	tasks, err := h.taskService.List(c.Request().Context(), user.ID, projectID)
	if err != nil {
		return respondError(err)
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, newTaskResponse(&tasks[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Param taskId path string true "Task ID"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/{projectId}/tasks/{taskId} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	userID, projectID, taskID, err := h.taskPath(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.Get(c.Request().Context(), userID, projectID, taskID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newTaskResponse(task))
}

// Update godoc
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Param taskId path string true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to change"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/{projectId}/tasks/{taskId} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	userID, projectID, taskID, err := h.taskPath(c)
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return err
	}

	task, err := h.taskService.Update(c.Request().Context(), userID, projectID, taskID, service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Completed:   req.Completed,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newTaskResponse(task))
}

// Complete godoc
// @Summary Mark a task as completed
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Param taskId path string true "Task ID"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/{projectId}/tasks/{taskId}/complete [patch]
func (h *TaskHandler) Complete(c echo.Context) error {
	userID, projectID, taskID, err := h.taskPath(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.MarkCompleted(c.Request().Context(), userID, projectID, taskID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newTaskResponse(task))
}

// Delete godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Param taskId path string true "Task ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/{projectId}/tasks/{taskId} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	userID, projectID, taskID, err := h.taskPath(c)
	if err != nil {
		return err
	}

	if err := h.taskService.Delete(c.Request().Context(), userID, projectID, taskID); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// taskPath extracts the principal and both path ids of a task route.
func (h *TaskHandler) taskPath(c echo.Context) (userID, projectID, taskID uuid.UUID, err error) {
	user, err := CurrentUser(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, respondError(err)
	}
	if projectID, err = uuidParam(c, "projectId"); err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, err
	}
	if taskID, err = uuidParam(c, "taskId"); err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, err
	}
	return user.ID, projectID, taskID, nil
}
