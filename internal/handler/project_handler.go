package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"tasktracker/internal/service"
)

// ProjectHandler handles project endpoints.
type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProjectRequest represents a project creation request.
type CreateProjectRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// UpdateProjectRequest represents a partial project update. Omitted fields are unchanged.
type UpdateProjectRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

// ProjectResponse is a project with its task counts.
type ProjectResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	OwnerID            string    `json:"ownerId"`
	TotalTasks         int       `json:"totalTasks"`
	CompletedTasks     int       `json:"completedTasks"`
	ProgressPercentage float64   `json:"progressPercentage"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ProgressResponse is the progress report of a project.
type ProgressResponse struct {
	ProjectID    string  `json:"projectId"`
	ProjectTitle string  `json:"projectTitle"`
	Total        int     `json:"total"`
	Completed    int     `json:"completed"`
	Incomplete   int     `json:"incomplete"`
	Percentage   float64 `json:"percentage"`
}

func newProjectResponse(d *service.ProjectDetails) ProjectResponse {
	return ProjectResponse{
		ID:                 d.Project.ID.String(),
		Title:              d.Project.Title,
		Description:        d.Project.Description,
		OwnerID:            d.Project.OwnerID.String(),
		TotalTasks:         d.Progress.Total,
		CompletedTasks:     d.Progress.Completed,
		ProgressPercentage: d.Progress.Percentage,
		CreatedAt:          d.Project.CreatedAt,
		UpdatedAt:          d.Project.UpdatedAt,
	}
}

// Create godoc
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProjectRequest true "Project data"
// @Success 201 {object} ProjectResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(err)
	}

	var req CreateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.projectService.Create(c.Request().Context(), user.ID, req.Title, req.Description)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusCreated, newProjectResponse(&service.ProjectDetails{Project: *project}))
}

// List godoc
// @Summary List own projects, newest first
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ProjectResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(err)
	}

	projects, err := h.projectService.List(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(err)
	}

	resp := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		resp = append(resp, newProjectResponse(&projects[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	details, err := h.projectService.Get(c.Request().Context(), id, user.ID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newProjectResponse(details))
}

// Update godoc
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body UpdateProjectRequest true "Fields to change"
// @Success 200 {object} ProjectResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	details, err := h.projectService.Update(c.Request().Context(), id, user.ID, service.ProjectPatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newProjectResponse(details))
}

// Delete godoc
// @Summary Delete a project and all of its tasks
// @Tags projects
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.projectService.Delete(c.Request().Context(), id, user.ID); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Progress godoc
// @Summary Project completion progress
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} ProgressResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /projects/{id}/progress [get]
func (h *ProjectHandler) Progress(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	report, err := h.projectService.Progress(c.Request().Context(), id, user.ID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, ProgressResponse{
		ProjectID:    report.ProjectID.String(),
		ProjectTitle: report.ProjectTitle,
		Total:        report.Total,
		Completed:    report.Completed,
		Incomplete:   report.Incomplete,
		Percentage:   report.Percentage,
	})
}
