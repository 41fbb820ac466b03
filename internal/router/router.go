package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"tasktracker/internal/auth"
	"tasktracker/internal/handler"
)

// Handlers bundles the HTTP handlers served by the API.
type Handlers struct {
	Auth     *handler.AuthHandler
	Projects *handler.ProjectHandler
	Tasks    *handler.TaskHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	logger *zap.Logger,
	tokens *auth.TokenService,
	resolver *auth.PrincipalResolver,
	h Handlers,
) {
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	e.Use(requestMetrics())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// Secured routes (require a bearer token naming a live user)
	secured := api.Group("",
		echojwt.WithConfig(jwtConfig(tokens)),
		resolvePrincipal(resolver, logger),
	)

	secured.GET("/auth/me", h.Auth.Me)

	// Project routes
	secured.GET("/projects", h.Projects.List)
	secured.POST("/projects", h.Projects.Create)
	secured.GET("/projects/:id", h.Projects.Get)
	secured.PUT("/projects/:id", h.Projects.Update)
	secured.DELETE("/projects/:id", h.Projects.Delete)
	secured.GET("/projects/:id/progress", h.Projects.Progress)

	// Task routes
	secured.GET("/projects/:projectId/tasks", h.Tasks.List)
	secured.POST("/projects/:projectId/tasks", h.Tasks.Create)
	secured.GET("/projects/:projectId/tasks/:taskId", h.Tasks.Get)
	secured.PUT("/projects/:projectId/tasks/:taskId", h.Tasks.Update)
	secured.DELETE("/projects/:projectId/tasks/:taskId", h.Tasks.Delete)
	secured.PATCH("/projects/:projectId/tasks/:taskId/complete", h.Tasks.Complete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
