package v1

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tracklin/internal/repository"
	"github.com/adanyl0v/tracklin/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleTodoList(c *gin.Context)
	HandleSchedule(c *gin.Context)

	HandleReconcileTimer(c *gin.Context)

	HandleLiveness(c *gin.Context)
	HandleReadiness(c *gin.Context)
}

type Options struct {
	// Location decides today's date for clients that don't send theirs.
	Location *time.Location
	// Store is pinged by /readyz when set.
	Store repository.Pinger
	// SecureCookies marks the token cookies Secure.
	SecureCookies bool
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	tasks  services.TaskService
	opts   Options
	now    func() time.Time
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	opts Options,
) Handler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &handlerImpl{
		logger: logger,
		auth:   authService,
		tasks:  taskService,
		opts:   opts,
		now:    time.Now,
	}
}

// RegisterRoutes mounts the API. authGuards run in front of the
// unauthenticated auth endpoints, e.g. a rate limiter.
func RegisterRoutes(router gin.IRouter, h Handler, authGuards ...gin.HandlerFunc) {
	router.GET("/healthz", h.HandleLiveness)
	router.GET("/readyz", h.HandleReadiness)

	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(slices.Clone(authGuards), handler)
	}

	authRouter := router.Group("/auth")
	authRouter.POST("/login", guarded(h.HandleLogin)...)
	authRouter.POST("/refresh", guarded(h.HandleRefresh)...)
	authRouter.POST("/register", guarded(h.HandleRegister)...)
	authRouter.POST("/logout", h.HandleAuthMiddleware, h.HandleLogout)

	router.POST("/timer/reconcile", h.HandleReconcileTimer)

	protected := router.Group("", h.HandleAuthMiddleware)
	protected.GET("/todolist", h.HandleTodoList)
	protected.GET("/schedule", h.HandleSchedule)

	tasksRouter := protected.Group("/tasks")
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.PUT("/:id", h.HandleUpdateTask)
	tasksRouter.PATCH("/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)
}
