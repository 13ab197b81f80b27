package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/domain/models"
	"taskboard/internal/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
)

// UserRepository is the credential store.
type UserRepository interface {
	// CreateUser assigns user.ID. Fails with ErrUserAlreadyExists when the
	// email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// TaskRepository is the shared task collection. Tasks have no owner.
type TaskRepository interface {
	// CreateTask assigns task.ID.
	CreateTask(ctx context.Context, task *models.Task) error
	GetTasks(ctx context.Context) ([]models.Task, error)
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	// UpdateTask replaces title, description and priority, then fills task
	// with the stored record.
	UpdateTask(ctx context.Context, id string, task *models.Task) error
	DeleteTask(ctx context.Context, id string) error
}

type TaskAPI struct {
	httpSrv  *http.Server
	users    UserRepository
	tasks    TaskRepository
	tokens   *auth.TokenManager
	hasher   *auth.PasswordHasher
	validate *validator.Validate
	log      logging.Logger
	now      func() time.Time

	// dummyHash is compared against on logins for unknown emails so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewTaskAPI(users UserRepository, tasks TaskRepository, cfg *Config, log logging.Logger) (*TaskAPI, error) {
	if users == nil || tasks == nil {
		return nil, fmt.Errorf("task api: repositories are required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("task api: config is required")
	}
	if log == nil {
		log = logging.Discard()
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("task api: %w", err)
	}

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("task api: %w", err)
	}

	api := &TaskAPI{
		httpSrv:   &http.Server{Addr: cfg.ListenAddr(), ReadHeaderTimeout: 10 * time.Second},
		users:     users,
		tasks:     tasks,
		tokens:    tokens,
		hasher:    hasher,
		validate:  newValidator(),
		log:       log,
		now:       time.Now,
		dummyHash: dummy,
	}
	api.configRoutes(cfg)

	return api, nil
}

func (api *TaskAPI) Handler() http.Handler {
	return api.httpSrv.Handler
}

// Start blocks serving HTTP until Shutdown is called.
func (api *TaskAPI) Start() error {
	api.log.Info(context.Background(), "server listening", "addr", api.httpSrv.Addr)
	if err := api.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (api *TaskAPI) Shutdown(ctx context.Context) error {
	return api.httpSrv.Shutdown(ctx)
}

func (api *TaskAPI) configRoutes(cfg *Config) {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(
		gin.Recovery(),
		RequestLogger(api.log),
		corsMiddleware(cfg),
		GzipRequestDecompress(),
		GzipResponseCompress(),
	)

	router.NoRoute(func(ctx *gin.Context) {
		abort(ctx, notFound(msgRouteNotFound))
	})
	router.NoMethod(func(ctx *gin.Context) {
		abort(ctx, invalid(msgMethodNotAllowed).withStatus(http.StatusMethodNotAllowed))
	})

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.routes(router.Group("/api"))

	api.httpSrv.Handler = router
}

func (api *TaskAPI) routes(r *gin.RouterGroup) {
	r.POST("/register", ValidateEmail(), ValidatePassword(), api.handle(api.register))
	r.POST("/login", ValidateEmail(), ValidatePassword(), api.handle(api.login))
	r.POST("/forgotpassword", ValidateEmail(), api.handle(api.forgotPassword))
	r.POST("/resetpassword", ValidateEmail(), ValidatePassword(), api.handle(api.resetPassword))

	protected := r.Group("", api.requireAuth())
	{
		protected.POST("/profile", api.handle(api.profile))

		protected.POST("/addtask", api.handle(api.createTask))
		protected.POST("/alltasks", api.handle(api.getTasks))
		protected.POST("/singletask/:id", api.handle(api.getTaskByID))
		protected.PUT("/updatetask/:id", api.handle(api.updateTask))
		protected.DELETE("/deletetask/:id", api.handle(api.deleteTask))
	}
}

func corsMiddleware(cfg *Config) gin.HandlerFunc {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Content-Encoding", "Accept", "Authorization", requestIDHeader}
	c.ExposeHeaders = []string{requestIDHeader}

	origins := cfg.AllowedOrigins()
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}

// handle adapts a result-returning handler to gin.
func (api *TaskAPI) handle(fn func(*gin.Context) result) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		api.respond(ctx, fn(ctx))
	}
}

func (api *TaskAPI) respond(ctx *gin.Context, r result) {
	api.logResult(ctx, r)
	ctx.JSON(r.status, r.payload())
}

func (api *TaskAPI) reject(ctx *gin.Context, r result) {
	api.logResult(ctx, r)
	abort(ctx, r)
}

func abort(ctx *gin.Context, r result) {
	ctx.AbortWithStatusJSON(r.status, r.payload())
}

// logResult records failures that need server-side detail. Validation and
// not-found outcomes are ordinary and are left to the request log.
func (api *TaskAPI) logResult(ctx *gin.Context, r result) {
	switch r.kind {
	case kindInternal:
		api.log.Error(ctx.Request.Context(), "request failed",
			"request_id", requestID(ctx),
			"path", ctx.FullPath(),
			"error", r.cause,
		)
	case kindInvalidToken:
		api.log.Warn(ctx.Request.Context(), "token rejected",
			"request_id", requestID(ctx),
			"error", r.cause,
		)
	}
}
