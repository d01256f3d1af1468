package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/Leadpipe/leadpipe/config"
	"github.com/Leadpipe/leadpipe/internal/database"
	"github.com/Leadpipe/leadpipe/internal/domain"
	apphttp "github.com/Leadpipe/leadpipe/internal/http"
	"github.com/Leadpipe/leadpipe/internal/http/middleware"
	"github.com/Leadpipe/leadpipe/internal/repository"
	"github.com/Leadpipe/leadpipe/internal/service"
	"github.com/Leadpipe/leadpipe/pkg/logger"
	"github.com/Leadpipe/leadpipe/pkg/telephony"
)

// App wires configuration, database, repositories, services and handlers
// into one HTTP server.
type App struct {
	config *config.Config
	logger logger.Logger
	db     *sql.DB
	mux    *http.ServeMux
	server *http.Server

	// repositories
	userRepo        domain.UserRepository
	contactRepo     domain.ContactRepository
	pipelineRepo    domain.PipelineRepository
	dealRepo        domain.DealRepository
	activityRepo    domain.ActivityRepository
	webhookLogRepo  domain.WebhookLogRepository
	workflowRepo    domain.WorkflowRepository
	taskRepo        domain.TaskRepository
	integrationRepo domain.IntegrationRepository

	// services
	authService        *service.AuthService
	contactService     *service.ContactService
	pipelineService    *service.PipelineService
	dealService        *service.DealService
	activityService    *service.ActivityService
	taskService        *service.TaskService
	workflowService    *service.WorkflowService
	integrationService *service.IntegrationService
	telephonyService   *service.TelephonyService
	webhookService     *service.WebhookService
}

type Option func(*App)

// WithDB injects an existing database handle, mainly for tests.
func WithDB(db *sql.DB) Option {
	return func(a *App) {
		a.db = db
	}
}

func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{
		config: cfg,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.NewLoggerWithLevel(cfg.LogLevel)
	}
	return a
}

// Initialize connects the database, creates the schema and wires everything.
func (a *App) Initialize() error {
	if a.db == nil {
		db, err := database.Connect(&a.config.Database)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		a.db = db
	}
	if err := database.InitializeDatabase(a.db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	a.initRepositories()
	a.initServices()
	a.initHandlers()
	return nil
}

func (a *App) initRepositories() {
	a.userRepo = repository.NewUserRepository(a.db)
	a.contactRepo = repository.NewContactRepository(a.db)
	a.pipelineRepo = repository.NewPipelineRepository(a.db)
	a.dealRepo = repository.NewDealRepository(a.db)
	a.activityRepo = repository.NewActivityRepository(a.db)
	a.webhookLogRepo = repository.NewWebhookLogRepository(a.db)
	a.workflowRepo = repository.NewWorkflowRepository(a.db)
	a.taskRepo = repository.NewTaskRepository(a.db)
	a.integrationRepo = repository.NewIntegrationRepository(a.db)
}

func (a *App) initServices() {
	cfg := a.config

	a.authService = service.NewAuthService(a.userRepo, a.logger, cfg.Security.JWTSecret, cfg.Security.TokenExpiry)
	a.contactService = service.NewContactService(a.contactRepo, a.logger)
	a.pipelineService = service.NewPipelineService(a.pipelineRepo, a.logger)
	a.dealService = service.NewDealService(a.dealRepo, a.pipelineRepo, a.activityRepo, a.logger)
	a.activityService = service.NewActivityService(a.activityRepo)
	a.taskService = service.NewTaskService(a.taskRepo)
	a.workflowService = service.NewWorkflowService(a.workflowRepo, a.taskRepo, a.dealRepo, a.pipelineRepo, a.activityRepo, a.logger)
	a.integrationService = service.NewIntegrationService(a.integrationRepo, a.logger, cfg.Security.SecretKey)

	factory := func(baseURL, apiKey string) service.TelephonyClient {
		if baseURL == "" {
			baseURL = cfg.Telephony.BaseURL
		}
		return telephony.NewClient(baseURL, apiKey,
			telephony.WithTimeout(cfg.Telephony.Timeout),
			telephony.WithMaxRetries(cfg.Telephony.Retries),
		)
	}
	a.telephonyService = service.NewTelephonyService(a.integrationService, a.activityRepo, factory, a.logger)

	var owner domain.OwnerResolver
	if cfg.Webhook.RequireOwner {
		owner = service.NewRequiredOwnerResolver(a.userRepo)
	} else {
		owner = service.NewEarliestUserResolver(a.userRepo, a.logger)
	}
	resolver := service.NewEntityResolver(a.contactRepo, a.pipelineRepo, a.logger)
	a.webhookService = service.NewWebhookService(
		a.webhookLogRepo,
		owner,
		resolver,
		a.dealRepo,
		a.pipelineRepo,
		a.activityRepo,
		a.workflowService,
		a.logger,
	)
}

func (a *App) initHandlers() {
	webhookHandler := apphttp.NewWebhookHandler(a.webhookService, a.webhookLogRepo, a.logger,
		a.config.Webhook.SharedSecret, a.config.Webhook.SecretHeader)
	authHandler := apphttp.NewAuthHandler(a.authService, a.logger)

	// Public surface: webhooks and auth.
	webhookHandler.RegisterRoutes(a.mux)
	authHandler.RegisterRoutes(a.mux)
	a.mux.HandleFunc("/health", a.handleHealth)

	// Authenticated surface.
	secure := http.NewServeMux()
	apphttp.NewContactHandler(a.contactService, a.logger).RegisterRoutes(secure)
	apphttp.NewPipelineHandler(a.pipelineService, a.logger).RegisterRoutes(secure)
	apphttp.NewDealHandler(a.dealService, a.logger).RegisterRoutes(secure)
	apphttp.NewActivityHandler(a.activityService, a.logger).RegisterRoutes(secure)
	apphttp.NewTaskHandler(a.taskService, a.logger).RegisterRoutes(secure)
	apphttp.NewWorkflowHandler(a.workflowService, a.logger).RegisterRoutes(secure)
	apphttp.NewIntegrationHandler(a.integrationService, a.telephonyService, a.logger).RegisterRoutes(secure)
	webhookHandler.RegisterSecureRoutes(secure)

	a.mux.Handle("/api/", middleware.RequireAuth(a.authService, a.logger)(secure))
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","version":%q}`, a.config.Version)
}

// Start runs the HTTP server until it stops or fails.
func (a *App) Start() error {
	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.WithField("addr", addr).Info("server listening")
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Mux exposes the root mux, mainly for tests.
func (a *App) Mux() *http.ServeMux {
	return a.mux
}
