package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	auditrepo "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/database/books"
	http_controllers "github.com/mrlokans/bookstore/internal/http"
	"github.com/mrlokans/bookstore/internal/scheduler"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds everything Run wires together. Close releases it in reverse order.
type App struct {
	Handler http.Handler

	db          *database.Database
	rateLimiter *http_controllers.RateLimiter
	taskClient  *tasks.Client
	taskCancel  context.CancelFunc
	scheduler   *scheduler.AuditCleanupScheduler
}

// Build opens the database and constructs the HTTP handler with its
// background workers. Workers are started here; call Shutdown to stop them.
func Build(cfg *config.Config, version string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{db: db}

	routerCfg := http_controllers.RouterConfig{
		BookStore:      books.NewRepository(db.DB),
		Database:       db,
		MaxBodyBytes:   cfg.Limits.MaxBodyBytes,
		MetricsEnabled: cfg.Metrics.Enabled,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Version:        version,
	}

	if cfg.Audit.Enabled {
		auditService := audit.NewService(auditrepo.NewRepository(db.DB))
		routerCfg.AuditLogger = auditService

		var queue scheduler.TaskEnqueuer
		if cfg.Tasks.Enabled {
			taskClient, err := tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks))
			if err != nil {
				app.Close()
				return nil, fmt.Errorf("failed to initialize task queue: %w", err)
			}
			app.taskClient = taskClient
			log.Printf("Task queue database: %s", taskClient.Path())

			taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService))

			var taskCtx context.Context
			taskCtx, app.taskCancel = context.WithCancel(context.Background())
			go taskClient.Start(taskCtx)

			queue = taskClient
		}

		app.scheduler = scheduler.NewAuditCleanupScheduler(auditService, queue, cfg.Audit)
		if err := app.scheduler.Start(context.Background()); err != nil {
			app.Shutdown(context.Background())
			app.Close()
			return nil, err
		}
	} else {
		log.Printf("Audit trail disabled")
	}

	if cfg.RateLimit.Enabled {
		app.rateLimiter = http_controllers.NewRateLimiter(cfg.RateLimit)
		routerCfg.RateLimiter = app.rateLimiter
		log.Printf("Rate limiting enabled: %.1f req/s, burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	var handler http.Handler = http_controllers.NewRouter(routerCfg)
	if cfg.Metrics.Enabled {
		handler = http_controllers.MetricsHandler(handler)
	}
	app.Handler = handler

	return app, nil
}

// Shutdown stops the scheduler and waits for queued work within ctx.
func (a *App) Shutdown(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.taskClient != nil && a.taskCancel != nil {
		a.taskClient.Stop(ctx)
		a.taskCancel()
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
}

// Close releases the task and main databases.
func (a *App) Close() {
	if a.taskClient != nil {
		if err := a.taskClient.Close(); err != nil {
			log.Printf("Error closing task client: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before background workers go away
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookstore v%s", version)

	app, err := Build(cfg, version)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	Serve(app.Handler, cfg, app.Shutdown)
}
