package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/saswatsusmoy/aarogyaai-backend/internal"
	"github.com/saswatsusmoy/aarogyaai-backend/internal/core/events"
	"github.com/saswatsusmoy/aarogyaai-backend/internal/payment"
	paymentrepo "github.com/saswatsusmoy/aarogyaai-backend/internal/payment/postgres"
	"github.com/saswatsusmoy/aarogyaai-backend/internal/transport/middleware"
	"github.com/saswatsusmoy/aarogyaai-backend/internal/transport/rest"
	"github.com/saswatsusmoy/aarogyaai-backend/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config         *internal.Config
	DB             *sqlx.DB
	Router         *chi.Mux
	PaymentHandler *payment.Handler
	EventBus       *events.EventBus
	Logger         *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if deps.DB != nil {
			if err := deps.DB.Close(); err != nil {
				deps.Logger.Error("database close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	deps.Router.Use(middleware.RequestID)
	deps.Router.Use(middleware.LoggingMiddleware(deps.Logger))

	var sqlDB = deps.DB
	if sqlDB != nil {
		rest.RegisterAllRoutes(deps.Router, sqlDB.DB, deps.PaymentHandler, deps.Logger)
		return
	}
	rest.RegisterAllRoutes(deps.Router, nil, deps.PaymentHandler, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.LoggerWrapper()

	var (
		db   *sqlx.DB
		repo payment.RepositoryAPI
	)
	if config.Database.IsConfigured() {
		db, err = initDB(config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		gormDB, err := initGorm(db)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize orm: %w", err)
		}
		repo = paymentrepo.NewPaymentRepository(gormDB)
	} else {
		// Requests will be answered with explicit STORE_UNCONFIGURED errors.
		log.Warn("no database source configured, payment store is unavailable")
		repo = payment.NewUnconfiguredRepository()
	}

	eventBus := events.NewEventBus(log)
	subscribePaymentEvents(eventBus, log)

	oracle := payment.NewAgingOracle(config.Settlement.AgingThreshold)
	service := payment.NewService(repo, config.Merchant, oracle, eventBus, log)
	reporter := payment.NewReporter(repo, log)
	handler := payment.NewHandler(service, reporter, log)

	return &Dependencies{
		Config:         config,
		DB:             db,
		Router:         chi.NewRouter(),
		PaymentHandler: handler,
		EventBus:       eventBus,
		Logger:         log,
	}, nil
}

// subscribePaymentEvents attaches the in-process consumers of lifecycle
// events. Today these feed the structured log stream; notification channels
// hang off the same subscriptions.
func subscribePaymentEvents(bus *events.EventBus, log *slog.Logger) {
	bus.Subscribe(events.EventTypePaymentInitiated, func(ctx context.Context, event events.Event) error {
		log.Info("payment initiated event",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	bus.Subscribe(events.EventTypePaymentCompleted, func(ctx context.Context, event events.Event) error {
		log.Info("payment completed event",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	bus.Subscribe(events.EventTypePaymentFailed, func(ctx context.Context, event events.Event) error {
		log.Warn("payment failed event",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the existing connection pool so the repository and the
// health check share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
}
