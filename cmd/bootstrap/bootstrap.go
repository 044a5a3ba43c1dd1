package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-appointment-service/config"
	deliveryHttp "clinic-appointment-service/internal/delivery/http"
	"clinic-appointment-service/internal/delivery/http/handler"
	"clinic-appointment-service/internal/delivery/http/middleware"
	"clinic-appointment-service/internal/infrastructure/cache"
	"clinic-appointment-service/internal/infrastructure/database"
	"clinic-appointment-service/internal/infrastructure/messaging"
	"clinic-appointment-service/internal/repository"
	"clinic-appointment-service/internal/service"
	"clinic-appointment-service/internal/usecase"
	"clinic-appointment-service/internal/worker"
	"clinic-appointment-service/pkg/jwt"
	"clinic-appointment-service/pkg/validator"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config         *config.Config
	DB             *gorm.DB
	RedisClient    *redis.Client
	RabbitMQ       *amqp.Connection
	EventPublisher service.BookingEventPublisher
	SlotWorker     *worker.SlotGenerationWorker
	Server         *http.Server

	cancelWorker context.CancelFunc
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB); err != nil {
			return nil, err
		}
	}
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize booking events
	if err := app.initEventPublisher(); err != nil {
		app.Close()
		return nil, err
	}

	// Initialize all layers
	server, err := app.initializeServer()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

func (app *App) initEventPublisher() error {
	log := logrus.StandardLogger()

	if !app.Config.RabbitMQ.Enabled {
		app.EventPublisher = service.NewNoopEventPublisher(log)
		return nil
	}

	conn, err := messaging.NewRabbitMQConnection(app.Config.RabbitMQ)
	if err != nil {
		return err
	}
	app.RabbitMQ = conn

	publisher, err := service.NewRabbitMQEventPublisher(conn, app.Config.RabbitMQ.Exchange, log)
	if err != nil {
		return fmt.Errorf("failed to init booking event publisher: %w", err)
	}
	app.EventPublisher = publisher
	return nil
}

// initializeServer wires repositories, services, use cases and handlers into the HTTP server
func (app *App) initializeServer() (*http.Server, error) {
	cfg := app.Config
	db := app.DB
	log := logrus.StandardLogger()

	// Schedule grid shared by the generator and the availability query
	grid, err := service.NewTimeGrid(cfg.Schedule.StartTime, cfg.Schedule.EndTime, cfg.Schedule.Interval)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}
	generator := service.NewSlotGenerator(grid, cfg.Schedule.ProviderID)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	slotRepo := repository.NewSlotRepository()
	patientRepo := repository.NewPatientRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	lockService := service.NewRedisLockService(app.RedisClient, log)

	var bookingGuard service.LockerService
	if cfg.Guard.Enabled {
		bookingGuard = lockService
	}

	// Initialize usecases
	bookingUsecase := usecase.NewAppointmentBookingUsecase(db, log, customValidator, slotRepo, patientRepo, auditService, bookingGuard, cfg.Guard.TTL, app.EventPublisher)
	slotUsecase := usecase.NewSlotUsecase(db, log, slotRepo, patientRepo, auditService, grid, generator, cfg.Schedule.HideLockedSlots)
	patientUsecase := usecase.NewPatientUsecase(db, log, patientRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Background slot generation
	if cfg.Worker.Enabled {
		app.SlotWorker = worker.NewSlotGenerationWorker(log, lockService, slotUsecase, cfg.Worker.CronSpec)
	}

	// Initialize handlers
	appointmentHandler := handler.NewAppointmentHandler(bookingUsecase, slotUsecase, log)
	slotHandler := handler.NewSlotHandler(slotUsecase, customValidator, log)
	patientHandler := handler.NewPatientHandler(patientUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)
	healthHandler := handler.NewHealthHandler(db, app.RedisClient, cfg.App.Env)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	corsMiddleware := middleware.NewCORSMiddleware()
	loggingMiddleware := middleware.NewLoggingMiddleware(log)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	// Initialize router
	router := deliveryHttp.NewRouter(
		appointmentHandler,
		slotHandler,
		patientHandler,
		auditLogHandler,
		healthHandler,
		authMiddleware,
		corsMiddleware,
		loggingMiddleware,
		rateLimiter,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	if app.SlotWorker != nil {
		ctx, cancel := context.WithCancel(context.Background())
		app.cancelWorker = cancel
		app.SlotWorker.Start(ctx)
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close stops the worker and closes all connections (database, redis, rabbitmq)
func (app *App) Close() {
	if app.SlotWorker != nil {
		if app.cancelWorker != nil {
			app.cancelWorker()
		}
		app.SlotWorker.Stop()
	}

	if app.EventPublisher != nil {
		if err := app.EventPublisher.Close(); err != nil {
			logrus.Warnf("Failed to close booking event publisher: %v", err)
		}
	}

	if app.RabbitMQ != nil {
		app.RabbitMQ.Close()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
