package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"task-automation-api/internal/client"
	"task-automation-api/internal/config"
	"task-automation-api/internal/database"
	"task-automation-api/internal/job"
	"task-automation-api/internal/metrics"
	"task-automation-api/internal/repository"
	"task-automation-api/internal/router"
	"task-automation-api/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Task Automation Service",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("user_api_url", cfg.UserAPI.BaseURL),
	)

	// Initialize metrics
	m := metrics.New()
	logger.Info("Metrics initialized")

	// Initialize database. A failed connection does not abort startup, the
	// pod comes up and retries in the background.
	dbConfig := database.Config{
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Warn("Failed to connect to database on startup, will retry in background",
			zap.Error(err))
		database.NewAsync(dbConfig, 5*time.Second, logger)
	} else {
		database.SetDB(db)
		logger.Info("Database connected successfully")

		if err := database.AutoMigrate(db); err != nil {
			logger.Warn("Failed to run database migrations", zap.Error(err))
		} else {
			logger.Info("Database migrations completed")
		}

		database.RegisterMetricsCallbacks(db, m)
		database.StartDBStatsCollector(db, m)
	}

	// Initialize Redis for due-date scan deduplication. Optional: the
	// scheduler degrades to firing without cross-replica dedupe.
	redisClient, err := database.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, due date scans will not be deduplicated",
			zap.Error(err))
		redisClient = nil
	} else {
		logger.Info("Redis connected successfully")
	}

	// Initialize user client for token validation and assignee checks
	userClient := client.NewUserClient(
		cfg.UserAPI.BaseURL,
		cfg.UserAPI.Timeout,
		logger,
		m,
	)
	logger.Info("User client initialized", zap.String("user_api_url", cfg.UserAPI.BaseURL))

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		DB:         db,
		Logger:     logger,
		JWTSecret:  cfg.JWT.Secret,
		UserClient: userClient,
		BasePath:   cfg.Server.BasePath,
		Metrics:    m,
	})

	// Start the business metrics collector and the due-date scheduler only
	// with a live database connection.
	var scheduler *cron.Cron
	if db != nil {
		collector := metrics.NewBusinessCollector(db, m, logger, 0)
		collector.Start()
		defer collector.Stop()

		if cfg.Scheduler.Enabled {
			taskRepo := repository.NewTaskRepository(db)
			cardRepo := repository.NewCardRepository(db)
			taskRules := repository.NewTaskAutomationRepository(db)
			cardRules := repository.NewCardAutomationRepository(db)
			taskExecutor := service.NewTaskActionExecutor(userClient, logger)
			cardExecutor := service.NewCardActionExecutor(userClient, logger)
			taskAutomation := service.NewTaskAutomationService(db, taskRepo, taskRules, taskExecutor, m, logger)
			cardAutomation := service.NewCardAutomationService(db, cardRepo, cardRules, cardExecutor, m, logger)

			dueDateJob := job.NewDueDateJob(taskRepo, cardRepo, taskAutomation, cardAutomation, redisClient, logger)

			scheduler = cron.New()
			if _, err := scheduler.AddJob(cfg.Scheduler.DueDateCron, dueDateJob); err != nil {
				logger.Error("Failed to schedule due date job",
					zap.String("cron", cfg.Scheduler.DueDateCron),
					zap.Error(err))
			} else {
				scheduler.Start()
				logger.Info("Due date scheduler started",
					zap.String("cron", cfg.Scheduler.DueDateCron))
			}
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Task Automation Service started successfully",
			zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
