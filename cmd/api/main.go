package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader-api/internal/cache"
	"github.com/noah-isme/gema-grader-api/internal/config"
	"github.com/noah-isme/gema-grader-api/internal/database"
	"github.com/noah-isme/gema-grader-api/internal/events"
	"github.com/noah-isme/gema-grader-api/internal/handler"
	"github.com/noah-isme/gema-grader-api/internal/middleware"
	"github.com/noah-isme/gema-grader-api/internal/models"
	"github.com/noah-isme/gema-grader-api/internal/repository"
	"github.com/noah-isme/gema-grader-api/internal/router"
	"github.com/noah-isme/gema-grader-api/internal/service"
	"github.com/noah-isme/gema-grader-api/pkg/assessor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Task{}, &models.Submission{}, &models.GradingUnit{}, &models.GradingRun{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var assessments cache.AssessmentCache = cache.NewMemoryCache()
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		assessments = cache.NewRedisCache(redisClient, cfg.CacheTTL, logger)
	} else {
		logger.Warn().Msg("no redis url configured, assessment cache is in-memory only")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}
	publisher := events.NewPublisher(natsConn, logger)

	client, err := buildAssessorClient(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create assessor client: %v", err)
	}

	classifier, err := service.NewResponseClassifier()
	if err != nil {
		log.Fatalf("failed to compile assessment schema: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	unitRepo := repository.NewGradingUnitRepository(db)
	runRepo := repository.NewGradingRunRepository(db)

	writer := service.NewResultWriter(assessments, unitRepo, logger)
	planner := service.NewGradingPlanner(assessments, writer, logger)
	dispatcher := service.NewBatchDispatcher(client, cfg.GradingBatchSize, logger)
	retries := service.NewRetryCoordinator(client, classifier, logger)

	taskService := service.NewTaskService(taskRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, taskRepo, validate, logger)
	gradingService := service.NewGradingRunService(
		unitRepo, runRepo,
		planner, dispatcher, classifier, retries, writer,
		service.GradingRunConfig{RetryLimit: cfg.GradingRetryLimit},
		publisher, logger,
	)

	taskHandler := handler.NewTaskHandler(taskService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	gradingHandler := handler.NewGradingHandler(gradingService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		TaskHandler:       taskHandler,
		SubmissionHandler: submissionHandler,
		GradingHandler:    gradingHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildAssessorClient(cfg config.Config, logger zerolog.Logger) (assessor.Client, error) {
	if cfg.AssessorProvider == "openai" {
		return assessor.NewOpenAIClient(assessor.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
	}

	return assessor.NewHTTPClient(assessor.HTTPConfig{
		BaseURL: cfg.AssessorBaseURL,
		APIKey:  cfg.AssessorAPIKey,
		Timeout: cfg.AssessorTimeout,
		Logger:  logger,
	})
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
