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
	"github.com/rs/zerolog"

	"github.com/noah-isme/tahfiz-go-api/internal/config"
	"github.com/noah-isme/tahfiz-go-api/internal/database"
	"github.com/noah-isme/tahfiz-go-api/internal/handler"
	"github.com/noah-isme/tahfiz-go-api/internal/middleware"
	"github.com/noah-isme/tahfiz-go-api/internal/models"
	"github.com/noah-isme/tahfiz-go-api/internal/repository"
	"github.com/noah-isme/tahfiz-go-api/internal/router"
	"github.com/noah-isme/tahfiz-go-api/internal/service"
	"github.com/noah-isme/tahfiz-go-api/pkg/quran"
	"github.com/noah-isme/tahfiz-go-api/pkg/whatsapp"
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

	if err := db.AutoMigrate(
		&models.Curriculum{},
		&models.CurriculumLevel{},
		&models.CurriculumPlan{},
		&models.Student{},
		&models.StudentCurriculum{},
		&models.StudentCurriculumProgress{},
		&models.RecitationSession{},
		&models.RecitationError{},
		&models.CurriculumAlert{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, alert events disabled")
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	reference := quran.NewMemory()

	notifier := whatsapp.NewClient(whatsapp.Config{
		GatewayURL: cfg.WhatsAppGatewayURL,
		APIToken:   cfg.WhatsAppAPIToken,
	}, logger)

	curriculumRepo := repository.NewCurriculumRepository(db)
	assignmentRepo := repository.NewStudentCurriculumRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	contentService := service.NewDailyContentService(assignmentRepo, sessionRepo, reference, redisClient, cfg.ContentCacheTTL, cfg.Engine, logger)
	analyzer := service.NewPerformanceAnalyzer(cfg.Engine)
	scorer := service.NewReadinessScorer(cfg.Engine)
	alertService := service.NewAlertService(alertRepo, assignmentRepo, curriculumRepo, studentRepo, contentService, notifier, natsConn, validate, cfg.Engine, logger)
	evaluationService := service.NewEvaluationService(assignmentRepo, sessionRepo, analyzer, scorer, alertService, cfg.Engine, cfg.SweepWorkers, logger)
	recitationService := service.NewRecitationService(sessionRepo, studentRepo, curriculumRepo, progressRepo, assignmentRepo, contentService, evaluationService, reference, validate, cfg.Engine, logger)
	curriculumService := service.NewCurriculumService(curriculumRepo, reference, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, progressRepo, curriculumRepo, studentRepo, reference, validate, logger)

	curriculumHandler := handler.NewCurriculumHandler(curriculumService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	sessionHandler := handler.NewSessionHandler(recitationService, logger)
	contentHandler := handler.NewContentHandler(contentService, logger)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, logger)
	alertHandler := handler.NewAlertHandler(alertService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CurriculumHandler: curriculumHandler,
		AssignmentHandler: assignmentHandler,
		SessionHandler:    sessionHandler,
		ContentHandler:    contentHandler,
		EvaluationHandler: evaluationHandler,
		AlertHandler:      alertHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
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
