package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/examsecure/examsecure-backend/internal/autosave"
	"github.com/examsecure/examsecure-backend/internal/config"
	"github.com/examsecure/examsecure-backend/internal/database"
	"github.com/examsecure/examsecure-backend/internal/handler"
	"github.com/examsecure/examsecure-backend/internal/integrity"
	"github.com/examsecure/examsecure-backend/internal/logger"
	"github.com/examsecure/examsecure-backend/internal/repository"
	"github.com/examsecure/examsecure-backend/internal/router"
	"github.com/examsecure/examsecure-backend/internal/service"
	"github.com/examsecure/examsecure-backend/internal/session"
	"github.com/examsecure/examsecure-backend/internal/validator"
	"github.com/examsecure/examsecure-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExamSecure Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	studentService := service.NewStudentService(studentRepo, authService, log)
	examService := service.NewExamService(examRepo, attemptRepo, answerRepo, auditRepo, log)
	catalogService := service.NewCatalogService(examRepo, questionRepo)
	auditService := service.NewAuditService(rdb, log)

	// ─── Initialize Session Manager ───────────────────────────────────
	// Snapshot TTL tracks the exam window, not the staleness cutoff, so a
	// snapshot survives in Redis long enough to be judged stale on load.
	snapshotStore := autosave.NewRedisStore(rdb, 24*time.Hour)
	recorder := integrity.NewQueueRecorder(rdb, log)

	manager := session.NewManager(session.ManagerDeps{
		Catalog:  catalogService,
		Attempts: attemptRepo,
		Answers:  answerRepo,
		Audit:    auditService,
		Recorder: recorder,
		NewMonitor: func() session.Monitor {
			return integrity.NewChannelMonitor()
		},
		NewBridge: func() session.SnapshotBridge {
			return autosave.NewBridge(snapshotStore, cfg.AutosaveInterval, cfg.SnapshotMaxAge, log)
		},
		WarningThreshold: cfg.WarningThreshold,
		Log:              log,
	})

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, studentRepo, adminRepo),
		StudentPortal: handler.NewStudentPortalHandler(examService),
		StudentMgmt:   handler.NewStudentManagementHandler(studentService, authService),
		Exam:          handler.NewExamHandler(examService, auditRepo),
		WS:            handler.NewWSHandler(manager, cfg.WarningThreshold, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	auditWorker := worker.NewAuditWorker(pool, rdb, log)
	violationWorker := worker.NewViolationWorker(pool, rdb, log)

	go auditWorker.Start(workerCtx)
	go violationWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Detach live sessions. Snapshots in Redis let students resume after
	// a restart without losing answers.
	manager.CloseAll()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
