// Package main is the entry point for the Student Risk Hub worker.
//
// The worker owns the recurring background work: the nightly batch
// assessment that refreshes every active student's risk level, and the
// periodic retraining of the dropout prediction ensemble on recorded
// graduation and dropout outcomes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edusignal/student-risk-hub/config"
	"github.com/edusignal/student-risk-hub/internal/application/command"
	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/infrastructure/persistence/postgres"
	"github.com/edusignal/student-risk-hub/internal/infrastructure/persistence/redis"
	"github.com/edusignal/student-risk-hub/internal/infrastructure/scheduler"
	"github.com/edusignal/student-risk-hub/internal/infrastructure/scheduler/jobs"
	"github.com/edusignal/student-risk-hub/internal/ml"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled, nothing for the worker to do")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Logging
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting Student Risk Hub worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version))

	// ─────────────────────────────────────────────────────────────────────────
	// 3. PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	pgCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	conn, err := postgres.NewConnection(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Redis (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var writeCache command.AssessmentCache
	if !cfg.Redis.Disabled {
		var (
			cache *redis.Cache
			err   error
		)
		if cfg.Redis.URL != "" {
			cache, err = redis.NewCacheFromURL(cfg.Redis.URL)
		} else {
			rCfg := redis.DefaultConfig()
			rCfg.Host = cfg.Redis.Host
			rCfg.Port = cfg.Redis.Port
			rCfg.Password = cfg.Redis.Password
			rCfg.DB = cfg.Redis.DB
			cache, err = redis.NewCache(rCfg)
		}
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer cache.Close()
			writeCache = redis.NewAssessmentCache(cache, cfg.Redis.AssessmentTTL, log)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Repositories, ML and handlers
	// ─────────────────────────────────────────────────────────────────────────
	studentRepo := postgres.NewStudentRepository(conn)
	academicRepo := postgres.NewAcademicRepository(conn)
	assessmentRepo := postgres.NewAssessmentRepository(conn)

	store := ml.NewArtifactStore(cfg.ML.ArtifactDir)
	ensemble := ml.NewEnsemble(store, log)
	ensemble.LoadArtifacts()
	log.Info("ML ensemble ready", logger.Int("models", ensemble.ModelCount()))

	thresholds := risk.Thresholds{
		AttendanceSafe:    cfg.Risk.AttendanceSafe,
		AttendanceWarning: cfg.Risk.AttendanceWarning,
		ScoreSafe:         cfg.Risk.ScoreSafe,
		ScoreWarning:      cfg.Risk.ScoreWarning,
	}

	assessHandler := command.NewAssessStudentHandler(
		studentRepo, academicRepo, assessmentRepo, ensemble, writeCache, thresholds, log)
	batchHandler := command.NewAssessBatchHandler(studentRepo, assessmentRepo, assessHandler, log)
	trainHandler := command.NewTrainModelsHandler(
		studentRepo, academicRepo, ensemble, cfg.ML.MinTrainingRows, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Scheduler
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:     log,
		JobTimeout: cfg.Scheduler.JobTimeout,
	})

	nightly := jobs.NewNightlyAssessmentJob(batchHandler, log)
	if err := sched.Register(nightly, scheduler.NewDailySchedule(cfg.Scheduler.AssessmentHour, cfg.Scheduler.AssessmentMinute)); err != nil {
		return fmt.Errorf("failed to register nightly assessment: %w", err)
	}

	retrain := jobs.NewRetrainModelsJob(trainHandler, cfg.ML.SeedDatasetPath, log)
	if err := sched.Register(retrain, scheduler.NewIntervalSchedule(cfg.Scheduler.RetrainInterval)); err != nil {
		return fmt.Errorf("failed to register model retraining: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.Info("Student Risk Hub worker is running")

	// ─────────────────────────────────────────────────────────────────────────
	// 7. Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.Info("received shutdown signal", logger.String("signal", sig.String()))

	if err := sched.Stop(); err != nil {
		return fmt.Errorf("scheduler stop failed: %w", err)
	}

	log.Info("shutdown completed")
	return nil
}
