// Package main is the entry point for the Student Risk Hub API server.
//
// The API serves risk profiles and cohort summaries to dashboards,
// accepts attendance, exam and fee records from the institution's
// registers, and lets authorized staff trigger assessments and model
// retraining on demand.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edusignal/student-risk-hub/config"
	"github.com/edusignal/student-risk-hub/internal/application/command"
	"github.com/edusignal/student-risk-hub/internal/application/query"
	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/infrastructure/persistence/postgres"
	"github.com/edusignal/student-risk-hub/internal/infrastructure/persistence/redis"
	httpapi "github.com/edusignal/student-risk-hub/internal/interface/http"
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

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Logging
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting Student Risk Hub API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version))

	// ─────────────────────────────────────────────────────────────────────────
	// 3. PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	conn, err := connectPostgres(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Redis (optional)
	// ─────────────────────────────────────────────────────────────────────────
	assessmentCache := connectRedis(cfg, log)
	if assessmentCache != nil {
		defer assessmentCache.Close()
	}

	var writeCache command.AssessmentCache
	var readCache query.AssessmentReadCache
	if assessmentCache != nil {
		ac := redis.NewAssessmentCache(assessmentCache, cfg.Redis.AssessmentTTL, log)
		writeCache = ac
		readCache = ac
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Repositories
	// ─────────────────────────────────────────────────────────────────────────
	studentRepo := postgres.NewStudentRepository(conn)
	academicRepo := postgres.NewAcademicRepository(conn)
	assessmentRepo := postgres.NewAssessmentRepository(conn)
	userRepo := postgres.NewUserRepository(conn)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ML ensemble
	// ─────────────────────────────────────────────────────────────────────────
	store := ml.NewArtifactStore(cfg.ML.ArtifactDir)
	ensemble := ml.NewEnsemble(store, log)
	ensemble.LoadArtifacts()
	log.Info("ML ensemble ready", logger.Int("models", ensemble.ModelCount()))

	// ─────────────────────────────────────────────────────────────────────────
	// 7. Application handlers
	// ─────────────────────────────────────────────────────────────────────────
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

	profileHandler := query.NewGetRiskProfileHandler(studentRepo, assessmentRepo, readCache, log)
	summaryHandler := query.NewGetRiskSummaryHandler(assessmentRepo, readCache, log)
	listHandler := query.NewListAssessmentsHandler(assessmentRepo, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpapi.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.APITokens = cfg.HTTP.APITokens

	server := httpapi.NewServer(httpCfg, httpapi.Dependencies{
		AssessStudentHandler:   assessHandler,
		AssessBatchHandler:     batchHandler,
		TrainModelsHandler:     trainHandler,
		GetRiskProfileHandler:  profileHandler,
		GetRiskSummaryHandler:  summaryHandler,
		ListAssessmentsHandler: listHandler,
		StudentRepo:            studentRepo,
		AssessmentRepo:         assessmentRepo,
		UserRepo:               userRepo,
		Recorder:               academicRepo,
		HealthChecker:          &healthChecker{conn: conn, cache: assessmentCache},
		Logger:                 log,
	})

	errCh := server.StartAsync()
	log.Info("Student Risk Hub API is running", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 9. Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("shutdown completed")
	return nil
}

// connectPostgres maps the application config onto the pool config.
func connectPostgres(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	pgCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	return postgres.NewConnection(ctx, pgCfg)
}

// connectRedis connects to Redis if configured. A broken cache never
// blocks startup: the hub degrades to Postgres-only reads.
func connectRedis(cfg *config.Config, log *logger.Logger) *redis.Cache {
	if cfg.Redis.Disabled {
		return nil
	}

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
		rCfg.PoolSize = cfg.Redis.PoolSize
		rCfg.MinIdleConns = cfg.Redis.MinIdleConns
		rCfg.DialTimeout = cfg.Redis.DialTimeout
		rCfg.ReadTimeout = cfg.Redis.ReadTimeout
		rCfg.WriteTimeout = cfg.Redis.WriteTimeout
		cache, err = redis.NewCache(rCfg)
	}
	if err != nil {
		log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		return nil
	}

	log.Info("Redis connection established")
	return cache
}

// healthChecker aggregates dependency health for /health and /ready.
type healthChecker struct {
	conn  *postgres.Connection
	cache *redis.Cache
}

func (h *healthChecker) Check(ctx context.Context) httpapi.HealthStatus {
	status := httpapi.HealthStatus{
		Healthy:    true,
		Components: map[string]string{},
		CheckedAt:  time.Now().UTC(),
	}

	if db, err := h.conn.Health(ctx); err != nil || !db.Healthy {
		status.Healthy = false
		status.Components["postgres"] = "unhealthy"
	} else {
		status.Components["postgres"] = "healthy"
	}

	// Redis is optional and degraded reads still work, so a broken
	// cache does not fail the health check.
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			status.Components["redis"] = "unhealthy"
		} else {
			status.Components["redis"] = "healthy"
		}
	}

	return status
}
