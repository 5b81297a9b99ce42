package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CalumRakk/resume-project/config"
	_ "github.com/CalumRakk/resume-project/docs" // Important for Swagger
	"github.com/CalumRakk/resume-project/internal/delivery/http/middleware"
	v1 "github.com/CalumRakk/resume-project/internal/delivery/http/v1"
	"github.com/CalumRakk/resume-project/internal/repository/postgres"
	"github.com/CalumRakk/resume-project/internal/usecase"
	"github.com/CalumRakk/resume-project/pkg/auth"
	"github.com/CalumRakk/resume-project/pkg/database"
	"github.com/CalumRakk/resume-project/pkg/logger"
	"github.com/CalumRakk/resume-project/pkg/redis"
	"github.com/CalumRakk/resume-project/pkg/security"

	"github.com/jackc/pgx/v5/pgxpool"
)

// @title           Resume API
// @version         1.0
// @description     Resume builder backend with client-bound JWTs.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	secLog := security.InitSecurityLogger("resume-api", cfg.Environment)
	logger.Log.Info("Starting resume backend", "port", cfg.Port, "env", cfg.Environment)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, cfg.DBMaxConns)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	applied, err := database.Migrate(ctx, dbPool)
	if err != nil {
		logger.Log.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}
	if len(applied) > 0 {
		logger.Log.Info("Applied migrations", "files", applied)
	}

	// 4. Setup Redis (optional)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		if errors.Is(err, redis.ErrNotConfigured) {
			logger.Log.Warn("Redis not configured, using in-memory stores")
		} else {
			logger.Log.Error("Redis unavailable, using in-memory stores", "error", err)
		}
	}
	defer redis.Close()

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	resumeRepo := postgres.NewResumeRepository(dbPool)
	skillRepo := postgres.NewSkillRepository(dbPool)
	experienceRepo := postgres.NewExperienceRepository(dbPool)
	templateRepo := postgres.NewTemplateRepository(dbPool)
	customizationRepo := postgres.NewCustomizationRepository(dbPool)

	var eventRepo *postgres.SecurityEventRepository
	if cfg.SecurityLogToDB {
		eventRepo = postgres.NewSecurityEventRepository(dbPool)
		secLog.SetPersistFunc(eventRepo.PersistEvent)
	}

	// 6. Setup Token Binding
	blacklist := newBlacklist(ctx, cfg, dbPool)
	tokens := auth.NewTokenManager(auth.TokenConfig{
		SigningKey: []byte(cfg.JWTSigningKey),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	}, blacklist)
	validator := auth.NewValidator(tokens, auth.ValidatorConfig{
		ExcludedPathPrefixes: cfg.BindingExcludedPaths,
	})

	tracker := security.NewLoginTracker(security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: cfg.RateLimitWindow(),
		BlockDuration: cfg.FailedLoginBlock(),
	}, redis.Client(), secLog)

	// 7. Setup UseCases
	authUC := usecase.NewAuthUsecase(userRepo, tokens, validator, tracker, secLog)
	resumeUC := usecase.NewResumeUsecase(resumeRepo, skillRepo, experienceRepo, templateRepo)
	templateUC := usecase.NewTemplateUsecase(templateRepo, customizationRepo, resumeRepo)

	checks := map[string]usecase.HealthCheck{"database": dbPool.Ping}
	if redis.Client() != nil {
		checks["redis"] = redis.HealthCheck
	}
	healthUC := usecase.NewHealthUsecase(checks)

	limiter := middleware.NewRateLimiter(redis.Client(), secLog)
	limiter.StartCleanup(ctx, time.Minute)

	// 8. Setup Router
	deps := v1.RouterDeps{
		AuthUC:      authUC,
		ResumeUC:    resumeUC,
		TemplateUC:  templateUC,
		HealthUC:    healthUC,
		Validator:   validator,
		RateLimiter: limiter,
		SecurityLog: secLog,
		Config:      cfg,
	}
	if eventRepo != nil {
		deps.SecurityEvents = eventRepo
	}
	router := v1.NewRouter(deps)

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	stop()
	secLog.Wait()
	_ = secLog.Sync()

	logger.Log.Info("Server exiting")
}

// newBlacklist picks the refresh token blacklist store. Redis falls back to
// memory when no client is configured.
func newBlacklist(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) auth.Blacklist {
	switch cfg.BlacklistBackend {
	case "postgres":
		repo := postgres.NewTokenBlacklistRepository(pool)
		go purgeExpired(ctx, repo)
		return repo
	case "redis":
		if client := redis.Client(); client != nil {
			return auth.NewRedisBlacklist(client)
		}
		logger.Log.Warn("BLACKLIST_BACKEND=redis without REDIS_URL, falling back to memory")
	}
	bl := auth.NewMemoryBlacklist()
	bl.StartSweeper(ctx, time.Minute)
	return bl
}

func purgeExpired(ctx context.Context, repo *postgres.TokenBlacklistRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				logger.Log.Error("Failed to purge token blacklist", "error", err)
				continue
			}
			if n > 0 {
				logger.Log.Info("Purged expired blacklist entries", "count", n)
			}
		}
	}
}
