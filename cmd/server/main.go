// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iprofit/internal/config"
	"iprofit/internal/handlers"
	"iprofit/internal/logger"
	"iprofit/internal/metrics"
	"iprofit/internal/middleware"
	"iprofit/internal/repositories"
	"iprofit/internal/repositories/cache"
	"iprofit/internal/routes"
	"iprofit/internal/services/audit"
	"iprofit/internal/services/auth"
	"iprofit/internal/services/dashboard"
	"iprofit/internal/services/email"
	"iprofit/internal/services/events"
	"iprofit/internal/services/fee"
	"iprofit/internal/services/gateway"
	"iprofit/internal/services/loan"
	"iprofit/internal/services/news"
	"iprofit/internal/services/notification"
	"iprofit/internal/services/plan"
	"iprofit/internal/services/referral"
	"iprofit/internal/services/scheduler"
	"iprofit/internal/services/settings"
	"iprofit/internal/services/support"
	"iprofit/internal/services/task"
	"iprofit/internal/services/transaction"
	"iprofit/internal/services/user"
	"iprofit/internal/utils"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

// main initializes and starts the HTTP server.
// It performs the following setup:
// - Loads configuration
// - Initializes database and cache connections
// - Sets up dependency injection
// - Configures routes and scheduled jobs
// - Starts the HTTP server and waits for a shutdown signal
func main() {
	config.LoadEnv()
	cfg := config.Load()

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := repositories.InitDB(cfg, zl)
	if err != nil {
		zl.Fatal("database init failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zl.Fatal("failed to get database instance", zap.Error(err))
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			zl.Warn("failed to close database connection", zap.Error(err))
		}
	}()

	// Redis is optional: without it user lookups and dashboard snapshots go to the database.
	var (
		cacheSvc  *cache.CacheService
		dashCache dashboard.Cache
		inspector handlers.CacheInspector
	)
	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:         cfg.RedisHost,
		Port:         cfg.RedisPort,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     20,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	cacheSvc = cache.NewCacheService(redisClient, cfg.RedisDefaultTTL)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := cacheSvc.HealthCheck(pingCtx); err != nil {
		zl.Warn("redis unavailable, continuing without cache", zap.Error(err))
		_ = cacheSvc.Close()
		cacheSvc = nil
	} else {
		dashCache, inspector = cacheSvc, cacheSvc
		zl.Info("redis connected", zap.String("host", cfg.RedisHost))
	}
	cancelPing()
	defer func() {
		if cacheSvc != nil {
			if err := cacheSvc.Close(); err != nil {
				zl.Warn("failed to close redis connection", zap.Error(err))
			}
		}
	}()

	publisher, err := events.Connect(cfg.NATSURL, zl)
	if err != nil {
		zl.Warn("events disabled", zap.Error(err))
		publisher = events.NoopPublisher{}
	}
	defer publisher.Close()

	store := repositories.NewStore(db, cacheSvc)
	settingsSvc := settings.NewService(store, publisher, cfg.SettingsCacheTTL, zl)

	mailer, err := email.NewService(email.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		From:      cfg.SMTPFrom,
		Platform:  settingsSvc.String(context.Background(), settings.KeyPlatformName),
		PerSecond: cfg.EmailPerSec,
	}, nil, zl)
	if err != nil {
		zl.Fatal("email init failed", zap.Error(err))
	}
	defer mailer.Close()

	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		zl.Fatal("token issuer init failed", zap.Error(err))
	}

	authSvc := auth.NewService(store, tokens, settingsSvc, zl)
	userSvc := user.NewService(store, mailer, publisher, zl)
	txSvc := transaction.NewService(
		store,
		settingsSvc,
		fee.NewCalculator(settingsSvc),
		gateway.NewStripeVerifier(cfg.StripeSecretKey, zl),
		mailer,
		publisher,
		zl,
	)
	loanSvc := loan.NewService(store, settingsSvc, mailer, publisher, zl)

	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authSvc, cfg.IsProduction(), cfg.RefreshTokenTTL),
		Users:         handlers.NewUserHandler(userSvc),
		Transactions:  handlers.NewTransactionHandler(txSvc),
		Settings:      handlers.NewSettingsHandler(settingsSvc),
		Referrals:     handlers.NewReferralHandler(referral.NewService(store, zl)),
		Plans:         handlers.NewPlanHandler(plan.NewService(store, zl)),
		Loans:         handlers.NewLoanHandler(loanSvc),
		Tasks:         handlers.NewTaskHandler(task.NewService(store, zl)),
		Notifications: handlers.NewNotificationHandler(notification.NewService(store, mailer, zl)),
		News:          handlers.NewNewsHandler(news.NewService(store, zl)),
		Support:       handlers.NewSupportHandler(support.NewService(store, zl)),
		Audit:         handlers.NewAuditHandler(audit.NewService(store.Audit())),
		Dashboard:     handlers.NewDashboardHandler(dashboard.NewService(store, dashCache, zl)),
		Health:        handlers.NewHealthHandler(sqlDB, inspector, version),
	}

	var jobs *scheduler.Scheduler
	if cfg.CronEnabled {
		jobs, err = scheduler.New(scheduler.Jobs{
			Loans:       loanSvc,
			Settings:    settingsSvc,
			Withdrawals: txSvc,
		}, settingsSvc.TTL(), zl)
		if err != nil {
			zl.Fatal("scheduler init failed", zap.Error(err))
		}
		jobs.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      "iProfit Admin API " + version,
		ErrorHandler: response.ErrorHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(metrics.Middleware())

	routes.SetupRoutes(app, h, middleware.NewAuthMiddleware(authSvc, zl), settingsSvc)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("server stopped", zap.Error(err))
		}
	}()
	zl.Info("server started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if jobs != nil {
		jobs.Stop(ctx)
	}
	if err := app.ShutdownWithContext(ctx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
