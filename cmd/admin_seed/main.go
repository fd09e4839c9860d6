package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"iprofit/internal/config"
	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/settings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	reset := flag.Bool("reset", false, "drop every table before seeding")
	flag.Parse()

	config.LoadEnv()
	cfg := config.Load()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminName := os.Getenv("ADMIN_NAME")
	if adminName == "" {
		adminName = "Super Admin"
	}
	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}
	if len(adminPassword) < 8 {
		log.Fatal("ADMIN_PASSWORD must be at least 8 characters")
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := repositories.InitDB(cfg, zl)
	if err != nil {
		zl.Fatal("database init failed", zap.Error(err))
	}
	if *reset {
		if cfg.IsProduction() {
			zl.Fatal("refusing to reset a production database")
		}
		if err := repositories.DropAllTables(db); err != nil {
			zl.Fatal("drop tables failed", zap.Error(err))
		}
		if db, err = repositories.InitDB(cfg, zl); err != nil {
			zl.Fatal("database re-init failed", zap.Error(err))
		}
		zl.Warn("all tables dropped and recreated")
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	store := repositories.NewStore(db, nil)

	if err := seedSettings(ctx, store); err != nil {
		zl.Fatal("seeding settings failed", zap.Error(err))
	}

	_, err = store.Admins().GetByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		zl.Info("admin already exists", zap.String("email", adminEmail))
		return
	case !errors.Is(err, repositories.ErrAdminNotFound):
		zl.Fatal("admin lookup failed", zap.Error(err))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		zl.Fatal("failed to hash password", zap.Error(err))
	}
	admin := &models.Admin{
		Name:         adminName,
		Email:        adminEmail,
		Password:     string(hashed),
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
		TokenVersion: 1,
	}
	if err := store.Admins().Create(ctx, admin); err != nil {
		zl.Fatal("failed to create admin", zap.Error(err))
	}
	zl.Info("super admin created", zap.Uint("id", admin.ID), zap.String("email", adminEmail))
}

// seedSettings stores the defaults that have no row yet. Existing values are left alone.
func seedSettings(ctx context.Context, store repositories.Store) error {
	existing, err := store.Settings().All(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, s := range existing {
		have[s.Key] = true
	}
	var missing []models.Setting
	for key, def := range settings.Defaults {
		if !have[key] {
			missing = append(missing, def)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return store.Settings().Upsert(ctx, missing)
}
