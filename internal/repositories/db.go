// Package repositories provides data access layer implementations.
// It handles all database operations and data persistence logic.
package repositories

import (
	"fmt"
	"time"

	"iprofit/internal/config"
	"iprofit/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AllModels lists every table the service owns, in migration order.
var AllModels = []interface{}{
	&models.Plan{},
	&models.Admin{},
	&models.User{},
	&models.Device{},
	&models.Transaction{},
	&models.Referral{},
	&models.Loan{},
	&models.LoanRepayment{},
	&models.Task{},
	&models.TaskSubmission{},
	&models.Notification{},
	&models.News{},
	&models.SupportTicket{},
	&models.TicketMessage{},
	&models.FAQ{},
	&models.AuditLog{},
	&models.Setting{},
}

// DSN builds the postgres connection string from config.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
}

// InitDB opens the connection pool and applies migrations.
func InitDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:         newGormLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.DBConnIdleTime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("PostgreSQL connected and migrations applied",
		zap.String("host", cfg.DBHost), zap.String("database", cfg.DBName))
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// DropAllTables removes every table; used by the seed tool's reset flag.
func DropAllTables(db *gorm.DB) error {
	return db.Migrator().DropTable(AllModels...)
}

func newGormLogger(log *zap.Logger) logger.Interface {
	return logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
