package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/adminpro/storefront-admin/models"
)

// Options sizes the process-wide connection pool.
type Options struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	SlowThreshold   time.Duration
	// Log receives gorm's slow query and error lines. Nil discards them.
	Log *log.Logger
}

// Open connects to Postgres through lib/pq and configures the pool.
func Open(opts Options) (*gorm.DB, error) {
	if opts.URL == "" {
		return nil, errors.New("database url is empty")
	}

	gormLogger := logger.Discard
	if opts.Log != nil {
		gormLogger = logger.New(opts.Log, logger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		})
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        opts.URL,
	}), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db pool: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
	return db, nil
}

// Migrate creates or updates the categories and products tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Postgres error codes the admin flows react to.
const (
	foreignKeyViolation pq.ErrorCode = "23503"
)

// IsForeignKeyViolation reports whether err is Postgres refusing a write
// because another row references the target.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}
