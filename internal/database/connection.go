package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"stadtwache/internal/config"
	"stadtwache/internal/domain"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 10 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Open connects to the configured database, migrates every model and seeds the
// singleton configuration rows.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	log = log.Named("db")

	var dialector gorm.Dialector
	if cfg.IsPostgres() {
		log.Info("connecting to PostgreSQL database")
		dialector = postgres.Open(cfg.URL)
	} else {
		path := cfg.GetSQLitePath()
		log.Info("connecting to SQLite database", zap.String("path", path))
		sqlDB, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		// one connection keeps in-memory databases alive
		sqlDB.SetMaxOpenConns(1)
		dialector = sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        path,
			Conn:       sqlDB,
		}
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// statements carry visitor personal data, never log them
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.IsPostgres() {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
		sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
		log.Info("connection pool configured", zap.Int("max_open", maxOpenConns), zap.Int("max_idle", maxIdleConns))
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := Ping(ctx, db); err != nil {
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database connected and migrated")
	return db, nil
}

// Migrate creates or updates every table and seeds missing singletons
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.NewsItem{},
		&domain.Application{},
		&domain.Feedback{},
		&domain.Report{},
		&domain.HomepageConfig{},
		&domain.AboutConfig{},
		&domain.ChatWidgetConfig{},
		&domain.ChatButton{},
		&domain.ChatMessage{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return seedSingletons(db)
}

func seedSingletons(db *gorm.DB) error {
	homepage := domain.DefaultHomepage()
	about := domain.DefaultAbout()
	widget := domain.DefaultChatWidget()

	for _, row := range []any{&homepage, &about, &widget} {
		if err := seedOne(db, row); err != nil {
			return err
		}
	}
	return nil
}

func seedOne(db *gorm.DB, row any) error {
	var count int64
	if err := db.Model(row).Where("id = ?", domain.SingletonID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check singleton: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := db.Create(row).Error; err != nil {
		return fmt.Errorf("failed to seed singleton: %w", err)
	}
	return nil
}

// Ping checks that the database answers
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Stats returns database connection statistics
func Stats(db *gorm.DB) (*sql.DBStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	stats := sqlDB.Stats()
	return &stats, nil
}
