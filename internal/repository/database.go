package repository

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tracker/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

// IsPostgres reports whether a DATABASE_URL points at postgres.
func IsPostgres(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "postgres")
}

func InitDB(databaseURL string) (*gorm.DB, error) {
	var dialer gorm.Dialector
	if IsPostgres(databaseURL) {
		dialer = postgres.Open(databaseURL)
	} else if strings.HasPrefix(databaseURL, "sqlite") {
		dialer = sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://"))
	} else {
		return nil, fmt.Errorf("unsupported database driver: %s", databaseURL)
	}

	db, err := gorm.Open(dialer, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if !IsPostgres(databaseURL) {
		// SQLite serializes writers anyway; a single connection also keeps
		// :memory: databases alive and shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	}

	if err := db.SetupJoinTable(&models.Issue{}, "Labels", &models.IssueLabel{}); err != nil {
		return nil, fmt.Errorf("failed to set up issue_labels: %w", err)
	}

	return db, nil
}

// AutoMigrate creates the tracker tables through gorm. Used for SQLite;
// postgres schemas come from RunMigrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Label{},
		&models.Milestone{},
		&models.Issue{},
		&models.IssueLabel{},
		&models.Comment{},
		&models.AuditLog{},
	)
}

// Migrate brings the schema of db up to date for the given DATABASE_URL.
func Migrate(db *gorm.DB, databaseURL string, logger *slog.Logger) error {
	if IsPostgres(databaseURL) {
		logger.Info("Running database migrations...")
		return RunMigrations(databaseURL, "")
	}
	return AutoMigrate(db)
}

// RunMigrations applies SQL migrations with golang-migrate. An empty
// sourcePath uses the migrations embedded in the binary.
func RunMigrations(databaseURL string, sourcePath string) error {
	var (
		m   *migrate.Migrate
		err error
	)
	if sourcePath == "" {
		src, srcErr := iofs.New(postgresMigrations, "migrations/postgres")
		if srcErr != nil {
			return fmt.Errorf("failed to open embedded migrations: %w", srcErr)
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, databaseURL)
	} else {
		m, err = migrate.New(sourcePath, databaseURL)
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run up migrations: %w", err)
	}

	slog.Info("Database migrations ran successfully")
	return nil
}
