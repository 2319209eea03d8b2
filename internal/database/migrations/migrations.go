package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"ms-schedule/internal/config"
	"ms-schedule/internal/logger"
)

// Runner applies the SQL files under the migrations directory. It opens its
// own connection from dsn; closing the migrator closes that connection, so it
// must never be handed the pool the service keeps using.
type Runner struct {
	dsn      string
	options  config.MigrationConfig
	sqldb    *sql.DB
	migrator *migrate.Migrate
	log      *logger.Logger
}

func NewRunner(dsn string, opts config.MigrationConfig, log *logger.Logger) *Runner {
	return &Runner{
		dsn:     dsn,
		options: opts,
		log:     log,
	}
}

// Initialize prepares the migration system
func (r *Runner) Initialize() error {
	if _, err := os.Stat(r.options.Dir); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory does not exist: %s", r.options.Dir)
	}

	sqldb, err := sql.Open("postgres", r.dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	sqldb.SetMaxOpenConns(1)

	driver, err := postgres.WithInstance(sqldb, &postgres.Config{})
	if err != nil {
		sqldb.Close()
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	migrator, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", r.options.Dir),
		"postgres", driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	r.sqldb = sqldb
	r.migrator = migrator
	return nil
}

func (r *Runner) ensure() error {
	if r.migrator != nil {
		return nil
	}
	return r.Initialize()
}

// RunMigrations applies pending migrations, clearing a dirty flag left by an
// interrupted run first.
func (r *Runner) RunMigrations() error {
	if err := r.ensure(); err != nil {
		return err
	}

	version, dirty, err := r.migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		r.log.Warn("MIGRATE", fmt.Sprintf("Detected dirty migration at version %d, forcing", version))
		if err := r.migrator.Force(int(version)); err != nil {
			return fmt.Errorf("failed to fix dirty migration: %w", err)
		}
	}

	if err := r.MigrateUp(); err != nil {
		return err
	}

	version, err = r.Version()
	if err != nil {
		return err
	}
	r.log.Info("MIGRATE", fmt.Sprintf("Current schema version: %d", version))
	return nil
}

func (r *Runner) MigrateUp() error {
	if err := r.ensure(); err != nil {
		return err
	}
	if err := r.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls back all migrations
func (r *Runner) MigrateDown() error {
	if err := r.ensure(); err != nil {
		return err
	}
	if err := r.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// MigrateTo moves the schema up or down to version.
func (r *Runner) MigrateTo(version uint) error {
	if err := r.ensure(); err != nil {
		return err
	}
	if err := r.migrator.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}
	return nil
}

// Version is 0 before the first migration.
func (r *Runner) Version() (uint, error) {
	if err := r.ensure(); err != nil {
		return 0, err
	}
	version, _, err := r.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, nil
}

// Close frees the migrator and the connection it owns.
func (r *Runner) Close() error {
	if r.migrator != nil {
		sourceErr, databaseErr := r.migrator.Close()
		r.migrator, r.sqldb = nil, nil
		if sourceErr != nil {
			return fmt.Errorf("error closing migrator source: %w", sourceErr)
		}
		if databaseErr != nil {
			return fmt.Errorf("error closing migrator database: %w", databaseErr)
		}
	}
	return nil
}
