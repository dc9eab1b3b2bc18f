package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	authdomain "github.com/smallbiznis/clientbase/internal/auth/domain"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	companydomain "github.com/smallbiznis/clientbase/internal/company/domain"
	paymentdomain "github.com/smallbiznis/clientbase/internal/payment/domain"
	plandomain "github.com/smallbiznis/clientbase/internal/plan/domain"
	"gorm.io/gorm"
)

// Models lists every table owned by the service in dependency order.
func Models() []any {
	return []any{
		&companydomain.Company{},
		&authdomain.User{},
		&plandomain.Plan{},
		&clientdomain.Client{},
		&paymentdomain.Payment{},
	}
}

// Run brings the schema up to date. Postgres uses the versioned SQL files;
// other dialects are only used for local work and fall back to AutoMigrate.
func Run(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if conn.Dialector.Name() != "postgres" {
		return conn.AutoMigrate(Models()...)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// migrator.Close would close the shared *sql.DB

	return nil
}
