package postgres

import (
	"embed"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var supportedDrivers = map[string]struct{}{
	"postgres":   {},
	"postgresql": {},
}

var _ migrate.Logger = (*migrateLogger)(nil)

type migrateLogger struct {
	logger *zap.SugaredLogger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// MigrateUp applies all up migrations, or n of them when n > 0.
func MigrateUp(dsn string, n int, logger *zap.Logger) error {
	m, err := newMigrate(dsn, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	if n == 0 {
		m.Log.Printf("Applying up migrations...\n")
		err = m.Up()
	} else {
		m.Log.Printf("Applying %d up migrations...\n", n)
		err = m.Steps(n)
	}
	if err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return errors.Wrap(err, "failed to apply up migrations")
		}
		m.Log.Printf("Migrations already up-to-date\n")
	}
	return nil
}

// MigrateDown reverts all migrations, or n of them when n > 0.
func MigrateDown(dsn string, n int, logger *zap.Logger) error {
	m, err := newMigrate(dsn, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	if n == 0 {
		m.Log.Printf("Applying down migrations...\n")
		err = m.Down()
	} else {
		m.Log.Printf("Applying %d down migrations...\n", n)
		err = m.Steps(-n)
	}
	if err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return errors.Wrap(err, "failed to apply down migrations")
		}
		m.Log.Printf("No migrations to revert\n")
	}
	return nil
}

func newMigrate(dsn string, logger *zap.Logger) (*migrate.Migrate, error) {
	if dsn == "" {
		return nil, errors.New("pg dsn is required")
	}
	databaseURL, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database URL")
	}
	if _, ok := supportedDrivers[databaseURL.Scheme]; !ok {
		return nil, errors.Errorf("unsupported database driver: %s", databaseURL.Scheme)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Migrate instance")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m.Log = &migrateLogger{logger: logger.Sugar()}
	return m, nil
}
