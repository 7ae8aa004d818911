package store

import (
	"context"
	"fmt"
	"log/slog"

	"embed"

	"github.com/pkg/errors"
)

// Schema files live in store/migration/{driver}/LATEST.sql. Fresh
// installations apply the full schema in one shot; there is no incremental
// migration history yet.

//go:embed migration
var migrationFS embed.FS

// Migrate initializes the database schema on first run. Idempotent: when
// the schema already exists, it is a no-op.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database initialization")
	}
	if initialized {
		return nil
	}

	path := fmt.Sprintf("migration/%s/LATEST.sql", s.profile.Driver)
	schema, err := migrationFS.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read schema file %s", path)
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(schema)); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}

	slog.Info("database schema initialized", slog.String("driver", s.profile.Driver))
	return nil
}
