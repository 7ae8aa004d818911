package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/finsense/internal/profile"
	"github.com/hrygo/finsense/store"
	"github.com/hrygo/finsense/store/db/postgres"
	"github.com/hrygo/finsense/store/db/sqlite"
)

// PostgreSQL is the production driver and carries every feature, including
// pgvector similarity search. SQLite covers development and testing;
// vector search is not available there.

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'postgres' and 'sqlite' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
