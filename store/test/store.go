package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hrygo/finsense/internal/profile"
	"github.com/hrygo/finsense/store"
	"github.com/hrygo/finsense/store/db"
)

// NewTestingStore opens a migrated sqlite-backed store in a temp directory.
// Vector search paths need postgres and are covered separately.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:   "prod",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "finsense_test.db"),
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		_ = ts.Close()
	})

	return ts
}
