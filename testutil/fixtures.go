package testutil

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/userservice/database"
	"github.com/kbukum/userservice/logger"
	"github.com/kbukum/userservice/redis"
)

// SQLiteConfig returns a single-connection SQLite configuration backed by a
// file in t.TempDir().
func SQLiteConfig(t testing.TB) database.Config {
	t.Helper()
	return database.Config{
		Driver:       database.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		MaxRetries:   1,
		Migrate:      true,
		LogLevel:     "silent",
	}
}

// SQLite starts a database component on SQLiteConfig with the migrations in
// dir of fsys applied. A nil fsys skips migrations.
func SQLite(t testing.TB, fsys fs.FS, dir string) *database.Component {
	t.Helper()
	comp := database.NewComponent(SQLiteConfig(t), logger.NewNop())
	if fsys != nil {
		comp.WithMigrations(fsys, dir)
	}
	Start(t, comp)
	return comp
}

// Redis runs an in-process Redis server and returns a client connected to
// it. Close the server to simulate an outage.
func Redis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("testutil: miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	client, err := redis.New(redis.Config{Enabled: true, Addr: mini.Addr(), MaxRetries: 1}, logger.NewNop())
	if err != nil {
		t.Fatalf("testutil: redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mini
}
