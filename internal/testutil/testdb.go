package testutil

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"casino-bot/internal/config"
	"casino-bot/internal/store"

	"github.com/jackc/pgx/v5"
)

// OpenTestStore returns a store bound to a throwaway schema on
// TEST_POSTGRES_DSN with every up migration applied. The schema is dropped
// when the test ends. Without a DSN the test is skipped.
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Fatalf("load test config: %v", err)
	}
	if cfg.PostgresDSN == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	migrations, err := upMigrations(cfg.MigrationsDir)
	if err != nil {
		t.Fatalf("find migrations: %v", err)
	}

	ctx := context.Background()
	schema := strings.ToLower("test_" + store.NewID())
	ident := pgx.Identifier{schema}.Sanitize()

	admin, err := pgx.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		t.Fatalf("connect test db: %v", err)
	}
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+ident); err != nil {
		_ = admin.Close(ctx)
		t.Fatalf("create schema %s: %v", schema, err)
	}
	t.Cleanup(func() {
		if _, err := admin.Exec(context.Background(), "DROP SCHEMA "+ident+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
		_ = admin.Close(context.Background())
	})

	st, err := store.New(withSearchPath(cfg.PostgresDSN, schema))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	// registered after the drop so the pool is closed first
	t.Cleanup(st.Close)

	for _, path := range migrations {
		sql, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if _, err := st.Pool.Exec(ctx, string(sql)); err != nil {
			t.Fatalf("apply %s: %v", filepath.Base(path), err)
		}
	}
	return st
}

// upMigrations lists dir/*.up.sql in version order. An empty dir means the
// repo's own migrations directory.
func upMigrations(dir string) ([]string, error) {
	if dir == "" {
		_, file, _, ok := runtime.Caller(0)
		if !ok {
			return nil, os.ErrNotExist
		}
		dir = filepath.Join(filepath.Dir(file), "..", "..", "migrations")
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, &os.PathError{Op: "glob", Path: dir, Err: os.ErrNotExist}
	}
	sort.Strings(paths)
	return paths, nil
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}
