// Package testdb opens migrated in-memory databases for package tests.
package testdb

import (
	"context"
	"strings"
	"testing"

	"github.com/angelmondragon/shopadmin/pkg/config"
	"github.com/angelmondragon/shopadmin/pkg/db"
	"github.com/angelmondragon/shopadmin/pkg/migrate"
	"gorm.io/gorm"
)

// Open returns a sqlite client private to the test with every migration applied.
func Open(t testing.TB) *db.Client {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    "file:" + name + "?mode=memory&cache=shared&_foreign_keys=on",
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQL()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	if _, err := migrate.Up(context.Background(), sqlDB, config.DBDriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return client
}

// Gorm is Open for callers that only need the gorm handle.
func Gorm(t testing.TB) *gorm.DB {
	t.Helper()
	return Open(t).DB()
}
