// Package testutil builds throwaway databases and caches for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/climatrix/climatrix/db"
	"github.com/climatrix/climatrix/internal/cache"
	"github.com/climatrix/climatrix/internal/config"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	gdb, err := db.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return gdb
}

// NewCache starts a miniredis server and returns a cache service bound to it.
func NewCache(t testing.TB) (*cache.Service, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.New(client, config.CacheConfig{ShortTTL: 300, MediumTTL: 1800, LongTTL: 3600}), server
}

// CountQueries counts SELECT statements run through gdb from now on.
func CountQueries(gdb *gorm.DB) *int {
	n := 0
	_ = gdb.Callback().Query().After("gorm:query").Register("testutil:count_queries", func(*gorm.DB) {
		n++
	})
	return &n
}
