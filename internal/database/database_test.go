package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.DBConfig {
	return config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("database_test_%d", time.Now().UnixNano()),
	}
}

func TestMigrationsSource(t *testing.T) {
	assert.Equal(t, "file://migrations/sqlite", MigrationsSource("migrations", config.DBTypeMemory))
	assert.Equal(t, "file://migrations/postgres", MigrationsSource("migrations", config.DBTypePostgreSQL))
	assert.Equal(t, "file://../../migrations/sqlite", MigrationsSource("../../migrations", config.DBTypeMemory))
}

func TestMigrateUp_Idempotent(t *testing.T) {
	cfg := memoryConfig()
	db, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, MigrateUp(db, cfg, "../../migrations"))
	require.NoError(t, MigrateUp(db, cfg, "../../migrations"))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM cities"))
	assert.Equal(t, 0, count)
}

func TestChecker_Check(t *testing.T) {
	cfg := memoryConfig()
	db, err := Connect(context.Background(), cfg)
	require.NoError(t, err)

	checker := NewChecker(db)
	assert.NoError(t, checker.Check(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, checker.Check(context.Background()))
}
