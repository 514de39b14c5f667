// Package stats gathers runtime, memory and storage statistics for the
// detailed stats endpoint and the stats CLI.
package stats

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/jmoiron/sqlx"
)

const citiesTable = "cities"

type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Database  DatabaseStats `json:"database"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc"`
	TotalAlloc   uint64 `json:"total_alloc"`
	Sys          uint64 `json:"sys"`
	NumGC        uint32 `json:"num_gc"`
	HeapAlloc    uint64 `json:"heap_alloc"`
	HeapInuse    uint64 `json:"heap_inuse"`
	HeapReleased uint64 `json:"heap_released"`
}

type DatabaseStats struct {
	Type        string `json:"type"`
	TotalCities int64  `json:"total_cities"`
	SizeBytes   int64  `json:"size_bytes"`
	TableBytes  int64  `json:"table_bytes,omitempty"`
	OpenConns   int    `json:"open_connections"`
	InUseConns  int    `json:"in_use_connections"`
}

type RuntimeStats struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Collector reads statistics on demand. Memory statistics are cached
// briefly because runtime.ReadMemStats stops the world.
type Collector struct {
	db         *sqlx.DB
	dbType     config.DBType
	startTime  time.Time
	cachedMem  *MemoryStats
	cacheTime  time.Time
	cacheMutex sync.RWMutex
}

var memStatsCacheDuration = 5 * time.Second

func NewCollector(db *sqlx.DB, cfg config.DBConfig) *Collector {
	return &Collector{
		db:        db,
		dbType:    cfg.Type,
		startTime: time.Now(),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	dbStats, err := c.collectDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Timestamp: time.Now(),
		Memory:    c.collectMemoryStats(),
		Database:  *dbStats,
		Runtime:   c.collectRuntimeStats(),
	}, nil
}

func (c *Collector) collectMemoryStats() MemoryStats {
	c.cacheMutex.RLock()
	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		mem := *c.cachedMem
		c.cacheMutex.RUnlock()
		return mem
	}
	c.cacheMutex.RUnlock()

	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := MemoryStats{
		Alloc:        m.Alloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		HeapAlloc:    m.HeapAlloc,
		HeapInuse:    m.HeapInuse,
		HeapReleased: m.HeapReleased,
	}
	c.cachedMem = &mem
	c.cacheTime = time.Now()

	return mem
}

func (c *Collector) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	pool := c.db.Stats()
	stats := &DatabaseStats{
		Type:       string(c.dbType),
		OpenConns:  pool.OpenConnections,
		InUseConns: pool.InUse,
	}

	if err := c.db.GetContext(ctx, &stats.TotalCities, "SELECT COUNT(*) FROM "+citiesTable); err != nil {
		return nil, fmt.Errorf("failed to count cities: %w", err)
	}

	// Sizes are best effort: dbstat is an optional SQLite extension.
	if c.dbType == config.DBTypePostgreSQL {
		_ = c.db.GetContext(ctx, &stats.SizeBytes, "SELECT pg_database_size(current_database())")
		_ = c.db.GetContext(ctx, &stats.TableBytes,
			"SELECT COALESCE(pg_total_relation_size($1::regclass), 0)", citiesTable)
	} else {
		_ = c.db.GetContext(ctx, &stats.SizeBytes,
			"SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		_ = c.db.GetContext(ctx, &stats.TableBytes,
			"SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?", citiesTable)
	}

	return stats, nil
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	return RuntimeStats{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
	}
}
