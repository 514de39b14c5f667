package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/alexivanou/city-api/internal/database"
	"github.com/alexivanou/city-api/internal/stats"
	"go.uber.org/zap"
)

func main() {
	format := flag.String("format", "json", "Output format: json or text")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	// A fresh in-memory database has no schema yet
	if cfg.DB.IsMemory() {
		if err := database.MigrateUp(db, cfg.DB, "migrations"); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	logger.Info("Collecting statistics...", zap.String("db_type", string(cfg.DB.Type)))

	collector := stats.NewCollector(db, cfg.DB)

	ctx := context.Background()
	statistics, err := collector.Collect(ctx)
	if err != nil {
		logger.Fatal("Failed to collect statistics", zap.Error(err))
	}

	outputFormat := *format
	if env := os.Getenv("OUTPUT_FORMAT"); env != "" && !formatSet() {
		outputFormat = env
	}

	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(statistics); err != nil {
			logger.Fatal("Failed to encode statistics", zap.Error(err))
		}
	case "text", "human":
		printHumanReadable(statistics)
	default:
		logger.Fatal("Unknown output format", zap.String("format", outputFormat))
	}
}

func printHumanReadable(s *stats.Stats) {
	fmt.Println("=== City API Statistics ===")
	fmt.Printf("Timestamp: %s\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Println()

	fmt.Println("--- Memory Statistics ---")
	fmt.Printf("Allocated:        %s\n", formatBytes(s.Memory.Alloc))
	fmt.Printf("Total Allocated:  %s\n", formatBytes(s.Memory.TotalAlloc))
	fmt.Printf("Heap In Use:      %s\n", formatBytes(s.Memory.HeapInuse))
	fmt.Printf("System:           %s\n", formatBytes(s.Memory.Sys))
	fmt.Printf("GC Cycles:        %d\n", s.Memory.NumGC)
	fmt.Println()

	fmt.Println("--- Database Statistics ---")
	fmt.Printf("Type:            %s\n", s.Database.Type)
	fmt.Printf("Cities:          %d\n", s.Database.TotalCities)
	if s.Database.SizeBytes > 0 {
		fmt.Printf("Database size:   %s\n", formatBytes(uint64(s.Database.SizeBytes)))
	}
	if s.Database.TableBytes > 0 {
		fmt.Printf("Cities table:    %s\n", formatBytes(uint64(s.Database.TableBytes)))
	}
	fmt.Printf("Connections:     %d open, %d in use\n", s.Database.OpenConns, s.Database.InUseConns)
	fmt.Println()

	fmt.Println("--- Runtime Statistics ---")
	fmt.Printf("Go version:      %s\n", s.Runtime.GoVersion)
	fmt.Printf("CPUs:            %d\n", s.Runtime.NumCPU)
	fmt.Printf("Goroutines:      %d\n", s.Runtime.NumGoroutines)
	fmt.Printf("Uptime:          %ds\n", s.Runtime.UptimeSeconds)
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatSet() bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "format" {
			set = true
		}
	})
	return set
}
