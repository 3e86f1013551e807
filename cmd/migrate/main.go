package main

import (
	"context"
	"fmt"
	"os"

	"nutristat-api/internal/history"
	"nutristat-api/internal/shared"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// migrate copies a file backed history into the sql or redis backend,
// preserving order. The target must be empty so ids stay the same.
func main() {
	_ = godotenv.Load()

	backend := shared.GetEnv("HISTORY_BACKEND", history.BackendSQL)
	if backend == history.BackendFile {
		fmt.Fprintf(os.Stderr, "Error: HISTORY_BACKEND must be %s or %s\n", history.BackendSQL, history.BackendRedis)
		os.Exit(1)
	}
	cfg := history.Config{
		Backend:   backend,
		Driver:    shared.GetEnv("HISTORY_DRIVER", "mysql"),
		RedisAddr: shared.GetEnv("REDIS_ADDR", ""),
		RedisKey:  shared.GetEnv("REDIS_KEY", shared.DefaultHistoryRedisKey),
	}
	if backend == history.BackendSQL {
		dsn, err := shared.SafeEnv("DSN")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: DSN environment variable is required: %v\n", err)
			os.Exit(1)
		}
		cfg.DSN = dsn
	}

	sourcePath := shared.DefaultHistoryPath
	if len(os.Args) > 1 {
		sourcePath = os.Args[1]
	}
	if _, err := os.Stat(sourcePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history file %s: %v\n", sourcePath, err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("Failed init logger")
	}
	log := logger.Sugar()

	if err := run(context.Background(), sourcePath, cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Migration completed successfully!")
}

func run(ctx context.Context, sourcePath string, cfg history.Config, log *zap.SugaredLogger) error {
	source, err := history.NewFileStore(sourcePath, log)
	if err != nil {
		return err
	}
	records, err := source.All(ctx)
	if err != nil {
		return err
	}

	target, err := history.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open %s history: %w", cfg.Backend, err)
	}
	defer func() {
		_ = target.Close()
	}()

	return copyRecords(ctx, records, target, log)
}

func copyRecords(ctx context.Context, records []history.Record, target history.Store, log *zap.SugaredLogger) error {
	existing, err := target.All(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("target history already has %d records", len(existing))
	}

	for _, rec := range records {
		oldID := rec.ID
		stored, err := target.Append(ctx, rec)
		if err != nil {
			return fmt.Errorf("failed to copy record %d: %w", oldID, err)
		}
		if stored.ID != oldID {
			log.Warnw("Record renumbered", "old_id", oldID, "new_id", stored.ID)
		}
	}
	log.Infow("Copied history", "records", len(records))
	return nil
}
