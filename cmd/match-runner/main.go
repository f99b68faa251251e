// cmd/match-runner/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"match-engine/internal/common/config"
	"match-engine/internal/common/database"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/observability"
	"match-engine/internal/engine/pipeline"
	"match-engine/internal/models"
	"match-engine/internal/runstore"
	"match-engine/internal/snapshot"
	"match-engine/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	var (
		snapshotFile = flag.String("snapshot-file", "", "score a JSON snapshot file instead of the database population")
		snapshotID   = flag.String("snapshot-id", "", "snapshot identifier used for the run lock (defaults to today's date)")
		runID        = flag.String("run-id", "", "run identifier (defaults to a fresh UUID)")
		dryRun       = flag.Bool("dry-run", false, "score and report without persisting results")
	)
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting match runner...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("match-runner")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Load question registry ---
	var reg *registry.Registry
	if cfg.Engine.RegistryPath != "" {
		reg, err = registry.LoadRegistry(cfg.Engine.RegistryPath)
		if err != nil {
			zapLog.Fatal("registry load failed", zap.Error(err))
		}
	} else {
		reg = registry.Default()
	}
	zapLog.Info("Question registry loaded",
		zap.Int("questions", reg.Len()),
		zap.String("engineVersion", cfg.Engine.Version),
	)

	// --- Metrics endpoint ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.App.MetricsAddr, nil); err != nil {
			zapLog.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	// --- Load population snapshot ---
	var users []*models.User
	var pg *database.PostgresClient
	if *snapshotFile != "" {
		users, err = snapshot.NewFileLoader(*snapshotFile, reg, log).Load()
		if err != nil {
			zapLog.Fatal("snapshot file load failed", zap.Error(err))
		}
	} else {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		users, err = snapshot.NewPostgresLoader(pg, reg, log).Load(ctx)
		if err != nil {
			zapLog.Fatal("snapshot load failed", zap.Error(err))
		}
	}

	// --- Init Redis run store (skipped on dry runs) ---
	var store *runstore.Store
	if !*dryRun {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		store = runstore.New(rdb.Client, cfg.Engine, log)
	}

	id := *runID
	if id == "" {
		id = uuid.NewString()
	}
	snapID := *snapshotID
	if snapID == "" {
		snapID = time.Now().UTC().Format("2006-01-02")
	}

	if store != nil {
		if err := store.AcquireLock(ctx, snapID, id); err != nil {
			zapLog.Fatal("run lock not acquired", zap.Error(err))
		}
		defer store.ReleaseLock(context.Background(), snapID, id)

		if err := store.SetStatus(ctx, id, runstore.StatusRunning); err != nil {
			zapLog.Warn("run status not recorded", zap.Error(err))
		}
	}

	// --- Execute the run ---
	start := time.Now()
	result, err := pipeline.New(cfg.Engine, reg, log).Run(ctx, id, users)
	if err != nil {
		obs.RecordRun(ctx, "failed")
		if store != nil {
			if serr := store.SetStatus(context.Background(), id, runstore.StatusFailed); serr != nil {
				zapLog.Warn("run status not recorded", zap.Error(serr))
			}
		}
		zapLog.Fatal("matching run failed", zap.Error(err))
	}
	obs.RecordRun(ctx, "completed")
	obs.RecordRunDuration(ctx, time.Since(start), "completed")

	if store != nil {
		if err := store.StoreResult(ctx, result); err != nil {
			zapLog.Fatal("result store failed", zap.Error(err))
		}
	}

	zapLog.Info("Match runner finished",
		zap.String("runId", id),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("unmatched", len(result.Unmatched)),
	)

	if *dryRun {
		printSummary(result)
	}

	_ = os.Stdout.Sync()
}

// printSummary writes a human-readable digest for dry runs.
func printSummary(result *models.RunResult) {
	d := result.Diagnostics
	fmt.Printf("run %s: %d users, %d dyads scored, %d eligible\n",
		d.RunID, d.PopulationSize, d.PairsScored, d.PairsEligible)
	for _, a := range result.Assignments {
		fmt.Printf("  %s <-> %s  %.1f\n", a.UserA, a.UserB, a.Score)
	}
	if len(result.Unmatched) > 0 {
		fmt.Printf("unmatched: %d users\n", len(result.Unmatched))
	}
	for _, e := range d.DyadErrors {
		fmt.Printf("dyad error: %s/%s %s\n", e.UserA, e.UserB, e.Reason)
	}
}
