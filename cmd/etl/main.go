package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/farxc/dre_warehouse/internal/config"
	"github.com/farxc/dre_warehouse/internal/db"
	"github.com/farxc/dre_warehouse/internal/env"
	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/pipeline"
	"github.com/farxc/dre_warehouse/internal/store"
)

var triggers = []string{store.TriggerManual, store.TriggerScheduled, store.TriggerAPI}

func main() {
	os.Exit(run())
}

func run() int {
	const component = "Main"

	configPath := flag.String("config", "config.yml", "Path to the YAML configuration file")
	skipExtract := flag.Bool("skip-extract", false, "Skip the workbook extraction and reuse the raw layer")
	skipDQ := flag.Bool("skip-dq", false, "Skip the data quality checks")
	failOnDQ := flag.Bool("fail-on-dq-error", false, "Fail the run when a data quality rule fails")
	logLevel := flag.String("loglevel", "", "Log level: debug, info, warn, warning, error (overrides logging.level)")
	trigger := flag.String("trigger", store.TriggerManual, "Trigger source: MANUAL, SCHEDULED, API")
	runMigrations := flag.Bool("migrate", false, "Apply pending Postgres migrations before running")
	flag.Parse()

	if err := env.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	level := cfg.LogLevel()
	if *logLevel != "" {
		if level, err = logger.ParseLevel(*logLevel); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	appLogger, err := logger.New(level, cfg.LogDir())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer appLogger.Close()

	triggeredBy := strings.ToUpper(strings.TrimSpace(*trigger))
	if !slices.Contains(triggers, triggeredBy) {
		appLogger.Error(component, "Invalid trigger: trigger=%s allowed=%v", *trigger, triggers)
		return 1
	}

	if level == logger.LevelDebug {
		monitor := NewMonitor()
		monitor.Start(400*time.Millisecond, appLogger)
		defer func() {
			stats := monitor.Stop()
			appLogger.Debug(component, "Resource peaks: goroutines=%d memoryMB=%d", stats.PeakGoroutines, stats.PeakMemoryMB)
		}()
	}

	startingTime := time.Now()
	appLogger.Info(component, "Application starting: config=%s driver=%s year=%d", *configPath, cfg.Database.Driver, cfg.ETL.ReferenceYear)

	if *runMigrations {
		if cfg.Database.Driver != config.DriverPostgres {
			appLogger.Info(component, "Migrations skipped: driver=%s creates its schema on open", cfg.Database.Driver)
		} else {
			version, err := db.MigrateUp(cfg.Database.DSN())
			if err != nil {
				appLogger.Error(component, "Migration failed: error=%v", err)
				return 1
			}
			appLogger.Info(component, "Schema up to date: version=%d", version)
		}
	}

	database, err := db.New(
		cfg.Database.Driver,
		cfg.Database.DSN(),
		cfg.Database.MaxOpenConns(),
		cfg.Database.PoolSize,
		cfg.Database.MaxIdleTime)
	if err != nil {
		appLogger.Error(component, "Database connection failed: error=%v", err)
		return 1
	}
	defer database.Close()
	appLogger.Info(component, "Database connection pool established")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := pipeline.NewOrchestrator(cfg, store.NewStorage(database), appLogger)
	result, err := orchestrator.Run(ctx, pipeline.Options{
		SkipExtract:        *skipExtract,
		SkipQuality:        *skipDQ,
		FailOnQualityError: *failOnDQ,
		Trigger:            triggeredBy,
	})
	if err != nil {
		if result == nil || errors.Is(err, pipeline.ErrConnectivity) {
			appLogger.Error(component, "Pre-flight check failed: error=%v", err)
			return 1
		}
		appLogger.Error(component, "Pipeline failed: run_id=%d error=%v", result.RunID, err)
		return 1
	}

	appLogger.Info(component, "Application completed: run_id=%d status=%s steps=%d duration=%.2f seconds",
		result.RunID, result.Status, len(result.Steps), time.Since(startingTime).Seconds())

	if result.Status == store.StatusFailed {
		return 1
	}
	return 0
}
