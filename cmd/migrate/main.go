package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/farxc/dre_warehouse/internal/config"
	"github.com/farxc/dre_warehouse/internal/db"
	"github.com/farxc/dre_warehouse/internal/env"
	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/golang-migrate/migrate/v4"
)

func main() {
	const component = "Migrate"

	var (
		configPath = flag.String("config", "config.yml", "Path to the YAML configuration file")
		dsn        = flag.String("dsn", "", "Postgres connection string (overrides the config file)")
		up         = flag.Bool("up", false, "Run all up migrations")
		down       = flag.Bool("down", false, "Run all down migrations")
		steps      = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version    = flag.Bool("version", false, "Print current migration version")
		force      = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	if err := env.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := logger.New(logger.LevelInfo, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer appLogger.Close()

	if *dsn == "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			appLogger.Fatal(component, "Failed to load configuration: error=%v", err)
		}
		if cfg.Database.Driver != config.DriverPostgres {
			appLogger.Fatal(component, "Migrations only apply to postgres: driver=%s", cfg.Database.Driver)
		}
		*dsn = cfg.Database.DSN()
	}

	m, err := db.NewMigrator(*dsn)
	if err != nil {
		appLogger.Fatal(component, "Failed to create migrator: error=%v", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			appLogger.Fatal(component, "Failed to get version: error=%v", err)
		}
		appLogger.Info(component, "Current schema: version=%d dirty=%v", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			appLogger.Fatal(component, "Failed to force version: error=%v", err)
		}
		appLogger.Info(component, "Forced schema: version=%d", *force)
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			appLogger.Fatal(component, "Failed to run up migrations: error=%v", err)
		}
		appLogger.Info(component, "Migrations applied successfully")
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			appLogger.Fatal(component, "Failed to run down migrations: error=%v", err)
		}
		appLogger.Info(component, "Migrations reverted successfully")
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			appLogger.Fatal(component, "Failed to run migrations: error=%v", err)
		}
		appLogger.Info(component, "Migration steps applied: steps=%d", *steps)
	default:
		fmt.Println("usage: migrate [-config config.yml | -dsn <connection-string>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}
