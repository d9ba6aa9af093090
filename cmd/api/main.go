package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/farxc/dre_warehouse/internal/config"
	"github.com/farxc/dre_warehouse/internal/db"
	"github.com/farxc/dre_warehouse/internal/env"
	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/pipeline"
	"github.com/farxc/dre_warehouse/internal/store"
)

func main() {
	const component = "Main"

	configPath := flag.String("config", "config.yml", "Path to the YAML configuration file")
	flag.Parse()

	if err := env.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	appLogger, err := logger.New(cfg.LogLevel(), cfg.LogDir())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer appLogger.Close()

	database, err := db.New(
		cfg.Database.Driver,
		cfg.Database.DSN(),
		cfg.Database.MaxOpenConns(),
		cfg.Database.PoolSize,
		cfg.Database.MaxIdleTime)
	if err != nil {
		appLogger.Fatal(component, "Database connection failed: error=%v", err)
	}
	defer database.Close()
	appLogger.Info(component, "Database connection pool established: driver=%s", cfg.Database.Driver)

	storage := store.NewStorage(database)

	app := &application{
		config:    cfg,
		store:     storage,
		pipeline:  pipeline.NewOrchestrator(cfg, storage, appLogger),
		appLogger: appLogger,
	}

	mux := app.mount()

	if err := app.run(mux); err != nil {
		appLogger.Fatal(component, "Server stopped: error=%v", err)
	}
}
