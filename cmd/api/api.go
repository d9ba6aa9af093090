package main

import (
	"context"
	"net/http"
	"time"

	"github.com/farxc/dre_warehouse/internal/config"
	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/pipeline"
	"github.com/farxc/dre_warehouse/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// pipelineRunner is the part of the orchestrator the API drives.
type pipelineRunner interface {
	Run(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
	Running() bool
}

type application struct {
	config    *config.Config
	store     *store.Storage
	pipeline  pipelineRunner
	appLogger *logger.Logger
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("DRE warehouse API"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		// A run can outlast the read timeout, so it stays outside that group.
		r.Post("/pipeline/run", app.handleRunPipeline)

		r.Group(func(r chi.Router) {
			// Set a timeout value on the request context (ctx), that will signal
			// through ctx.Done() that the request has timed out and further
			// processing should be stopped.
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/dre", func(r chi.Router) {
				r.Get("/", app.handleGetStatementSummary)
				r.Get("/monthly", app.handleGetMonthlyStatement)
			})
			r.Get("/revenue", app.handleGetRevenue)
			r.Get("/expenses", app.handleGetTopExpenses)
			r.Route("/runs", func(r chi.Router) {
				r.Get("/", app.handleGetRuns)
				r.Get("/{id}", app.handleGetRun)
				r.Get("/{id}/quality", app.handleGetRunQuality)
			})
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	const component = "API"

	srv := &http.Server{
		Addr:         app.config.API.Addr,
		Handler:      mux,
		WriteTimeout: time.Minute * 10,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.appLogger.Info(component, "Server started: addr=%s", app.config.API.Addr)
	return srv.ListenAndServe()
}
