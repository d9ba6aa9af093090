package main

import (
	"net/http"
	"time"

	"github.com/farxc/dre_warehouse/internal/store"
)

type healthResponse struct {
	Status    string     `json:"status"`
	Database  string     `json:"database"`
	Version   string     `json:"version"`
	Running   bool       `json:"pipeline_running"`
	LastRun   *store.Run `json:"last_run,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// @Summary		Health check
// @Description	returns the status of the service and its database
// @Tags			Health
// @Produce		json
// @Success		200	{object}	healthResponse
// @Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := healthResponse{
		Status:    "healthy",
		Database:  "connected",
		Version:   "0.1.0",
		Running:   app.pipeline.Running(),
		Timestamp: time.Now(),
	}

	if err := app.store.Ping(ctx); err != nil {
		data.Status = "degraded"
		data.Database = "error: " + err.Error()
	} else if runs, err := app.store.Runs.GetLatest(ctx, 1); err == nil && len(runs) > 0 {
		data.LastRun = &runs[0]
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
