package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/farxc/dre_warehouse/internal/pipeline"
	"github.com/farxc/dre_warehouse/internal/pipeline/quality"
	"github.com/farxc/dre_warehouse/internal/response"
	"github.com/farxc/dre_warehouse/internal/store"
)

type runPipelineRequest struct {
	SkipExtract   bool `json:"skip_extract"`
	SkipDQ        bool `json:"skip_dq"`
	FailOnDQError bool `json:"fail_on_dq_error"`
}

type runResponse struct {
	RunID           int64            `json:"run_id"`
	Status          string           `json:"status"`
	DurationSeconds float64          `json:"duration_seconds"`
	RowsWritten     int64            `json:"rows_written"`
	Steps           []store.StepLog  `json:"steps"`
	Quality         *quality.Summary `json:"quality,omitempty"`
	Error           string           `json:"error,omitempty"`
}

type RunPipelineResponse = response.APIResponse[runResponse]

func newRunResponse(res *pipeline.Result) runResponse {
	out := runResponse{
		RunID:           res.RunID,
		Status:          res.Status,
		DurationSeconds: res.Duration.Seconds(),
		RowsWritten:     res.RowsWritten,
		Steps:           res.Steps,
		Quality:         res.Quality,
	}
	if out.Steps == nil {
		out.Steps = []store.StepLog{}
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

// @Summary		Run the pipeline
// @Description	Runs the pipeline synchronously and returns the run outcome.
// @Tags			Pipeline
// @Accept			json
// @Produce		json
// @Param			options	body		runPipelineRequest		false	"Run options"
// @Success		200		{object}	RunPipelineResponse		"Run finished"
// @Failure		400		{object}	response.ErrorResponse	"Invalid request payload"
// @Failure		409		{object}	response.ErrorResponse	"A run is already in progress"
// @Failure		503		{object}	response.ErrorResponse	"Database unreachable"
// @Router			/pipeline/run [post]
func (app *application) handleRunPipeline(w http.ResponseWriter, r *http.Request) {
	const component = "API"

	var input runPipelineRequest
	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if app.pipeline.Running() {
		writeJSONError(w, http.StatusConflict, pipeline.ErrRunInProgress.Error())
		return
	}

	// The run finishes even if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	res, err := app.pipeline.Run(ctx, pipeline.Options{
		SkipExtract:        input.SkipExtract,
		SkipQuality:        input.SkipDQ,
		FailOnQualityError: input.FailOnDQError,
		Trigger:            store.TriggerAPI,
	})
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		writeJSONError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, pipeline.ErrConnectivity):
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	case res == nil:
		writeJSONError(w, http.StatusInternalServerError, "failed to run pipeline: "+err.Error())
		return
	}

	app.appLogger.Info(component, "Pipeline run via API: run_id=%d status=%s", res.RunID, res.Status)

	response := &RunPipelineResponse{
		Success: res.Status != store.StatusFailed,
		Data:    newRunResponse(res),
		Message: "Pipeline finished with status " + res.Status,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
