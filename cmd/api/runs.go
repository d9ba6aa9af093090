package main

import (
	"errors"
	"net/http"

	"github.com/farxc/dre_warehouse/internal/response"
	"github.com/farxc/dre_warehouse/internal/store"
)

type runDetail struct {
	store.Run
	Steps []store.StepLog `json:"steps"`
}

type GetRunsResponse = response.APIResponse[[]store.Run]
type GetRunResponse = response.APIResponse[runDetail]
type GetRunQualityResponse = response.APIResponse[[]store.QualityResult]

// @Summary		List runs
// @Description	Latest pipeline runs, newest first.
// @Tags			Runs
// @Produce		json
// @Param			limit	query		int	false	"Limit the number of results"	default(10)
// @Success		200		{object}	GetRunsResponse
// @Failure		400		{object}	response.ErrorResponse
// @Failure		500		{object}	response.ErrorResponse
// @Router			/runs [get]
func (app *application) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultLimit)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	data, err := app.store.Runs.GetLatest(ctx, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get runs: "+err.Error())
		return
	}

	response := &GetRunsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved latest runs",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get run
// @Description	One run with its step log.
// @Tags			Runs
// @Produce		json
// @Param			id	path		int	true	"Run ID"
// @Success		200	{object}	GetRunResponse
// @Failure		400	{object}	response.ErrorResponse
// @Failure		404	{object}	response.ErrorResponse
// @Failure		500	{object}	response.ErrorResponse
// @Router			/runs/{id} [get]
func (app *application) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := runIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	run, ok := app.lookupRun(w, r, id)
	if !ok {
		return
	}

	steps, err := app.store.Runs.Steps(ctx, id)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get run steps: "+err.Error())
		return
	}

	response := &GetRunResponse{
		Success: true,
		Data:    runDetail{Run: *run, Steps: steps},
		Message: "Successfully retrieved run",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Run quality results
// @Description	Quality rule results recorded for a run.
// @Tags			Runs
// @Produce		json
// @Param			id	path		int	true	"Run ID"
// @Success		200	{object}	GetRunQualityResponse
// @Failure		400	{object}	response.ErrorResponse
// @Failure		404	{object}	response.ErrorResponse
// @Failure		500	{object}	response.ErrorResponse
// @Router			/runs/{id}/quality [get]
func (app *application) handleGetRunQuality(w http.ResponseWriter, r *http.Request) {
	id, err := runIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, ok := app.lookupRun(w, r, id); !ok {
		return
	}

	ctx := r.Context()
	data, err := app.store.Quality.Results(ctx, id)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get quality results: "+err.Error())
		return
	}

	response := &GetRunQualityResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved quality results",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// lookupRun writes the 404 or 500 itself and reports whether the run exists.
func (app *application) lookupRun(w http.ResponseWriter, r *http.Request, id int64) (*store.Run, bool) {
	run, err := app.store.Runs.Get(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "run not found")
		return nil, false
	case err != nil:
		writeJSONError(w, http.StatusInternalServerError, "failed to get run: "+err.Error())
		return nil, false
	}
	return run, true
}
