package main

import (
	"net/http"

	"github.com/farxc/dre_warehouse/internal/response"
	"github.com/farxc/dre_warehouse/internal/store"
)

type GetStatementSummaryResponse = response.APIResponse[store.StatementSummary]
type GetMonthlyStatementResponse = response.APIResponse[[]store.MonthlyStatementRow]

// @Summary		Statement summary
// @Description	Yearly totals of the headline statement lines and margins over gross revenue.
// @Tags			Statement
// @Produce		json
// @Success		200	{object}	GetStatementSummaryResponse
// @Failure		500	{object}	response.ErrorResponse
// @Router			/dre [get]
func (app *application) handleGetStatementSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := app.store.Reports.StatementSummary(ctx)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get statement summary: "+err.Error())
		return
	}

	response := &GetStatementSummaryResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved statement summary",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Monthly statement
// @Description	Statement lines per month, optionally filtered by a line name fragment.
// @Tags			Statement
// @Produce		json
// @Param			line	query		string	false	"Line name fragment, case-insensitive"
// @Success		200		{object}	GetMonthlyStatementResponse
// @Failure		500		{object}	response.ErrorResponse
// @Router			/dre/monthly [get]
func (app *application) handleGetMonthlyStatement(w http.ResponseWriter, r *http.Request) {
	var filter store.MonthlyFilter
	if line := r.URL.Query().Get("line"); line != "" {
		filter.Line = "%" + line + "%"
	}

	ctx := r.Context()
	data, err := app.store.Reports.MonthlyStatement(ctx, filter)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get monthly statement: "+err.Error())
		return
	}

	response := &GetMonthlyStatementResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved monthly statement",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
