package main

import (
	"net/http"

	"github.com/farxc/dre_warehouse/internal/response"
	"github.com/farxc/dre_warehouse/internal/store"
)

type GetRevenueResponse = response.APIResponse[[]store.RevenueBreakdown]
type GetExpensesResponse = response.APIResponse[[]store.ExpenseBreakdown]

// @Summary		Revenue by scenario
// @Description	Revenue totals by scenario and revenue type.
// @Tags			Revenue
// @Produce		json
// @Param			scenario	query		string	false	"Scenario, e.g. Realizado or Orçado"
// @Success		200			{object}	GetRevenueResponse
// @Failure		500			{object}	response.ErrorResponse
// @Router			/revenue [get]
func (app *application) handleGetRevenue(w http.ResponseWriter, r *http.Request) {
	filter := store.BreakdownFilter{Scenario: scenarioParam(r)}

	ctx := r.Context()
	data, err := app.store.Reports.RevenueByScenario(ctx, filter)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get revenue breakdown: "+err.Error())
		return
	}

	response := &GetRevenueResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved revenue breakdown",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Top expense packages
// @Description	Expense packages ranked by absolute total.
// @Tags			Expenses
// @Produce		json
// @Param			scenario	query		string	false	"Scenario, e.g. Realizado or Orçado"
// @Param			top			query		int		false	"Number of packages"	default(10)
// @Success		200			{object}	GetExpensesResponse
// @Failure		400			{object}	response.ErrorResponse
// @Failure		500			{object}	response.ErrorResponse
// @Router			/expenses [get]
func (app *application) handleGetTopExpenses(w http.ResponseWriter, r *http.Request) {
	top, err := intParam(r, "top", defaultLimit)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := store.BreakdownFilter{Scenario: scenarioParam(r), Limit: top}

	ctx := r.Context()
	data, err := app.store.Reports.TopExpensePackages(ctx, filter)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get expense breakdown: "+err.Error())
		return
	}

	response := &GetExpensesResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved top expense packages",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
