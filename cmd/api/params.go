package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/go-chi/chi/v5"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

var errInvalidParam = errors.New("invalid parameter")

// intParam reads a positive integer query parameter, falling back to def
// when absent and capping it at maxLimit.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errInvalidParam, name)
	}
	return min(n, maxLimit), nil
}

func scenarioParam(r *http.Request) string {
	raw := r.URL.Query().Get("scenario")
	if raw == "" {
		return ""
	}
	return types.NormalizeScenario(raw)
}

func runIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", errInvalidParam)
	}
	return id, nil
}
