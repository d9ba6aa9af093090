// Package quality runs the data quality rules against the warehouse layer
// and records one result per rule.
package quality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/store"
)

var ErrChecksFailed = errors.New("data quality checks failed")

const differencePlaces = 4

// Summary counts the outcome of one gate run.
type Summary struct {
	Total   int                   `json:"total"`
	Passed  int                   `json:"passed"`
	Warned  int                   `json:"warned"`
	Failed  int                   `json:"failed"`
	Results []store.QualityResult `json:"results"`
}

type Gate struct {
	storage     *store.Storage
	rules       []Rule
	failOnError bool
	appLogger   *logger.Logger
}

// NewGate builds a gate over rules. With failOnError, Run returns
// ErrChecksFailed whenever a rule fails.
func NewGate(storage *store.Storage, rules []Rule, failOnError bool, appLogger *logger.Logger) *Gate {
	return &Gate{
		storage:     storage,
		rules:       rules,
		failOnError: failOnError,
		appLogger:   appLogger,
	}
}

// Run evaluates every rule in order. A rule whose query errors counts as
// failed and the remaining rules still run. Results are saved under runID
// when it is non-zero.
func (g *Gate) Run(ctx context.Context, runID int64) (Summary, error) {
	const component = "QualityGate"
	g.appLogger.Info(component, "Starting data quality checks: run_id=%d rules=%d", runID, len(g.rules))

	summary := Summary{Total: len(g.rules)}
	for _, rule := range g.rules {
		result := g.evaluate(ctx, runID, rule)

		switch result.Status {
		case store.QualityPass:
			summary.Passed++
			g.appLogger.Info(component, "[%02d] %s: %s", rule.ID, rule.Name, result.Message)
		case store.QualityWarn:
			summary.Warned++
			g.appLogger.Warn(component, "[%02d] %s: %s", rule.ID, rule.Name, result.Message)
		default:
			summary.Failed++
			g.appLogger.Error(component, "[%02d] %s: %s", rule.ID, rule.Name, result.Message)
		}

		if runID != 0 {
			if err := g.storage.Quality.Save(ctx, &result); err != nil {
				g.appLogger.Error(component, "Failed to save quality result: run_id=%d rule=%s error=%v", runID, rule.Name, err)
			}
		}
		summary.Results = append(summary.Results, result)
	}

	g.appLogger.Info(component, "Data quality summary: pass=%d warn=%d fail=%d", summary.Passed, summary.Warned, summary.Failed)

	if g.failOnError && summary.Failed > 0 {
		return summary, fmt.Errorf("%w: %d of %d rules failed", ErrChecksFailed, summary.Failed, summary.Total)
	}
	return summary, nil
}

func (g *Gate) evaluate(ctx context.Context, runID int64, rule Rule) store.QualityResult {
	const component = "QualityGate"

	result := store.QualityResult{
		RunID:           runID,
		RuleID:          rule.ID,
		RuleName:        rule.Name,
		RuleDescription: rule.Description,
		CheckedAt:       time.Now(),
	}

	m, err := g.storage.Quality.Measure(ctx, rule.Query, rule.Args...)
	if err != nil {
		g.appLogger.Error(component, "Rule query failed: rule=%s error=%v", rule.Name, err)
		result.Status = store.QualityFail
		result.Message = fmt.Sprintf("erro ao executar regra: %v", err)
		return result
	}

	result.Status = m.Status
	if result.Status != store.QualityPass && result.Status != store.QualityWarn {
		result.Status = store.QualityFail
	}
	result.Message = m.Message.String
	if m.Actual.Valid {
		result.ActualValue = &m.Actual.Float64
	}
	if m.Expected.Valid {
		result.ExpectedValue = &m.Expected.Float64
	}
	result.DifferenceValue, result.DifferencePercent = Difference(m.Actual, m.Expected)
	return result
}
