package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type QualityStore struct {
	db *sqlx.DB
}

const (
	QualityPass = "PASS"
	QualityWarn = "WARN"
	QualityFail = "FAIL"
)

// Measurement is the single row every quality rule query returns.
type Measurement struct {
	Status   string          `db:"status"`
	Actual   sql.NullFloat64 `db:"actual_value"`
	Expected sql.NullFloat64 `db:"expected_value"`
	Message  sql.NullString  `db:"message"`
}

// Measure runs a rule query written with '?' placeholders.
func (qs *QualityStore) Measure(ctx context.Context, query string, args ...any) (Measurement, error) {
	var m Measurement
	if err := qs.db.GetContext(ctx, &m, qs.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m, ErrNoRowsReturned
		}
		return m, err
	}
	return m, nil
}

func (qs *QualityStore) Save(ctx context.Context, r *QualityResult) error {
	query := qs.db.Rebind(`INSERT INTO dw.data_quality_results (
		run_id,
		rule_id,
		rule_name,
		rule_description,
		status,
		expected_value,
		actual_value,
		difference_value,
		difference_percent,
		message,
		checked_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING result_id`)

	err := qs.db.QueryRowxContext(ctx, query,
		r.RunID, r.RuleID, r.RuleName, r.RuleDescription, r.Status,
		deref(r.ExpectedValue), deref(r.ActualValue), deref(r.DifferenceValue), deref(r.DifferencePercent),
		r.Message, r.CheckedAt,
	).Scan(&r.ResultID)
	if err != nil {
		return fmt.Errorf("failed to save result of rule %d: %w", r.RuleID, err)
	}
	return nil
}

func (qs *QualityStore) Results(ctx context.Context, runID int64) ([]QualityResult, error) {
	results := []QualityResult{}
	query := qs.db.Rebind(`SELECT
		result_id, run_id, rule_id, rule_name, COALESCE(rule_description, '') AS rule_description,
		status, expected_value, actual_value, difference_value, difference_percent,
		COALESCE(message, '') AS message, checked_at
	FROM dw.data_quality_results
	WHERE run_id = ?
	ORDER BY rule_id`)
	if err := qs.db.SelectContext(ctx, &results, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list quality results of run %d: %w", runID, err)
	}
	return results, nil
}
