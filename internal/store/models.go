package store

import (
	"time"
)

// Provenance ties a raw record back to the workbook cell range it came from.
type Provenance struct {
	SourceFile  string `db:"source_file"`
	SourceSheet string `db:"source_sheet"`
	SourceRow   int    `db:"source_row"`
	BatchID     string `db:"batch_id"`
}

// RawRevenue represents the 'raw.receita' table.
type RawRevenue struct {
	Scenario    string  `db:"cenario"`
	RevenueType string  `db:"tipo_receita"`
	Unit        string  `db:"unidade"`
	Month       string  `db:"mes"`
	Value       float64 `db:"valor"`
	Provenance
}

// RawExpense represents the 'raw.despesa' table.
type RawExpense struct {
	Scenario string    `db:"cenario"`
	Date     time.Time `db:"data"`
	Unit     string    `db:"unidade"`
	Package  string    `db:"pacote"`
	Account  string    `db:"conta"`
	Value    float64   `db:"valor"`
	Provenance
}

// RawStatementLine represents the 'raw.dre' table.
type RawStatementLine struct {
	Line     string  `db:"linha_dre"`
	Category string  `db:"categoria"`
	Order    int     `db:"ordem"`
	Month    string  `db:"mes"`
	Value    float64 `db:"valor"`
	Provenance
}

// RawTaxRate represents the 'raw.aliquota' table.
type RawTaxRate struct {
	TaxType string  `db:"tipo_imposto"`
	Month   string  `db:"mes"`
	Rate    float64 `db:"aliquota"`
	Provenance
}

// StagingParams carries the values the staging transforms bind into their queries.
type StagingParams struct {
	Year int
}

// Run represents the 'dw.etl_run' table.
type Run struct {
	RunID              int64      `db:"run_id" json:"run_id"`
	PipelineName       string     `db:"pipeline_name" json:"pipeline_name"`
	StartedAt          time.Time  `db:"started_at" json:"started_at"`
	FinishedAt         *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	Status             string     `db:"status" json:"status"`
	TriggeredBy        string     `db:"triggered_by" json:"triggered_by"`
	DurationSeconds    *float64   `db:"duration_seconds" json:"duration_seconds,omitempty"`
	TotalRowsProcessed *int64     `db:"total_rows_processed" json:"total_rows_processed,omitempty"`
	ErrorMessage       *string    `db:"error_message" json:"error_message,omitempty"`
}

// RunOutcome is the single terminal update applied to a running run.
type RunOutcome struct {
	Status          string
	FinishedAt      time.Time
	DurationSeconds float64
	TotalRows       int64
	ErrorMessage    string
}

// StepLog represents the 'dw.etl_step_log' table.
type StepLog struct {
	StepID       int64     `db:"step_id" json:"step_id"`
	RunID        int64     `db:"run_id" json:"run_id"`
	StepName     string    `db:"step_name" json:"step_name"`
	StepOrder    int       `db:"step_order" json:"step_order"`
	Status       string    `db:"status" json:"status"`
	RowsRead     int64     `db:"rows_read" json:"rows_read"`
	RowsWritten  int64     `db:"rows_written" json:"rows_written"`
	StartedAt    time.Time `db:"started_at" json:"started_at"`
	FinishedAt   time.Time `db:"finished_at" json:"finished_at"`
	ErrorMessage *string   `db:"error_message" json:"error_message,omitempty"`
}

// QualityResult represents the 'dw.data_quality_results' table.
type QualityResult struct {
	ResultID          int64     `db:"result_id" json:"result_id"`
	RunID             int64     `db:"run_id" json:"run_id"`
	RuleID            int       `db:"rule_id" json:"rule_id"`
	RuleName          string    `db:"rule_name" json:"rule_name"`
	RuleDescription   string    `db:"rule_description" json:"rule_description"`
	Status            string    `db:"status" json:"status"`
	ExpectedValue     *float64  `db:"expected_value" json:"expected_value"`
	ActualValue       *float64  `db:"actual_value" json:"actual_value"`
	DifferenceValue   *float64  `db:"difference_value" json:"difference_value"`
	DifferencePercent *float64  `db:"difference_percent" json:"difference_percent"`
	Message           string    `db:"message" json:"message"`
	CheckedAt         time.Time `db:"checked_at" json:"checked_at"`
}
