package store

import (
	"context"
	"errors"

	"github.com/farxc/dre_warehouse/internal/db"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrRunNotRunning  = errors.New("run is not running")
	ErrNoRowsReturned = errors.New("query returned no rows")
)

type Storage struct {
	Raw interface {
		ReplaceRevenue(ctx context.Context, rows []RawRevenue) (int64, error)
		ReplaceExpenses(ctx context.Context, rows []RawExpense) (int64, error)
		ReplaceStatement(ctx context.Context, rows []RawStatementLine) (int64, error)
		ReplaceTaxRates(ctx context.Context, rows []RawTaxRate) (int64, error)
		Count(ctx context.Context) (int64, error)
	}

	Staging interface {
		LoadRevenue(ctx context.Context, p StagingParams) (int64, error)
		LoadExpenses(ctx context.Context, p StagingParams) (int64, error)
		LoadStatement(ctx context.Context, p StagingParams) (int64, error)
		LoadTaxRates(ctx context.Context, p StagingParams) (int64, error)
		Count(ctx context.Context) (int64, error)
	}

	Warehouse interface {
		LoadCalendar(ctx context.Context, year int) (int64, error)
		LoadUnits(ctx context.Context) (int64, error)
		LoadPackages(ctx context.Context) (int64, error)
		LoadStatementLines(ctx context.Context) (int64, error)
		LoadRevenueFacts(ctx context.Context) (int64, error)
		LoadExpenseFacts(ctx context.Context) (int64, error)
		LoadStatementFacts(ctx context.Context, scenario string) (int64, error)
		LoadTaxRateFacts(ctx context.Context) (int64, error)
	}

	Runs interface {
		Start(ctx context.Context, run *Run) error
		LogStep(ctx context.Context, step *StepLog) error
		Finish(ctx context.Context, runID int64, outcome RunOutcome) error
		Get(ctx context.Context, runID int64) (*Run, error)
		GetLatest(ctx context.Context, limit int) ([]Run, error)
		Steps(ctx context.Context, runID int64) ([]StepLog, error)
	}

	Quality interface {
		Measure(ctx context.Context, query string, args ...any) (Measurement, error)
		Save(ctx context.Context, result *QualityResult) error
		Results(ctx context.Context, runID int64) ([]QualityResult, error)
	}

	Reports interface {
		StatementSummary(ctx context.Context) (StatementSummary, error)
		MonthlyStatement(ctx context.Context, f MonthlyFilter) ([]MonthlyStatementRow, error)
		RevenueByScenario(ctx context.Context, f BreakdownFilter) ([]RevenueBreakdown, error)
		TopExpensePackages(ctx context.Context, f BreakdownFilter) ([]ExpenseBreakdown, error)
	}

	conn *sqlx.DB
}

func NewStorage(conn *sqlx.DB) *Storage {
	dialect := db.DialectOf(conn)
	return &Storage{
		Raw:       &RawStore{db: conn, dialect: dialect},
		Staging:   &StagingStore{db: conn, dialect: dialect},
		Warehouse: &WarehouseStore{db: conn, dialect: dialect},
		Runs:      &RunStore{db: conn},
		Quality:   &QualityStore{db: conn},
		Reports:   &ReportStore{db: conn},
		conn:      conn,
	}
}

// Ping reports whether the warehouse database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return db.Ping(ctx, s.conn)
}
