// Package dimensional loads the warehouse layer from staging: dimensions
// first, then facts.
package dimensional

import (
	"context"
	"fmt"

	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/farxc/dre_warehouse/internal/store"
)

// Counts holds the rows each table received in one load.
type Counts struct {
	Calendar       int64
	Units          int64
	Packages       int64
	StatementLines int64
	RevenueFacts   int64
	ExpenseFacts   int64
	StatementFacts int64
	TaxRateFacts   int64
}

// Dimensions is the number of new or refreshed dimension rows.
func (c Counts) Dimensions() int64 {
	return c.Calendar + c.Units + c.Packages + c.StatementLines
}

func (c Counts) Facts() int64 {
	return c.RevenueFacts + c.ExpenseFacts + c.StatementFacts + c.TaxRateFacts
}

func (c Counts) Total() int64 {
	return c.Dimensions() + c.Facts()
}

// Load seeds the calendar for year, upserts the dimensions and reloads every
// fact table. It stops at the first failing table.
func Load(ctx context.Context, storage *store.Storage, year int, appLogger *logger.Logger) (Counts, error) {
	const component = "Dimensional"
	appLogger.Info(component, "Starting staging to warehouse load: year=%d", year)

	wh := storage.Warehouse
	var c Counts

	tables := []struct {
		name  string
		load  func() (int64, error)
		count *int64
	}{
		{"dw.dim_calendario", func() (int64, error) { return wh.LoadCalendar(ctx, year) }, &c.Calendar},
		{"dw.dim_unidade", func() (int64, error) { return wh.LoadUnits(ctx) }, &c.Units},
		{"dw.dim_pacote", func() (int64, error) { return wh.LoadPackages(ctx) }, &c.Packages},
		{"dw.dim_linha_dre", func() (int64, error) { return wh.LoadStatementLines(ctx) }, &c.StatementLines},
		{"dw.fact_receita", func() (int64, error) { return wh.LoadRevenueFacts(ctx) }, &c.RevenueFacts},
		{"dw.fact_despesa", func() (int64, error) { return wh.LoadExpenseFacts(ctx) }, &c.ExpenseFacts},
		{"dw.fact_dre", func() (int64, error) { return wh.LoadStatementFacts(ctx, types.ScenarioRealized) }, &c.StatementFacts},
		{"dw.fact_aliquota", func() (int64, error) { return wh.LoadTaxRateFacts(ctx) }, &c.TaxRateFacts},
	}

	for _, t := range tables {
		n, err := t.load()
		if err != nil {
			appLogger.Error(component, "Warehouse load failed: table=%s error=%v", t.name, err)
			return c, fmt.Errorf("failed to load %s: %w", t.name, err)
		}
		*t.count = n
		appLogger.Info(component, "Table loaded: table=%s rows=%d", t.name, n)
	}

	appLogger.Info(component, "Staging to warehouse load completed: dimensions=%d facts=%d", c.Dimensions(), c.Facts())
	return c, nil
}
