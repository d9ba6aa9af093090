// Package standardize rebuilds the staging layer from the raw layer.
package standardize

import (
	"context"
	"fmt"

	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/store"
)

// Counts holds the rows admitted into each staging table.
type Counts struct {
	Revenue   int64
	Expenses  int64
	Statement int64
	TaxRates  int64
}

func (c Counts) Total() int64 {
	return c.Revenue + c.Expenses + c.Statement + c.TaxRates
}

// Standardize runs one set-based transform per domain. The first failing
// domain aborts the step.
func Standardize(ctx context.Context, storage *store.Storage, year int, appLogger *logger.Logger) (Counts, error) {
	const component = "Standardize"
	appLogger.Info(component, "Starting raw to staging transform: year=%d", year)

	params := store.StagingParams{Year: year}
	var counts Counts

	domains := []struct {
		name  string
		load  func(context.Context, store.StagingParams) (int64, error)
		count *int64
	}{
		{"receita", storage.Staging.LoadRevenue, &counts.Revenue},
		{"despesa", storage.Staging.LoadExpenses, &counts.Expenses},
		{"dre", storage.Staging.LoadStatement, &counts.Statement},
		{"aliquota", storage.Staging.LoadTaxRates, &counts.TaxRates},
	}

	for _, d := range domains {
		n, err := d.load(ctx, params)
		if err != nil {
			appLogger.Error(component, "Staging transform failed: table=stg.%s error=%v", d.name, err)
			return counts, fmt.Errorf("failed to standardize %s: %w", d.name, err)
		}
		*d.count = n
		appLogger.Info(component, "Staging table rebuilt: table=stg.%s rows=%d", d.name, n)
	}

	appLogger.Info(component, "Raw to staging transform completed: rows=%d", counts.Total())
	return counts, nil
}
