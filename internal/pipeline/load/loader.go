// Package load writes an extracted batch into the raw layer.
package load

import (
	"context"
	"fmt"

	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/pipeline/extract"
	"github.com/farxc/dre_warehouse/internal/store"
)

// LoadBatch replaces every raw table with the batch contents and returns the
// number of rows written. Domains are replaced even when the batch holds no
// rows for them.
func LoadBatch(ctx context.Context, batch *extract.Batch, storage *store.Storage, appLogger *logger.Logger) (int64, error) {
	const component = "Loader"
	appLogger.Info(component, "Starting raw load: batch=%s file=%s records=%d", batch.ID, batch.SourceFile, batch.Len())

	steps := []struct {
		table   string
		replace func() (int64, error)
	}{
		{"raw.receita", func() (int64, error) { return storage.Raw.ReplaceRevenue(ctx, batch.Revenue) }},
		{"raw.despesa", func() (int64, error) { return storage.Raw.ReplaceExpenses(ctx, batch.Expenses) }},
		{"raw.dre", func() (int64, error) { return storage.Raw.ReplaceStatement(ctx, batch.Statement) }},
		{"raw.aliquota", func() (int64, error) { return storage.Raw.ReplaceTaxRates(ctx, batch.TaxRates) }},
	}

	var total int64
	for _, s := range steps {
		n, err := s.replace()
		if err != nil {
			return total, fmt.Errorf("failed to load %s: %w", s.table, err)
		}
		appLogger.Debug(component, "Raw table replaced: table=%s rows=%d", s.table, n)
		total += n
	}

	appLogger.Info(component, "Raw load completed: batch=%s rows=%d", batch.ID, total)
	return total, nil
}
