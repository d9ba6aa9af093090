package extract

import (
	"fmt"
	"strings"

	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/pipeline/converter"
	"github.com/farxc/dre_warehouse/internal/pipeline/utils"
	"github.com/farxc/dre_warehouse/internal/store"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// loadSheetFrame turns a tabular sheet into a string dataframe with a
// lower-cased header. Rows are padded to the header width.
func loadSheetFrame(rows [][]string) dataframe.DataFrame {
	width := len(rows[0])
	header := make([]string, width)
	for i, name := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	records := make([][]string, 0, len(rows))
	records = append(records, header)
	for _, row := range rows[1:] {
		padded := make([]string, width)
		copy(padded, row)
		records = append(records, padded)
	}

	return dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
}

// readExpenses reads a tabular expense sheet. Rows without a date are
// skipped silently; rows with an unreadable date or value are skipped with a
// warning.
func readExpenses(rows [][]string, prov store.Provenance, scenario string, appLogger *logger.Logger) ([]store.RawExpense, error) {
	const component = "Extract-Expenses"
	if len(rows) < 2 || len(rows[0]) == 0 {
		return nil, nil
	}

	df := loadSheetFrame(rows)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to load expense sheet %s: %w", prov.SourceSheet, df.Err)
	}

	cols, missing := converter.ResolveExpenseColumns(&df)
	if len(missing) > 0 {
		appLogger.Warn(component, "Expense sheet lacks required columns, skipping: sheet=%s missing=%s", prov.SourceSheet, strings.Join(missing, ","))
		return nil, nil
	}

	var records []store.RawExpense
	for i := 0; i < df.Nrow(); i++ {
		row := converter.DfRowToExpense(df, i, cols)
		sourceRow := i + 2
		if row.Date == "" {
			continue
		}

		date, ok := utils.ParseDate(row.Date)
		if !ok {
			appLogger.Warn(component, "Skipping row with invalid date: sheet=%s row=%d value=%q", prov.SourceSheet, sourceRow, row.Date)
			continue
		}
		value, ok := utils.ParseFloat(row.Value)
		if !ok {
			appLogger.Warn(component, "Skipping row with invalid value: sheet=%s row=%d value=%q", prov.SourceSheet, sourceRow, row.Value)
			continue
		}

		rec := store.RawExpense{
			Scenario:   scenario,
			Date:       date,
			Unit:       row.Unit,
			Package:    row.Package,
			Account:    row.Account,
			Value:      value,
			Provenance: prov,
		}
		rec.SourceRow = sourceRow
		records = append(records, rec)
	}
	return records, nil
}
