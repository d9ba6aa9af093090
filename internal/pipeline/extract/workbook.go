// Package extract reads the financial workbook into raw-layer records.
package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/farxc/dre_warehouse/internal/store"
	"github.com/xuri/excelize/v2"
)

var (
	ErrSourceNotFound = errors.New("source workbook not found")
	ErrSheetNotFound  = errors.New("sheet not found in workbook")
)

type SheetResult struct {
	Key     string
	Sheet   string
	Records int
}

// Batch holds everything extracted from one workbook read.
type Batch struct {
	ID         string
	SourceFile string
	Revenue    []store.RawRevenue
	Expenses   []store.RawExpense
	Statement  []store.RawStatementLine
	TaxRates   []store.RawTaxRate
	Sheets     []SheetResult
}

// Len is the total number of records across every domain.
func (b *Batch) Len() int {
	return len(b.Revenue) + len(b.Expenses) + len(b.Statement) + len(b.TaxRates)
}

// ReadWorkbook extracts every configured sheet of the workbook at path.
// sheets maps the sheet keys (types.SheetKeys) to workbook tab names. A key
// missing from sheets is skipped with a warning; a configured tab missing
// from the workbook is an error.
func ReadWorkbook(path string, sheets map[string]string, batchID string, appLogger *logger.Logger) (*Batch, error) {
	const component = "Extract"

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	available := f.GetSheetList()
	batch := &Batch{ID: batchID, SourceFile: filepath.Base(path)}
	appLogger.Info(component, "Reading workbook: file=%s batch=%s sheets=%d", batch.SourceFile, batchID, len(available))

	for _, key := range types.SheetKeys {
		sheet := strings.TrimSpace(sheets[key])
		if sheet == "" {
			appLogger.Warn(component, "Sheet not configured, skipping: key=%s", key)
			continue
		}
		if !slices.Contains(available, sheet) {
			return nil, fmt.Errorf("%w: %q (key %s)", ErrSheetNotFound, sheet, key)
		}

		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		prov := store.Provenance{SourceFile: batch.SourceFile, SourceSheet: sheet, BatchID: batchID}
		n, err := batch.add(key, rows, prov, appLogger)
		if err != nil {
			return nil, err
		}

		batch.Sheets = append(batch.Sheets, SheetResult{Key: key, Sheet: sheet, Records: n})
		appLogger.Info(component, "Sheet extracted: key=%s sheet=%q records=%d", key, sheet, n)
	}

	return batch, nil
}

func (b *Batch) add(key string, rows [][]string, prov store.Provenance, appLogger *logger.Logger) (int, error) {
	switch key {
	case types.SheetRevenueRealized, types.SheetRevenueBudgeted:
		records := readRevenue(rows, prov, sourceScenario(key))
		b.Revenue = append(b.Revenue, records...)
		return len(records), nil
	case types.SheetExpenseRealized, types.SheetExpenseBudgeted:
		records, err := readExpenses(rows, prov, sourceScenario(key), appLogger)
		if err != nil {
			return 0, err
		}
		b.Expenses = append(b.Expenses, records...)
		return len(records), nil
	case types.SheetStatementModel:
		records := readStatement(rows, prov)
		b.Statement = append(b.Statement, records...)
		return len(records), nil
	case types.SheetTaxRates:
		records := readTaxRates(rows, prov)
		b.TaxRates = append(b.TaxRates, records...)
		return len(records), nil
	}
	return 0, fmt.Errorf("unknown sheet key %q", key)
}

func sourceScenario(key string) string {
	switch key {
	case types.SheetRevenueBudgeted, types.SheetExpenseBudgeted:
		return types.SourceScenarioBudgeted
	}
	return types.SourceScenarioRealized
}
