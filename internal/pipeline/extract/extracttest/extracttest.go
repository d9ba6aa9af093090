// Package extracttest writes small but complete workbooks for tests.
package extracttest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Tab names of the sample workbook.
const (
	TabRevenueRealized = "Receita Realizado"
	TabRevenueBudgeted = "Receita Orçado"
	TabExpenseRealized = "Despesas Realizado"
	TabExpenseBudgeted = "Despesas Orçado"
	TabStatement       = "Modelo DRE"
	TabTaxRates        = "Alíquotas"
)

// Totals of the sample workbook, as the quality rules compute them.
const (
	RevenueRealizedTotal  = 5400.0
	RevenueBudgetedTotal  = 5160.0
	ExpensesRealizedTotal = -2400.0
	ExpensesBudgetedTotal = -2640.0
	NetIncomeTotal        = 1620.0
	GrossRevenueTotal     = 5400.0
)

// Sheets maps every sheet key to its sample tab.
func Sheets() map[string]string {
	return map[string]string{
		types.SheetRevenueRealized: TabRevenueRealized,
		types.SheetRevenueBudgeted: TabRevenueBudgeted,
		types.SheetExpenseRealized: TabExpenseRealized,
		types.SheetExpenseBudgeted: TabExpenseBudgeted,
		types.SheetStatementModel:  TabStatement,
		types.SheetTaxRates:        TabTaxRates,
	}
}

func monthHeader(first string) []any {
	row := []any{first}
	for _, m := range types.Months {
		row = append(row, m.Abbrev)
	}
	return row
}

func monthly(label string, value float64) []any {
	row := []any{label}
	for range types.Months {
		row = append(row, value)
	}
	return row
}

func expenses(year int, unit, pkg, account string, value float64) [][]any {
	rows := [][]any{{"Data", "Unidade", "Pacote", "Conta", "Valor"}}
	for _, m := range types.Months {
		rows = append(rows, []any{time.Date(year, time.Month(m.Number), 15, 0, 0, 0, 0, time.UTC), unit, pkg, account, value})
	}
	return rows
}

// Sample returns the tab contents of a workbook covering a full year.
func Sample(year int) map[string][][]any {
	return map[string][][]any{
		TabRevenueRealized: {
			monthHeader("Unidade"),
			{"SALES"},
			monthly("Matriz", 100),
			monthly("Filial", 50),
			monthly("TOTAL", 150),
			{"SERVICE"},
			monthly("Matriz", 300),
			monthly("CONSOLIDADO", 450),
		},
		TabRevenueBudgeted: {
			monthHeader("Unidade"),
			{"SALES"},
			monthly("Matriz", 110),
			{"SERVICE"},
			monthly("Matriz", 320),
		},
		TabExpenseRealized: expenses(year, "Matriz", "Pessoal", "Salários", -200),
		TabExpenseBudgeted: expenses(year, "Matriz", "Pessoal", "Salários", -220),
		TabStatement: {
			{"DRE Gerencial"},
			monthHeader("Linha"),
			monthly("Receita Bruta", 450),
			monthly("Receita Líquida", 400),
			monthly("EBITDA", 200),
			monthly("Lucro Líquido", 135),
		},
		TabTaxRates: {
			monthHeader("Tipo"),
			monthly("Imposto Sobre Faturamento", 0.0925),
			monthly("IR & CSLL", 0.34),
		},
	}
}

// Write saves tabs as an .xlsx workbook at path.
func Write(t testing.TB, path string, tabs map[string][][]any) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range tabs {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SaveAs(path))
}

// WriteSample saves the sample workbook in dir and returns its path.
func WriteSample(t testing.TB, dir string, year int) string {
	t.Helper()

	path := filepath.Join(dir, "dre.xlsx")
	Write(t, path, Sample(year))
	return path
}
