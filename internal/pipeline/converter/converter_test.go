package converter

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, records [][]string) dataframe.DataFrame {
	t.Helper()
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	require.NoError(t, df.Err)
	return df
}

func TestResolveExpenseColumns_Synonyms(t *testing.T) {
	df := load(t, [][]string{
		{"dt", "centro", "grupo", "descricao", "vlr"},
		{"45658", "Matriz", "Pessoal", "Salários", "-100"},
	})

	cols, missing := ResolveExpenseColumns(&df)
	assert.Empty(t, missing)
	assert.Equal(t, ExpenseColumns{Date: "dt", Unit: "centro", Package: "grupo", Account: "descricao", Value: "vlr"}, cols)

	row := DfRowToExpense(df, 0, cols)
	assert.Equal(t, "45658", row.Date)
	assert.Equal(t, "Matriz", row.Unit)
	assert.Equal(t, "Pessoal", row.Package)
	assert.Equal(t, "Salários", row.Account)
	assert.Equal(t, "-100", row.Value)
}

func TestResolveExpenseColumns_PrefersFirstSynonym(t *testing.T) {
	df := load(t, [][]string{
		{"value", "valor", "data"},
		{"1", "2", "2025-01-01"},
	})

	cols, missing := ResolveExpenseColumns(&df)
	assert.Empty(t, missing)
	assert.Equal(t, "valor", cols.Value)
	assert.Equal(t, "", cols.Unit)

	row := DfRowToExpense(df, 0, cols)
	assert.Equal(t, "2", row.Value)
	assert.Equal(t, "", row.Unit)
}

func TestResolveExpenseColumns_ReportsMissing(t *testing.T) {
	df := load(t, [][]string{
		{"unidade", "pacote"},
		{"Matriz", "Pessoal"},
	})

	_, missing := ResolveExpenseColumns(&df)
	assert.Equal(t, []string{"data", "valor"}, missing)
}
