package standardize

import (
	"context"
	"testing"
	"time"

	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/farxc/dre_warehouse/internal/store"
	"github.com/farxc/dre_warehouse/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const year = 2025

func seedRaw(t *testing.T, s *store.Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Raw.ReplaceRevenue(ctx, []store.RawRevenue{
		storetest.Revenue("Realizado", "SALES", "Matriz", "JAN", 10),
		storetest.Revenue("Orçado", "SERVICE", "Matriz", "FEV", 20),
		storetest.Revenue("Realizado", "SALES", "Matriz", "MAR", 0),
		storetest.Revenue("Realizado", "SALES", "Matriz", "XYZ", 5),
	})
	require.NoError(t, err)

	_, err = s.Raw.ReplaceExpenses(ctx, []store.RawExpense{{
		Scenario: "Realizado",
		Date:     time.Date(year, 3, 5, 0, 0, 0, 0, time.UTC),
		Unit:     "Matriz",
		Package:  "Pessoal",
		Value:    -10,
	}})
	require.NoError(t, err)

	_, err = s.Raw.ReplaceStatement(ctx, []store.RawStatementLine{
		storetest.StatementLine(types.LineNetIncome, "Resultado", 13, "JAN", 3),
	})
	require.NoError(t, err)

	_, err = s.Raw.ReplaceTaxRates(ctx, []store.RawTaxRate{
		{TaxType: "IR & CSLL", Month: "JAN", Rate: 0.34},
	})
	require.NoError(t, err)
}

func TestStandardize(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)
	seedRaw(t, s)

	counts, err := Standardize(ctx, s, year, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, Counts{Revenue: 2, Expenses: 1, Statement: 1, TaxRates: 1}, counts)
	assert.EqualValues(t, 5, counts.Total())

	var keys []string
	require.NoError(t, conn.Select(&keys, `SELECT data_key FROM stg.receita ORDER BY data_key`))
	assert.Equal(t, []string{"2025-01", "2025-02"}, keys)

	var expenseKey string
	require.NoError(t, conn.Get(&expenseKey, `SELECT data_key FROM stg.despesa`))
	assert.Equal(t, "2025-03", expenseKey)
}

func TestStandardize_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)
	seedRaw(t, s)

	first, err := Standardize(ctx, s, year, logger.Nop())
	require.NoError(t, err)
	second, err := Standardize(ctx, s, year, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, first.Total(), storetest.Count(t, conn, "stg.receita")+
		storetest.Count(t, conn, "stg.despesa")+
		storetest.Count(t, conn, "stg.dre")+
		storetest.Count(t, conn, "stg.aliquota"))
}

func TestStandardize_FailureAborts(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)
	seedRaw(t, s)

	storetest.Exec(t, conn, `DROP TABLE stg.despesa`)

	counts, err := Standardize(ctx, s, year, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "despesa")
	assert.EqualValues(t, 2, counts.Revenue)
	assert.Zero(t, counts.Statement, "later domains do not run")
}
