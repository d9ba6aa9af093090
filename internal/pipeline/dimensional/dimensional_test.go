package dimensional

import (
	"context"
	"testing"

	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/farxc/dre_warehouse/internal/store"
	"github.com/farxc/dre_warehouse/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const year = 2025

func stage(t *testing.T, s *store.Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Raw.ReplaceRevenue(ctx, []store.RawRevenue{
		storetest.Revenue("Realizado", "SALES", "Matriz", "JAN", 10),
		storetest.Revenue("Realizado", "SERVICE", "Filial", "JAN", 30),
	})
	require.NoError(t, err)
	_, err = s.Raw.ReplaceStatement(ctx, []store.RawStatementLine{
		storetest.StatementLine(types.LineGrossRevenue, "Receita", 1, "JAN", 40),
		storetest.StatementLine(types.LineNetIncome, "Resultado", 13, "JAN", 8),
	})
	require.NoError(t, err)

	params := store.StagingParams{Year: year}
	_, err = s.Staging.LoadRevenue(ctx, params)
	require.NoError(t, err)
	_, err = s.Staging.LoadStatement(ctx, params)
	require.NoError(t, err)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)
	stage(t, s)

	c, err := Load(ctx, s, year, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, Counts{
		Calendar:       12,
		Units:          2,
		StatementLines: 2,
		RevenueFacts:   2,
		StatementFacts: 2,
	}, c)
	assert.EqualValues(t, 16, c.Dimensions())
	assert.EqualValues(t, 4, c.Facts())

	var orphans int
	require.NoError(t, conn.Get(&orphans, `SELECT COUNT(*) FROM dw.fact_receita f
		LEFT JOIN dw.dim_calendario c ON c.data_key = f.data_key
		WHERE c.data_key IS NULL`))
	assert.Zero(t, orphans)
}

func TestLoad_RerunKeepsDimensionsAndReplacesFacts(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)
	stage(t, s)

	_, err := Load(ctx, s, year, logger.Nop())
	require.NoError(t, err)

	c, err := Load(ctx, s, year, logger.Nop())
	require.NoError(t, err)
	assert.Zero(t, c.Calendar)
	assert.Zero(t, c.Units)
	assert.EqualValues(t, 2, c.StatementLines, "statement lines are upserted")
	assert.EqualValues(t, 2, c.RevenueFacts)

	assert.EqualValues(t, 12, storetest.Count(t, conn, "dw.dim_calendario"))
	assert.EqualValues(t, 2, storetest.Count(t, conn, "dw.dim_unidade"))
	assert.EqualValues(t, 2, storetest.Count(t, conn, "dw.fact_receita"))
	assert.EqualValues(t, 2, storetest.Count(t, conn, "dw.fact_dre"))
}

func TestLoad_StopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)
	stage(t, s)

	storetest.Exec(t, conn, `DROP TABLE dw.fact_receita`)

	c, err := Load(ctx, s, year, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dw.fact_receita")
	assert.EqualValues(t, 2, c.Units)
	assert.Zero(t, c.StatementFacts)
}
