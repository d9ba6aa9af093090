package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/farxc/dre_warehouse/internal/db"
	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/jmoiron/sqlx"
)

type StagingStore struct {
	db      *sqlx.DB
	dialect db.Dialect
}

var stagingTables = []string{"stg.receita", "stg.despesa", "stg.dre", "stg.aliquota"}

// Fragments generated from the month table. They only ever contain the
// fixed abbreviations, never input values.
var (
	monthNumberCase = monthCase("UPPER(TRIM(mes))", func(m types.Month) string { return "'" + m.Abbrev + "'" }, func(m types.Month) string { return strconv.Itoa(m.Number) })
	monthKeyCase    = monthCase("UPPER(TRIM(mes))", func(m types.Month) string { return "'" + m.Abbrev + "'" }, func(m types.Month) string { return fmt.Sprintf("'%02d'", m.Number) })
	knownMonths     = func() string {
		abbrevs := make([]string, len(types.Months))
		for i, m := range types.Months {
			abbrevs[i] = "'" + m.Abbrev + "'"
		}
		return strings.Join(abbrevs, ", ")
	}()
)

func monthCase(expr string, when, then func(types.Month) string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(expr)
	for _, m := range types.Months {
		fmt.Fprintf(&b, " WHEN %s THEN %s", when(m), then(m))
	}
	b.WriteString(" END")
	return b.String()
}

// scenarioCase canonicalizes the scenario column. Patterns and labels are
// bound, so it contributes four arguments, see scenarioArgs.
const scenarioCase = `CASE
			WHEN UPPER(TRIM(cenario)) LIKE ? THEN ?
			WHEN UPPER(TRIM(cenario)) LIKE ? THEN ?
			ELSE TRIM(cenario)
		END`

func scenarioArgs() []any {
	return []any{
		types.RealizedPattern, types.ScenarioRealized,
		types.BudgetedPattern, types.ScenarioBudgeted,
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (s *StagingStore) LoadRevenue(ctx context.Context, p StagingParams) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO stg.receita (
		cenario, tipo_receita, unidade, mes, mes_num, data_key, valor,
		batch_id, raw_created_at, stg_loaded_at
	)
	SELECT
		%s,
		UPPER(TRIM(tipo_receita)),
		TRIM(unidade),
		UPPER(TRIM(mes)),
		%s,
		CAST(? AS TEXT) || '-' || %s,
		valor,
		batch_id,
		created_at,
		CURRENT_TIMESTAMP
	FROM raw.receita
	WHERE valor IS NOT NULL
		AND valor <> 0
		AND cenario IS NOT NULL
		AND tipo_receita IS NOT NULL
		AND unidade IS NOT NULL
		AND TRIM(unidade) <> ''
		AND UPPER(TRIM(mes)) IN (%s)`, scenarioCase, monthNumberCase, monthKeyCase, knownMonths)

	args := append(scenarioArgs(), strconv.Itoa(p.Year))
	return s.rebuild(ctx, "stg.receita", query, args)
}

func (s *StagingStore) LoadExpenses(ctx context.Context, p StagingParams) (int64, error) {
	month := s.dialect.MonthOf("data")
	keyCase := func() string {
		var b strings.Builder
		b.WriteString("CASE ")
		b.WriteString(month)
		for _, m := range types.Months {
			fmt.Fprintf(&b, " WHEN %d THEN '%02d'", m.Number, m.Number)
		}
		b.WriteString(" END")
		return b.String()
	}()

	query := fmt.Sprintf(`INSERT INTO stg.despesa (
		cenario, data, mes_num, data_key, unidade, pacote, conta, valor,
		batch_id, raw_created_at, stg_loaded_at
	)
	SELECT
		%s,
		data,
		%s,
		CAST(? AS TEXT) || '-' || %s,
		TRIM(unidade),
		TRIM(pacote),
		TRIM(conta),
		valor,
		batch_id,
		created_at,
		CURRENT_TIMESTAMP
	FROM raw.despesa
	WHERE valor IS NOT NULL
		AND valor <> 0
		AND data IS NOT NULL
		AND cenario IS NOT NULL
		AND unidade IS NOT NULL
		AND TRIM(unidade) <> ''
		AND pacote IS NOT NULL
		AND TRIM(pacote) <> ''`, scenarioCase, month, keyCase)

	args := append(scenarioArgs(), strconv.Itoa(p.Year))
	return s.rebuild(ctx, "stg.despesa", query, args)
}

func (s *StagingStore) LoadStatement(ctx context.Context, p StagingParams) (int64, error) {
	totals := types.LineNamesAtLevel(types.LevelTotal)
	majors := types.LineNamesAtLevel(types.LevelMajor)

	query := fmt.Sprintf(`INSERT INTO stg.dre (
		linha_dre, categoria, ordem, nivel, mes, mes_num, data_key, valor,
		batch_id, raw_created_at, stg_loaded_at
	)
	SELECT
		TRIM(linha_dre),
		TRIM(categoria),
		ordem,
		CASE
			WHEN TRIM(linha_dre) IN (%s) THEN %d
			WHEN TRIM(linha_dre) IN (%s) THEN %d
			ELSE %d
		END,
		UPPER(TRIM(mes)),
		%s,
		CAST(? AS TEXT) || '-' || %s,
		valor,
		batch_id,
		created_at,
		CURRENT_TIMESTAMP
	FROM raw.dre
	WHERE valor IS NOT NULL
		AND valor <> 0
		AND linha_dre IS NOT NULL
		AND UPPER(TRIM(mes)) IN (%s)`,
		placeholders(len(totals)), types.LevelTotal,
		placeholders(len(majors)), types.LevelMajor,
		types.LevelDetail,
		monthNumberCase, monthKeyCase, knownMonths)

	args := make([]any, 0, len(totals)+len(majors)+1)
	for _, name := range totals {
		args = append(args, name)
	}
	for _, name := range majors {
		args = append(args, name)
	}
	args = append(args, strconv.Itoa(p.Year))
	return s.rebuild(ctx, "stg.dre", query, args)
}

func (s *StagingStore) LoadTaxRates(ctx context.Context, p StagingParams) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO stg.aliquota (
		tipo_imposto, mes, mes_num, data_key, aliquota,
		batch_id, raw_created_at, stg_loaded_at
	)
	SELECT
		TRIM(tipo_imposto),
		UPPER(TRIM(mes)),
		%s,
		CAST(? AS TEXT) || '-' || %s,
		aliquota,
		batch_id,
		created_at,
		CURRENT_TIMESTAMP
	FROM raw.aliquota
	WHERE aliquota IS NOT NULL
		AND tipo_imposto IS NOT NULL
		AND UPPER(TRIM(mes)) IN (%s)`, monthNumberCase, monthKeyCase, knownMonths)

	return s.rebuild(ctx, "stg.aliquota", query, []any{strconv.Itoa(p.Year)})
}

// rebuild truncates a staging table and refills it from raw in one
// transaction.
func (s *StagingStore) rebuild(ctx context.Context, table, query string, args []any) (int64, error) {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) (int64, error) {
		if _, err := tx.ExecContext(ctx, s.dialect.Truncate(table)); err != nil {
			return 0, fmt.Errorf("failed to truncate %s: %w", table, err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return 0, fmt.Errorf("failed to load %s: %w", table, err)
		}
		return rowsAffected(res), nil
	})
}

func (s *StagingStore) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, s.db, stagingTables)
}
