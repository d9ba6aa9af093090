package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/farxc/dre_warehouse/internal/db"
	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/jmoiron/sqlx"
)

type WarehouseStore struct {
	db      *sqlx.DB
	dialect db.Dialect
}

// LoadCalendar seeds the twelve months of the reference year. Existing keys
// are left untouched.
func (w *WarehouseStore) LoadCalendar(ctx context.Context, year int) (int64, error) {
	query := w.db.Rebind(`INSERT INTO dw.dim_calendario (
		data_key, ano, mes_num, mes_abrev, mes_nome, trimestre, semestre
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (data_key) DO NOTHING`)

	return withTx(ctx, w.db, func(tx *sqlx.Tx) (int64, error) {
		var inserted int64
		for _, m := range types.Months {
			res, err := tx.ExecContext(ctx, query,
				types.DataKey(year, m.Number), year, m.Number, m.Abbrev, m.Name,
				strconv.Itoa(year)+"-"+m.Quarter, strconv.Itoa(year)+"-"+m.Semester,
			)
			if err != nil {
				return 0, fmt.Errorf("failed to insert calendar month %s: %w", m.Abbrev, err)
			}
			inserted += rowsAffected(res)
		}
		return inserted, nil
	})
}

// LoadUnits adds units seen in revenue or expense staging. Units are never
// removed or overwritten.
func (w *WarehouseStore) LoadUnits(ctx context.Context) (int64, error) {
	query := `INSERT INTO dw.dim_unidade (unidade, is_active, dw_loaded_at)
	SELECT DISTINCT unidade, TRUE, CURRENT_TIMESTAMP
	FROM (
		SELECT unidade FROM stg.receita
		UNION
		SELECT unidade FROM stg.despesa
	) u
	WHERE unidade IS NOT NULL
		AND TRIM(unidade) <> ''
	ON CONFLICT (unidade) DO NOTHING`

	return w.exec(ctx, "dw.dim_unidade", query)
}

func (w *WarehouseStore) LoadPackages(ctx context.Context) (int64, error) {
	query := `INSERT INTO dw.dim_pacote (pacote, is_active, dw_loaded_at)
	SELECT DISTINCT pacote, TRUE, CURRENT_TIMESTAMP
	FROM stg.despesa
	WHERE pacote IS NOT NULL
		AND TRIM(pacote) <> ''
	ON CONFLICT (pacote) DO NOTHING`

	return w.exec(ctx, "dw.dim_pacote", query)
}

// LoadStatementLines upserts the statement hierarchy. Unlike units and
// packages, attributes of an existing line are refreshed from staging.
func (w *WarehouseStore) LoadStatementLines(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO dw.dim_linha_dre (
		linha_dre, categoria, ordem, nivel, is_total, dw_loaded_at
	)
	SELECT
		linha_dre,
		MAX(categoria),
		MAX(ordem),
		MAX(nivel),
		CASE WHEN MAX(nivel) = %d THEN TRUE ELSE FALSE END,
		CURRENT_TIMESTAMP
	FROM stg.dre
	WHERE linha_dre IS NOT NULL
	GROUP BY linha_dre
	ON CONFLICT (linha_dre) DO UPDATE SET
		categoria = excluded.categoria,
		ordem = excluded.ordem,
		nivel = excluded.nivel,
		is_total = excluded.is_total,
		dw_loaded_at = CURRENT_TIMESTAMP`, types.LevelTotal)

	return w.exec(ctx, "dw.dim_linha_dre", query)
}

func (w *WarehouseStore) LoadRevenueFacts(ctx context.Context) (int64, error) {
	query := `INSERT INTO dw.fact_receita (data_key, cenario, tipo_receita, unidade, valor, dw_loaded_at)
	SELECT data_key, cenario, tipo_receita, unidade, valor, CURRENT_TIMESTAMP
	FROM stg.receita`

	return w.reload(ctx, "dw.fact_receita", query)
}

func (w *WarehouseStore) LoadExpenseFacts(ctx context.Context) (int64, error) {
	query := `INSERT INTO dw.fact_despesa (data_key, cenario, unidade, pacote, conta, valor, dw_loaded_at)
	SELECT data_key, cenario, unidade, pacote, conta, valor, CURRENT_TIMESTAMP
	FROM stg.despesa`

	return w.reload(ctx, "dw.fact_despesa", query)
}

// LoadStatementFacts projects staged statement lines, all tagged with the
// given scenario since the statement model only carries realized figures.
func (w *WarehouseStore) LoadStatementFacts(ctx context.Context, scenario string) (int64, error) {
	query := `INSERT INTO dw.fact_dre (data_key, cenario, linha_dre, valor, dw_loaded_at)
	SELECT data_key, CAST(? AS TEXT), linha_dre, valor, CURRENT_TIMESTAMP
	FROM stg.dre`

	return w.reload(ctx, "dw.fact_dre", query, scenario)
}

func (w *WarehouseStore) LoadTaxRateFacts(ctx context.Context) (int64, error) {
	query := `INSERT INTO dw.fact_aliquota (data_key, tipo_imposto, aliquota, dw_loaded_at)
	SELECT data_key, tipo_imposto, aliquota, CURRENT_TIMESTAMP
	FROM stg.aliquota`

	return w.reload(ctx, "dw.fact_aliquota", query)
}

func (w *WarehouseStore) exec(ctx context.Context, table, query string, args ...any) (int64, error) {
	res, err := w.db.ExecContext(ctx, w.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", table, err)
	}
	return rowsAffected(res), nil
}

// reload fully replaces a fact table from staging in one transaction.
func (w *WarehouseStore) reload(ctx context.Context, table, query string, args ...any) (int64, error) {
	return withTx(ctx, w.db, func(tx *sqlx.Tx) (int64, error) {
		if _, err := tx.ExecContext(ctx, w.dialect.Truncate(table)); err != nil {
			return 0, fmt.Errorf("failed to truncate %s: %w", table, err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return 0, fmt.Errorf("failed to load %s: %w", table, err)
		}
		return rowsAffected(res), nil
	})
}
