package store

import (
	"context"
	"fmt"

	"github.com/farxc/dre_warehouse/internal/db"
	"github.com/jmoiron/sqlx"
)

// Rows per multi-row INSERT. Keeps the bound parameter count well under the
// limits of both drivers.
const rawChunkSize = 500

type RawStore struct {
	db      *sqlx.DB
	dialect db.Dialect
}

const (
	insertRawRevenue = `INSERT INTO raw.receita (
		cenario, tipo_receita, unidade, mes, valor,
		source_file, source_sheet, source_row, batch_id
	) VALUES (
		:cenario, :tipo_receita, :unidade, :mes, :valor,
		:source_file, :source_sheet, :source_row, :batch_id
	)`

	insertRawExpense = `INSERT INTO raw.despesa (
		cenario, data, unidade, pacote, conta, valor,
		source_file, source_sheet, source_row, batch_id
	) VALUES (
		:cenario, :data, :unidade, :pacote, :conta, :valor,
		:source_file, :source_sheet, :source_row, :batch_id
	)`

	insertRawStatement = `INSERT INTO raw.dre (
		linha_dre, categoria, ordem, mes, valor,
		source_file, source_sheet, source_row, batch_id
	) VALUES (
		:linha_dre, :categoria, :ordem, :mes, :valor,
		:source_file, :source_sheet, :source_row, :batch_id
	)`

	insertRawTaxRate = `INSERT INTO raw.aliquota (
		tipo_imposto, mes, aliquota,
		source_file, source_sheet, source_row, batch_id
	) VALUES (
		:tipo_imposto, :mes, :aliquota,
		:source_file, :source_sheet, :source_row, :batch_id
	)`
)

var rawTables = []string{"raw.receita", "raw.despesa", "raw.dre", "raw.aliquota"}

func (r *RawStore) ReplaceRevenue(ctx context.Context, rows []RawRevenue) (int64, error) {
	return replaceRaw(ctx, r, "raw.receita", insertRawRevenue, rows)
}

func (r *RawStore) ReplaceExpenses(ctx context.Context, rows []RawExpense) (int64, error) {
	return replaceRaw(ctx, r, "raw.despesa", insertRawExpense, rows)
}

func (r *RawStore) ReplaceStatement(ctx context.Context, rows []RawStatementLine) (int64, error) {
	return replaceRaw(ctx, r, "raw.dre", insertRawStatement, rows)
}

func (r *RawStore) ReplaceTaxRates(ctx context.Context, rows []RawTaxRate) (int64, error) {
	return replaceRaw(ctx, r, "raw.aliquota", insertRawTaxRate, rows)
}

// replaceRaw empties the table and writes the new batch in one transaction,
// so readers never observe a half-loaded raw layer. An empty batch still
// clears the table.
func replaceRaw[T any](ctx context.Context, r *RawStore, table, insert string, rows []T) (int64, error) {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) (int64, error) {
		if _, err := tx.ExecContext(ctx, r.dialect.Truncate(table)); err != nil {
			return 0, fmt.Errorf("failed to truncate %s: %w", table, err)
		}

		var written int64
		for start := 0; start < len(rows); start += rawChunkSize {
			end := min(start+rawChunkSize, len(rows))
			res, err := tx.NamedExecContext(ctx, insert, rows[start:end])
			if err != nil {
				return 0, fmt.Errorf("failed to insert into %s (rows %d-%d): %w", table, start, end-1, err)
			}
			written += rowsAffected(res)
		}
		return written, nil
	})
}

// Count returns the number of rows across every raw table.
func (r *RawStore) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, rawTables)
}

func countRows(ctx context.Context, db *sqlx.DB, tables []string) (int64, error) {
	var total int64
	for _, table := range tables {
		var n int64
		if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
			return 0, fmt.Errorf("failed to count %s: %w", table, err)
		}
		total += n
	}
	return total, nil
}
