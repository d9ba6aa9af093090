package quality

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Difference returns actual - expected and that difference as a percentage
// of expected, both rounded to four places. The percentage is 0 when
// expected is 0. Both are nil when either side is missing.
func Difference(actual, expected sql.NullFloat64) (*float64, *float64) {
	if !actual.Valid || !expected.Valid {
		return nil, nil
	}

	a := decimal.NewFromFloat(actual.Float64)
	e := decimal.NewFromFloat(expected.Float64)
	diff := a.Sub(e)

	pct := decimal.Zero
	if !e.IsZero() {
		pct = diff.Div(e).Mul(decimal.NewFromInt(100))
	}

	d := diff.Round(differencePlaces).InexactFloat64()
	p := pct.Round(differencePlaces).InexactFloat64()
	return &d, &p
}
