package utils

import (
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1234.5", 1234.5, true},
		{"-3E-02", -0.03, true},
		{"1.234,56", 1234.56, true},
		{"-41.613.267,98", -41613267.98, true},
		{"R$ 10,50", 10.5, true},
		{"  42 ", 42, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseFloat(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, tc.in)
		}
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2025-03-15", "15/03/2025", "2025-03-15 10:30:00", "45731"} {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	for _, in := range []string{"", "março", "31/02/2025", "-5"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, in)
	}
}

func TestDataframeHelpers(t *testing.T) {
	df := dataframe.LoadRecords(
		[][]string{
			{"data", "unit", "valor"},
			{"2025-01-01", " Matriz ", "10"},
			{"2025-01-02", "NaN", "20"},
		},
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	require.NoError(t, df.Err)

	col, ok := FindColumn(&df, "unidade", "unit", "centro")
	require.True(t, ok)
	assert.Equal(t, "unit", col)

	_, ok = FindColumn(&df, "pacote", "package")
	assert.False(t, ok)

	assert.Equal(t, "Matriz", GetStr(col, 0, &df))
	assert.Equal(t, "", GetStr(col, 1, &df))
	assert.Equal(t, "", GetStr("missing", 0, &df))
	assert.Equal(t, "", GetStr("valor", 0, nil))
}

func TestCell(t *testing.T) {
	row := []string{" a ", "b"}
	assert.Equal(t, "a", Cell(row, 0))
	assert.Equal(t, "", Cell(row, 5))
	assert.Equal(t, "", Cell(row, -1))
}
