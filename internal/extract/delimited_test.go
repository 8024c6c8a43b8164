package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

func TestDelimitedExtractCSV(t *testing.T) {
	t.Parallel()

	doc := []byte("Company,Date\nAcme Corp,1/2/2024\n\"Widgets, Inc\",3/4/2024\n")

	e := NewDelimited(warn.ExtractOptions{}, zap.NewNop())
	table, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"Company", "Date"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Widgets, Inc", table.Rows[1]["Company"])
}

func TestDelimitedExtractCustomDelimiter(t *testing.T) {
	t.Parallel()

	doc := []byte("Company|Date\nAcme Corp|1/2/2024\n")

	e := NewDelimited(warn.ExtractOptions{Delimiter: "|"}, zap.NewNop())
	table, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Acme Corp", table.Rows[0]["Company"])
}

func TestDelimitedExtractRaggedRows(t *testing.T) {
	t.Parallel()

	doc := []byte("A,B,C\n1,2\n4,5,6\n")

	e := NewDelimited(warn.ExtractOptions{}, zap.NewNop())
	table, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.NotContains(t, table.Rows[0], "C")
	assert.Equal(t, "6", table.Rows[1]["C"])
}

func TestDelimitedExtractEmptyDocument(t *testing.T) {
	t.Parallel()

	e := NewDelimited(warn.ExtractOptions{}, zap.NewNop())
	table, err := e.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestNewDispatchesByFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format warn.Format
		want   any
	}{
		{warn.FormatHTML, (*HTML)(nil)},
		{warn.FormatPDF, (*PDF)(nil)},
		{warn.FormatSpreadsheet, (*Spreadsheet)(nil)},
		{warn.FormatCSV, (*Delimited)(nil)},
		{warn.FormatGoogleSheets, (*Delimited)(nil)},
	}
	for _, tc := range tests {
		t.Run(string(tc.format), func(t *testing.T) {
			t.Parallel()
			e, err := New(tc.format, warn.ExtractOptions{}, zap.NewNop())
			require.NoError(t, err)
			assert.IsType(t, tc.want, e)
		})
	}

	_, err := New(warn.Format("dbf"), warn.ExtractOptions{}, zap.NewNop())
	assert.Error(t, err)
}
