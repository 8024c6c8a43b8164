package extract

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]string) []byte {
	t.Helper()

	book := excelize.NewFile()
	require.NoError(t, book.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		for j, cell := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, book.SetCellStr(sheet, axis, cell))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))
	require.NoError(t, book.Close())
	return buf.Bytes()
}

func TestSpreadsheetExtractDefaultHeader(t *testing.T) {
	t.Parallel()

	doc := buildWorkbook(t, "Notices", [][]string{
		{"Company", "Date"},
		{"Acme Corp", "1/2/2024"},
		{"Widgets Inc", "3/4/2024"},
	})

	e := NewSpreadsheet(warn.ExtractOptions{}, zap.NewNop())
	table, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Acme Corp", table.Rows[0]["Company"])
}

func TestSpreadsheetExtractSkipHeaderDropFooter(t *testing.T) {
	t.Parallel()

	doc := buildWorkbook(t, "Report", [][]string{
		{"Company", "Date"},
		{"Acme Corp", "1/2/2024"},
		{"Widgets Inc", "3/4/2024"},
		{"Gadgets LLC", "5/6/2024"},
		{"Total: 3", ""},
	})

	e := NewSpreadsheet(warn.ExtractOptions{SkipHeader: 1, DropFooter: 1}, zap.NewNop())
	table, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Acme Corp", table.Rows[0]["Company"])
	assert.Equal(t, "Gadgets LLC", table.Rows[2]["Company"])
}

func TestSpreadsheetExtractHyperlinks(t *testing.T) {
	t.Parallel()

	book := excelize.NewFile()
	require.NoError(t, book.SetSheetName("Sheet1", "Notices"))
	require.NoError(t, book.SetCellStr("Notices", "A1", "Company"))
	require.NoError(t, book.SetCellStr("Notices", "A2", "Acme Corp"))
	require.NoError(t, book.SetCellHyperLink("Notices", "A2", "https://example.gov/notices/1.pdf", "External"))
	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))
	require.NoError(t, book.Close())

	e := NewSpreadsheet(warn.ExtractOptions{LinkColumns: []int{0}}, zap.NewNop())
	table, err := e.Extract(context.Background(), buf.Bytes())
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "https://example.gov/notices/1.pdf", table.Rows[0]["Company Link"])
}

func TestSpreadsheetExtractSheetSubset(t *testing.T) {
	t.Parallel()

	book := excelize.NewFile()
	require.NoError(t, book.SetSheetName("Sheet1", "2024"))
	_, err := book.NewSheet("Archive")
	require.NoError(t, err)
	for i, cells := range [][]string{{"Company"}, {"Acme Corp"}} {
		for j, cell := range cells {
			axis, aerr := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, aerr)
			require.NoError(t, book.SetCellStr("2024", axis, cell))
		}
	}
	require.NoError(t, book.SetCellStr("Archive", "A1", "Company"))
	require.NoError(t, book.SetCellStr("Archive", "A2", "Old Co"))
	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))
	require.NoError(t, book.Close())

	e := NewSpreadsheet(warn.ExtractOptions{Sheets: []string{"2024"}}, zap.NewNop())
	table, eerr := e.Extract(context.Background(), buf.Bytes())
	require.NoError(t, eerr)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Acme Corp", table.Rows[0]["Company"])
}

func TestSpreadsheetExtractBadDocument(t *testing.T) {
	t.Parallel()

	e := NewSpreadsheet(warn.ExtractOptions{}, zap.NewNop())
	table, err := e.Extract(context.Background(), []byte("not a workbook"))
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestSpreadsheetExtractManySheetsConcatenated(t *testing.T) {
	t.Parallel()

	book := excelize.NewFile()
	require.NoError(t, book.SetSheetName("Sheet1", "Q1"))
	_, err := book.NewSheet("Q2")
	require.NoError(t, err)
	for i, sheet := range []string{"Q1", "Q2"} {
		require.NoError(t, book.SetCellStr(sheet, "A1", "Company"))
		require.NoError(t, book.SetCellStr(sheet, "A2", fmt.Sprintf("Company %d", i+1)))
	}
	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))
	require.NoError(t, book.Close())

	e := NewSpreadsheet(warn.ExtractOptions{}, zap.NewNop())
	table, eerr := e.Extract(context.Background(), buf.Bytes())
	require.NoError(t, eerr)
	assert.Len(t, table.Rows, 2)
}
