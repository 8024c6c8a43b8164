package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

func TestHTMLExtractWithTHHeaders(t *testing.T) {
	t.Parallel()

	doc := []byte(`<html><body><table>
		<tr><th>Company</th><th>Date</th></tr>
		<tr><td>Acme Corp</td><td>1/2/2024</td></tr>
		<tr><td>Widgets Inc</td><td>3/4/2024</td></tr>
	</table></body></html>`)

	e := NewHTML(warn.ExtractOptions{}, zap.NewNop())
	table, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Acme Corp", table.Rows[0]["Company"])
	assert.Equal(t, "3/4/2024", table.Rows[1]["Date"])
}

func TestHTMLExtractHeaderlessTableUsesFirstRow(t *testing.T) {
	t.Parallel()

	doc := []byte(`<table>
		<tr><td>A</td><td>B</td></tr>
		<tr><td>1</td><td>2</td></tr>
	</table>`)

	e := NewHTML(warn.ExtractOptions{}, zap.NewNop())
	table, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"A", "B"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, warn.Row{"A": "1", "B": "2"}, table.Rows[0])
}

func TestHTMLExtractResolvesLinks(t *testing.T) {
	t.Parallel()

	doc := []byte(`<table>
		<tr><th>Company</th></tr>
		<tr><td><a href="/notices/42.pdf">Acme</a></td></tr>
	</table>`)

	e := NewHTML(warn.ExtractOptions{
		ExtractLinks: true,
		BaseURL:      "https://labor.example.gov",
	}, zap.NewNop())
	table, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "https://labor.example.gov/notices/42.pdf", table.Rows[0]["Notice Link"])
}

func TestHTMLExtractLinkColumnNarrowsSearch(t *testing.T) {
	t.Parallel()

	doc := []byte(`<table>
		<tr><th>Company</th><th>Notice</th></tr>
		<tr>
			<td><a href="/company/acme">Acme</a></td>
			<td><a href="/notices/42.pdf">Notice</a></td>
		</tr>
	</table>`)

	e := NewHTML(warn.ExtractOptions{
		ExtractLinks: true,
		LinkColumn:   1,
		BaseURL:      "https://labor.example.gov",
	}, zap.NewNop())
	table, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "https://labor.example.gov/notices/42.pdf", table.Rows[0]["Notice Link"])
	assert.NotContains(t, table.Rows[0], "Updated Notices")
}

func TestHTMLExtractByTableClass(t *testing.T) {
	t.Parallel()

	doc := []byte(`
	<table class="nav"><tr><td>skip me</td></tr></table>
	<table class="sortable responsive">
		<tr><th>Company</th></tr>
		<tr><td>Acme</td></tr>
	</table>`)

	e := NewHTML(warn.ExtractOptions{TableClass: "sortable responsive"}, zap.NewNop())
	table, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Acme", table.Rows[0]["Company"])
}

func TestHTMLExtractNoTableReturnsEmpty(t *testing.T) {
	t.Parallel()

	e := NewHTML(warn.ExtractOptions{}, zap.NewNop())
	table, err := e.Extract(context.Background(), []byte(`<p>nothing tabular here</p>`))
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestHTMLExtractDropFirstRow(t *testing.T) {
	t.Parallel()

	doc := []byte(`<table>
		<tr><td>garbage banner row</td></tr>
		<tr><td>Company</td><td>Date</td></tr>
		<tr><td>Acme</td><td>1/2/2024</td></tr>
	</table>`)

	e := NewHTML(warn.ExtractOptions{DropFirstRow: true}, zap.NewNop())
	table, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Acme", table.Rows[0]["Company"])
}
