package joblink

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

type fakeFetcher struct {
	pages   map[string][]byte
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (warn.Document, error) {
	f.fetched = append(f.fetched, url)
	body, ok := f.pages[url]
	if !ok {
		return warn.Document{}, fmt.Errorf("no fixture for %s", url)
	}
	return warn.Document{URL: url, StatusCode: 200, Body: body, FetchedAt: time.Now()}, nil
}

func TestSearchURL(t *testing.T) {
	t.Parallel()

	got, base, err := SearchURL("https://www.azjobconnection.gov/search/warn_lookups/new", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://www.azjobconnection.gov", base)
	assert.Contains(t, got, "/search/warn_lookups?")
	assert.Contains(t, got, "commit=Search")
	assert.Contains(t, got, "notice_eq%5D=true")
	assert.Contains(t, got, "notice_on_gteq%5D=1988-08-04")
}

func TestSearchURLCustomOverrides(t *testing.T) {
	t.Parallel()

	got, _, err := SearchURL("https://portal.example.gov", map[string]string{
		"notice_on_gteq": "2020-01-01",
	})
	require.NoError(t, err)
	assert.Contains(t, got, "2020-01-01")
	assert.NotContains(t, got, "1988-08-04")
}

func resultsPage(next bool) []byte {
	nextLink := ""
	if next {
		nextLink = `<a class="next_page" href="/search/warn_lookups?page=2">Next</a>`
	}
	return []byte(fmt.Sprintf(`<html><body>
	<table class="sortable responsive default">
		<thead><tr><th>Company ▲</th><th>Notice Date</th></tr></thead>
		<tbody>
			<tr><td><a href="/warn_lookups/1">Acme Corp</a></td><td>1/2/2024</td></tr>
		</tbody>
	</table>%s</body></html>`, nextLink))
}

func detailPage() []byte {
	return []byte(`<html><body><dl>
	<dt>Number of Affected Workers</dt><dd>120</dd>
	<dt>County</dt><dd>Maricopa</dd>
	</dl></body></html>`)
}

func TestScrapeFollowsDetailsAndPagination(t *testing.T) {
	t.Parallel()

	src := warn.SourceConfig{
		StateAbbrev: "AZ",
		URL:         "https://www.azjobconnection.gov/search/warn_lookups/new",
	}
	start, base, err := SearchURL(src.URL, nil)
	require.NoError(t, err)

	secondPage := []byte(`<html><body>
	<table class="sortable responsive default">
		<thead><tr><th>Company</th><th>Notice Date</th></tr></thead>
		<tbody>
			<tr><td><a href="/warn_lookups/2">Widgets Inc</a></td><td>3/4/2024</td></tr>
		</tbody>
	</table></body></html>`)

	fetcher := &fakeFetcher{pages: map[string][]byte{
		start: resultsPage(true),
		base + "/search/warn_lookups?page=2": secondPage,
		base + "/warn_lookups/1":             detailPage(),
		base + "/warn_lookups/2":             detailPage(),
	}}

	s := New(fetcher, zap.NewNop())
	table, err := s.Scrape(context.Background(), src)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, "Acme Corp", first["Company"])
	assert.Equal(t, "120", first["Number of Affected Workers"])
	assert.Equal(t, "Maricopa", first["County"])
	assert.Equal(t, base+"/warn_lookups/1", first["Notice URL"])

	assert.Equal(t, "Widgets Inc", table.Rows[1]["Company"])
}

func TestScrapeDetailFailureKeepsPartialEntry(t *testing.T) {
	t.Parallel()

	src := warn.SourceConfig{
		StateAbbrev: "AR",
		URL:         "https://portal.example.gov/search/warn_lookups/new",
	}
	start, _, err := SearchURL(src.URL, nil)
	require.NoError(t, err)

	fetcher := &fakeFetcher{pages: map[string][]byte{
		start: resultsPage(false),
		// detail page fixture intentionally missing
	}}

	s := New(fetcher, zap.NewNop())
	table, err := s.Scrape(context.Background(), src)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Acme Corp", table.Rows[0]["Company"])
	assert.NotContains(t, table.Rows[0], "County")
}

func TestScrapeNoTableReturnsEmpty(t *testing.T) {
	t.Parallel()

	src := warn.SourceConfig{
		StateAbbrev: "AZ",
		URL:         "https://portal.example.gov/search/warn_lookups/new",
	}
	start, _, err := SearchURL(src.URL, nil)
	require.NoError(t, err)

	fetcher := &fakeFetcher{pages: map[string][]byte{
		start: []byte("<html><body>maintenance page</body></html>"),
	}}

	s := New(fetcher, zap.NewNop())
	table, err := s.Scrape(context.Background(), src)
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}
