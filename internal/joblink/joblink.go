// Package joblink scrapes JobLink-style WARN search portals. Several
// states run the same portal software, so one scraper covers them all:
// it builds the search query, walks the paginated results table, and
// follows each entry's detail page for the fields the table omits.
package joblink

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/extract"
	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Results table class used by the portal software.
const resultsTableClass = "sortable responsive default"

// sortMarkers strips the ascending/descending arrows from sortable headers.
var sortMarkers = regexp.MustCompile(`[▲▼]`)

var searchPathRe = regexp.MustCompile(`/search/warn_lookups.*`)

// DefaultSearch restricts results to WARN notices since the statute took
// effect, sorted by notice date ascending.
var DefaultSearch = map[string]string{
	"notice_eq":      "true",
	"notice_on_gteq": "1988-08-04",
	"s":              "notice_on asc",
}

// SearchURL builds the portal search URL and the base URL used to resolve
// relative links. Custom parameters override the defaults.
func SearchURL(archiveURL string, custom map[string]string) (string, string, error) {
	base := searchPathRe.ReplaceAllString(archiveURL, "")
	if _, err := url.Parse(base); err != nil {
		return "", "", fmt.Errorf("parse archive url %q: %w", archiveURL, err)
	}

	search := make(map[string]string, len(DefaultSearch)+len(custom))
	for k, v := range DefaultSearch {
		search[k] = v
	}
	for k, v := range custom {
		search[k] = v
	}

	keys := make([]string, 0, len(search))
	for k := range search {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{"commit": {"Search"}, "utf8": {"✓"}}
	for _, k := range keys {
		values.Set(fmt.Sprintf("q[%s]", k), search[k])
	}
	return base + "/search/warn_lookups?" + values.Encode(), base, nil
}

// Scraper walks a JobLink portal and produces a RawTable.
type Scraper struct {
	fetcher warn.DocumentFetcher
	logger  *zap.Logger
}

// New builds a Scraper.
func New(fetcher warn.DocumentFetcher, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{fetcher: fetcher, logger: logger}
}

// Scrape fetches every page of search results for the source and returns
// the combined table, each row enriched with its detail-page fields.
func (s *Scraper) Scrape(ctx context.Context, src warn.SourceConfig) (warn.RawTable, error) {
	pageURL, base, err := SearchURL(src.URL, nil)
	if err != nil {
		return warn.RawTable{}, err
	}

	var out warn.RawTable
	pages := 0
	for pageURL != "" {
		doc, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return out, fmt.Errorf("fetch results page %q: %w", pageURL, err)
		}
		pages++

		next := s.parseResultsPage(ctx, doc.Body, base, &out)
		pageURL = resolve(base, next)
	}
	s.logger.Info("downloaded search results",
		zap.String("state", src.StateAbbrev),
		zap.Int("pages", pages),
		zap.Int("entries", out.Len()))
	return out, nil
}

// parseResultsPage appends the page's rows to out and returns the href of
// the next page, if any.
func (s *Scraper) parseResultsPage(ctx context.Context, body []byte, base string, out *warn.RawTable) string {
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		s.logger.Error("parse results page", zap.Error(err))
		return ""
	}

	table := parsed.Find(fmt.Sprintf("table[class=%q]", resultsTableClass))
	if table.Length() == 0 {
		s.logger.Error("no results table found; selector may need updating")
		return ""
	}

	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		name := sortMarkers.ReplaceAllString(th.Text(), "")
		headers = append(headers, extract.CollapseWhitespace(name))
	})

	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		fields := warn.Row{}
		for i, h := range headers {
			if i >= len(cells) || h == "" {
				continue
			}
			fields[h] = cells[i]
		}
		if len(fields) == 0 {
			return
		}
		if href, ok := tr.Find("td a[href]").First().Attr("href"); ok {
			s.mergeDetails(ctx, resolve(base, href), fields)
		} else {
			s.logger.Warn("results row has no detail link; keeping partial entry")
		}
		out.Append(fields)
	})

	next, _ := parsed.Find("a.next_page[href]").First().Attr("href")
	return next
}

// mergeDetails fetches an entry's detail page and folds its dt/dd pairs
// into the row. Failures leave the row partial rather than dropping it.
func (s *Scraper) mergeDetails(ctx context.Context, detailURL string, fields warn.Row) {
	doc, err := s.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		s.logger.Warn("fetch detail page failed; keeping partial entry",
			zap.String("url", detailURL), zap.Error(err))
		return
	}
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		s.logger.Warn("parse detail page failed; keeping partial entry",
			zap.String("url", detailURL), zap.Error(err))
		return
	}

	var terms, defs []string
	parsed.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		terms = append(terms, extract.CollapseWhitespace(dt.Text()))
	})
	parsed.Find("dd").Each(func(_ int, dd *goquery.Selection) {
		defs = append(defs, strings.TrimSpace(dd.Text()))
	})
	for i, term := range terms {
		if i >= len(defs) || term == "" {
			break
		}
		fields[term] = defs[i]
	}
	fields["Notice URL"] = detailURL
}

func resolve(base, href string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
