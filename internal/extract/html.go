package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Column names for hyperlinks harvested from table rows.
const (
	linkField           = "Notice Link"
	updatedNoticesField = "Updated Notices"
)

// HTML extracts tables from HTML documents.
//
// Headers come from <th> cells when present, otherwise from the first data
// row. Rows are zipped positionally against the headers. When link
// extraction is enabled, the first href found in a row is resolved against
// the configured base URL and recorded as a synthetic "Notice Link" column;
// any further hrefs land in "Updated Notices".
type HTML struct {
	opts   warn.ExtractOptions
	logger *zap.Logger
}

// NewHTML builds an HTML table extractor.
func NewHTML(opts warn.ExtractOptions, logger *zap.Logger) *HTML {
	return &HTML{opts: opts, logger: logger}
}

// Extract implements warn.Extractor.
func (e *HTML) Extract(_ context.Context, doc []byte) (warn.RawTable, error) {
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		e.logger.Error("parse HTML document", zap.Error(err))
		return warn.RawTable{}, nil
	}

	tables := parsed.Find(e.selector())
	if tables.Length() == 0 {
		e.logger.Error("no table found; selectors or URL may need updating",
			zap.String("selector", e.selector()))
		return warn.RawTable{}, nil
	}

	var out warn.RawTable
	tables.Each(func(_ int, table *goquery.Selection) {
		e.extractTable(table, &out)
	})
	return out, nil
}

func (e *HTML) selector() string {
	tag := e.opts.Tag
	if tag == "" {
		tag = "table"
	}
	if e.opts.TableClass != "" {
		return fmt.Sprintf("%s[class=%q]", tag, e.opts.TableClass)
	}
	return tag
}

func (e *HTML) extractTable(table *goquery.Selection, out *warn.RawTable) {
	headers := cellTexts(table.Find("th"))

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr")
	}
	if rows.Length() == 0 {
		e.logger.Error("no rows found in table; selectors may need updating")
		return
	}

	var dataRows []*goquery.Selection
	rows.Each(func(_ int, row *goquery.Selection) {
		dataRows = append(dataRows, row)
	})
	if e.opts.DropFirstRow && len(dataRows) > 0 {
		dataRows = dataRows[1:]
	}

	// No <th> cells: the first data row supplies the column names.
	if len(headers) == 0 && len(dataRows) > 0 {
		headers = cellTexts(dataRows[0].Find("td"))
		dataRows = dataRows[1:]
	}
	for i, h := range headers {
		headers[i] = CollapseWhitespace(h)
	}

	for _, row := range dataRows {
		cells := cellTexts(row.Find("td"))
		fields := zipRow(headers, cells)
		if e.opts.ExtractLinks {
			e.attachLinks(row, fields)
		}
		if len(fields) == 0 {
			continue
		}
		out.Append(fields)
	}
}

func (e *HTML) attachLinks(row *goquery.Selection, fields warn.Row) {
	scope := row
	// A positive link column narrows the search to that cell; zero keeps
	// the whole row, since most archives put the link in the first column.
	if e.opts.LinkColumn > 0 {
		cell := row.Find("td").Eq(e.opts.LinkColumn)
		if cell.Length() > 0 {
			scope = cell
		}
	}

	var hrefs []string
	scope.Find("[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			hrefs = append(hrefs, href)
		}
	})
	if len(hrefs) == 0 {
		e.logger.Warn("expected a link in table row but found none; link column may need updating")
		return
	}
	fields[linkField] = e.resolve(hrefs[0])
	if len(hrefs) > 1 {
		fields[updatedNoticesField] = strings.Join(hrefs[1:], "\n")
	}
}

func (e *HTML) resolve(href string) string {
	if e.opts.BaseURL == "" {
		return href
	}
	base, err := url.Parse(e.opts.BaseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func cellTexts(cells *goquery.Selection) []string {
	var out []string
	cells.Each(func(_ int, cell *goquery.Selection) {
		out = append(out, strings.TrimSpace(cell.Text()))
	})
	return out
}
