package adapter

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/extract"
	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// OneRowTables handles archives where every row, including the header, is
// its own single-row table (New Jersey style). The first table supplies the
// column names and each following table contributes one entry.
//
// Some archive years use normal table markup instead; when nothing is found
// the standard HTML extractor runs as a fallback, so a month without
// entries simply yields an empty table.
type OneRowTables struct {
	opts   warn.ExtractOptions
	logger *zap.Logger
}

// NewOneRowTables builds the adapter.
func NewOneRowTables(opts warn.ExtractOptions, logger *zap.Logger) *OneRowTables {
	return &OneRowTables{opts: opts, logger: logger}
}

// Extract implements warn.Extractor.
func (e *OneRowTables) Extract(ctx context.Context, doc []byte) (warn.RawTable, error) {
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		e.logger.Error("parse HTML document", zap.Error(err))
		return warn.RawTable{}, nil
	}

	tables := parsed.Find("table")
	if tables.Length() == 0 {
		e.logger.Error("no table found; selectors or URL may need updating")
		return warn.RawTable{}, nil
	}

	var (
		headers []string
		out     warn.RawTable
	)
	tables.Each(func(i int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() != 1 {
			e.logger.Warn("expected exactly one row per table; layout may have changed",
				zap.Int("table", i), zap.Int("rows", rows.Length()))
		}
		if rows.Length() == 0 {
			return
		}
		var cells []string
		rows.First().Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if i == 0 {
			for _, c := range cells {
				headers = append(headers, extract.CollapseWhitespace(c))
			}
			return
		}
		fields := warn.Row{}
		for j, h := range headers {
			if j >= len(cells) || h == "" {
				continue
			}
			fields[h] = cells[j]
		}
		if len(fields) > 0 {
			out.Append(fields)
		}
	})

	if out.Len() == 0 {
		// Normal table markup for this year: use the standard extractor.
		return extract.NewHTML(e.opts, e.logger).Extract(ctx, doc)
	}
	return out, nil
}
