package adapter

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// DateCompanyParagraphs handles archives that publish notices as paragraph
// lines of the form "Date – Company" with the notice PDF linked inline
// (Hawaii style). Follow-up lines starting with an asterisk attach updated
// notice links to the previous entry; other unstructured lines accumulate
// in its Notes field.
type DateCompanyParagraphs struct {
	opts   warn.ExtractOptions
	logger *zap.Logger
}

// NewDateCompanyParagraphs builds the adapter.
func NewDateCompanyParagraphs(opts warn.ExtractOptions, logger *zap.Logger) *DateCompanyParagraphs {
	return &DateCompanyParagraphs{opts: opts, logger: logger}
}

// Extract implements warn.Extractor.
func (e *DateCompanyParagraphs) Extract(_ context.Context, doc []byte) (warn.RawTable, error) {
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		e.logger.Error("parse HTML document", zap.Error(err))
		return warn.RawTable{}, nil
	}

	container := parsed.Selection
	if e.opts.Tag != "" {
		found := parsed.Find(e.opts.Tag)
		if found.Length() == 0 {
			e.logger.Error("content container not found; selector may need updating",
				zap.String("selector", e.opts.Tag))
			return warn.RawTable{}, nil
		}
		container = found.Last()
	}

	var out warn.RawTable
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := lineText(p)
		if text == "" {
			return
		}
		date, company, ok := splitDateCompany(text)
		if !ok {
			e.attachFootnote(&out, p, text)
			return
		}
		href, _ := p.Find("[href]").First().Attr("href")
		out.Append(makeEntry(date, company, href))
	})

	if out.Len() == 0 {
		e.logger.Error("no date-company entries found; layout may have changed")
	}
	return out, nil
}

// attachFootnote adds an update link or note to the most recent entry.
func (e *DateCompanyParagraphs) attachFootnote(out *warn.RawTable, p *goquery.Selection, text string) {
	if out.Len() == 0 {
		e.logger.Warn("footnote line before any entry was not captured", zap.String("text", text))
		return
	}
	last := out.Rows[out.Len()-1]
	if strings.HasPrefix(text, "*") {
		if href, ok := p.Find("[href]").First().Attr("href"); ok {
			links := last["Updated Links"]
			if links != "" {
				links += "\n"
			}
			last["Updated Links"] = links + href
			return
		}
	}
	notes := last["Notes"]
	if notes != "" {
		notes += "\t"
	}
	last["Notes"] = notes + text
}

// lineText returns the paragraph text with anchor labels removed. Link
// captions ("PDF", "Updated") are not part of the notice line.
func lineText(p *goquery.Selection) string {
	clone := p.Clone()
	clone.Find("a").Remove()
	return strings.TrimSpace(clone.Text())
}

func makeEntry(date, company, href string) warn.Row {
	entry := warn.Row{
		"Date Received": strings.TrimSpace(date),
		"Company":       strings.TrimSpace(company),
		"Notice Link":   href,
		"Updated Links": "",
		"Notes":         "",
	}
	if strings.HasSuffix(entry["Company"], "*") {
		entry["Notes"] = "(Scraping note: see the state WARN website for further information)"
		entry["Company"] = strings.Trim(entry["Company"], "* ")
	}
	return entry
}

// splitDateCompany splits a "Date – Company" line on the first dash,
// accepting the en dash, em dash, or hyphen variants states actually use.
func splitDateCompany(text string) (string, string, bool) {
	for _, sep := range []string{"–", "—", " - "} {
		if date, company, ok := strings.Cut(text, sep); ok {
			return date, company, true
		}
	}
	return "", "", false
}
