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

// PipeParagraphs handles archives that list notices as paragraphs of
// pipe-separated "Field: Value" segments (Tennessee style), with the
// original notice PDF linked from the same paragraph.
type PipeParagraphs struct {
	opts   warn.ExtractOptions
	logger *zap.Logger
}

// NewPipeParagraphs builds the adapter.
func NewPipeParagraphs(opts warn.ExtractOptions, logger *zap.Logger) *PipeParagraphs {
	return &PipeParagraphs{opts: opts, logger: logger}
}

// Extract implements warn.Extractor.
func (e *PipeParagraphs) Extract(_ context.Context, doc []byte) (warn.RawTable, error) {
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
		container = found
	}

	var out warn.RawTable
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		segments := strings.Split(p.Text(), "|")
		if len(segments) < 2 {
			return
		}
		fields := warn.Row{}
		for _, segment := range segments {
			key, value, ok := strings.Cut(segment, ":")
			if !ok {
				continue
			}
			key = extract.CollapseWhitespace(key)
			if key == "" {
				continue
			}
			fields[key] = strings.TrimSpace(value)
		}
		if href, ok := p.Find("[href]").First().Attr("href"); ok {
			fields["Notice Link"] = href
		}
		if len(fields) > 0 {
			out.Append(fields)
		}
	})

	if out.Len() == 0 {
		e.logger.Error("no pipe-delimited entries found; layout may have changed")
	}
	return out, nil
}
