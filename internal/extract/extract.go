// Package extract converts raw source documents into rectangular tables.
//
// Each extractor is content-agnostic: it knows nothing about WARN notices,
// only how to pull a table of string cells out of a document of its format.
// Extractors are best-effort by contract: if the expected tabular structure
// is missing, they log an error and return an empty table rather than
// failing the run, since state web layouts change without notice.
package extract

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// New returns the extractor for a declared format.
func New(format warn.Format, opts warn.ExtractOptions, logger *zap.Logger) (warn.Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch format.Canonical() {
	case warn.FormatHTML:
		return NewHTML(opts, logger), nil
	case warn.FormatPDF:
		return NewPDF(opts, nil, logger), nil
	case warn.FormatSpreadsheet:
		return NewSpreadsheet(opts, logger), nil
	case warn.FormatCSV:
		return NewDelimited(opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

// zipRow pairs headers with cells positionally, stopping at the shorter
// of the two.
func zipRow(headers []string, cells []string) warn.Row {
	row := warn.Row{}
	for i, h := range headers {
		if i >= len(cells) {
			break
		}
		if h == "" {
			continue
		}
		row[h] = cells[i]
	}
	return row
}
