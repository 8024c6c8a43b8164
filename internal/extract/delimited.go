package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Delimited extracts tabular data from delimited text (CSV by default).
// The first record supplies the column names. Google Sheets sources are
// exported as CSV upstream and land here.
type Delimited struct {
	opts   warn.ExtractOptions
	logger *zap.Logger
}

// NewDelimited builds a delimited-text extractor.
func NewDelimited(opts warn.ExtractOptions, logger *zap.Logger) *Delimited {
	return &Delimited{opts: opts, logger: logger}
}

// Extract implements warn.Extractor.
func (e *Delimited) Extract(_ context.Context, doc []byte) (warn.RawTable, error) {
	reader := csv.NewReader(bytes.NewReader(doc))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if e.opts.Delimiter != "" {
		reader.Comma = []rune(e.opts.Delimiter)[0]
	}

	header, err := reader.Read()
	if err != nil {
		e.logger.Error("no header row found in delimited document", zap.Error(err))
		return warn.RawTable{}, nil
	}
	for i, h := range header {
		header[i] = CollapseWhitespace(h)
	}

	var out warn.RawTable
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			e.logger.Warn("skipping malformed record", zap.Error(err))
			continue
		}
		row := zipRow(header, record)
		if len(row) == 0 {
			continue
		}
		out.Append(row)
	}
	return out, nil
}
