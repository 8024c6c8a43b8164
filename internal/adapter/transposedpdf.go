package adapter

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/extract"
	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Field name assigned to the unnamed leading column of amended notices.
const updateNoteField = "Update Note"

// TransposedPDF handles PDF archives where each detected grid is a single
// WARN entry laid out as label/value columns (West Virginia style). Each
// grid is transposed so labels become column names; values spanning split
// cells are merged back into the labeled column to their left.
type TransposedPDF struct {
	opts    warn.ExtractOptions
	gridder extract.PageGridder
	logger  *zap.Logger
}

// NewTransposedPDF builds the adapter. A nil gridder selects the built-in
// text-clustering gridder.
func NewTransposedPDF(opts warn.ExtractOptions, gridder extract.PageGridder, logger *zap.Logger) *TransposedPDF {
	if gridder == nil {
		gridder = extract.NewTextGridder()
	}
	return &TransposedPDF{opts: opts, gridder: gridder, logger: logger}
}

// Extract implements warn.Extractor.
func (e *TransposedPDF) Extract(_ context.Context, doc []byte) (warn.RawTable, error) {
	grids, err := e.gridder.Grids(doc)
	if err != nil {
		e.logger.Error("no tables found in PDF; check that the file was saved correctly", zap.Error(err))
		return warn.RawTable{}, nil
	}

	var out warn.RawTable
	for _, grid := range grids {
		entry := e.entryFromGrid(transpose(grid))
		if len(entry) > 0 {
			out.Append(entry)
		}
	}
	if out.Len() == 0 {
		e.logger.Error("no entries found in PDF; layout may have changed")
	}
	return out, nil
}

// entryFromGrid collapses a transposed grid into one row. The first cell
// of each column is its label; the remaining cells join into the value.
// Unlabeled columns carry overflow from split cells and are appended to
// the previous labeled column, except an unlabeled first column, which
// holds the update annotation on amended notices.
func (e *TransposedPDF) entryFromGrid(grid extract.Grid) warn.Row {
	entry := warn.Row{}
	prev := ""
	for j, column := range grid {
		if len(column) == 0 {
			continue
		}
		label := extract.CollapseWhitespace(column[0])
		value := strings.TrimSpace(strings.Join(column[1:], "\n"))
		switch {
		case label == "" && j == 0:
			entry[updateNoteField] = value
			prev = updateNoteField
		case label == "":
			if prev != "" {
				entry[prev] = strings.TrimSpace(entry[prev] + "\n" + value)
			}
		default:
			entry[label] = value
			prev = label
		}
	}
	return entry
}

func transpose(grid extract.Grid) extract.Grid {
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	out := make(extract.Grid, width)
	for j := 0; j < width; j++ {
		column := make([]string, 0, len(grid))
		for _, row := range grid {
			if j < len(row) {
				column = append(column, row[j])
			} else {
				column = append(column, "")
			}
		}
		out[j] = column
	}
	return out
}
