package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/metrics"
	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Grid is one detected table: rows of string cells.
type Grid [][]string

// PageGridder turns a PDF document into per-page cell grids. The extractor
// treats table detection as a black box so that the detection strategy can
// be swapped without touching schema handling.
type PageGridder interface {
	Grids(doc []byte) ([]Grid, error)
}

// PDF extracts tabular data from PDF documents.
//
// The first grid in the file establishes the expected column count and
// names; later grids are appended only when their column count matches.
// Mismatched grids (summary tables, page footers detected as tables) are
// dropped with a warning, never an error. Lenient mode trims extra trailing
// columns instead of dropping the grid.
type PDF struct {
	opts    warn.ExtractOptions
	gridder PageGridder
	logger  *zap.Logger
}

// NewPDF builds a PDF extractor. A nil gridder selects the built-in
// text-clustering gridder.
func NewPDF(opts warn.ExtractOptions, gridder PageGridder, logger *zap.Logger) *PDF {
	if gridder == nil {
		gridder = NewTextGridder()
	}
	return &PDF{opts: opts, gridder: gridder, logger: logger}
}

// Extract implements warn.Extractor.
func (e *PDF) Extract(_ context.Context, doc []byte) (warn.RawTable, error) {
	grids, err := e.gridder.Grids(doc)
	if err != nil {
		e.logger.Error("no tables found in PDF; check that the file was saved correctly", zap.Error(err))
		return warn.RawTable{}, nil
	}
	if len(grids) == 0 || len(grids[0]) == 0 {
		e.logger.Error("no tables found in PDF; check that the file was saved correctly")
		return warn.RawTable{}, nil
	}

	columns, expected, ok := e.headerSchema(grids[0])
	if !ok {
		return warn.RawTable{}, nil
	}

	var out warn.RawTable
	for i, grid := range grids {
		rows, keep := e.conformGrid(i, grid, expected)
		if !keep {
			continue
		}
		rows = e.dropHeaderRows(i, rows)
		for _, cells := range rows {
			row := zipRow(columns, cells)
			if len(row) == 0 {
				continue
			}
			out.Append(row)
		}
	}
	return out, nil
}

// headerSchema derives the column names and expected width from the first grid.
func (e *PDF) headerSchema(first Grid) ([]string, int, bool) {
	expected := gridWidth(first)

	if len(e.opts.ColumnNames) > 0 {
		if len(e.opts.ColumnNames) != expected {
			e.logger.Error("configured column names do not match the columns present; update or remove them",
				zap.Int("configured", len(e.opts.ColumnNames)),
				zap.Int("present", expected))
			return nil, 0, false
		}
		return e.opts.ColumnNames, expected, true
	}

	headerIdx := e.opts.HeaderRow + e.opts.FirstPageHeader
	if headerIdx >= len(first) {
		e.logger.Error("header row index beyond first table", zap.Int("header_row", headerIdx))
		return nil, 0, false
	}
	nameRow := first[headerIdx]

	columns := make([]string, expected)
	if e.opts.HeaderDelimiter != "" {
		// Poor contrast sometimes squashes all column names into one
		// cell; split them back out by the configured delimiter.
		idx, squashed := firstNonEmpty(nameRow)
		parts := strings.Split(squashed, e.opts.HeaderDelimiter)
		for j, p := range parts {
			if idx+j < expected {
				columns[idx+j] = p
			}
		}
	} else {
		copy(columns, nameRow)
	}
	for j := range columns {
		columns[j] = CollapseWhitespace(columns[j])
	}
	return columns, expected, true
}

// conformGrid enforces the column-count schema established by the first grid.
func (e *PDF) conformGrid(index int, grid Grid, expected int) (Grid, bool) {
	width := gridWidth(grid)
	switch {
	case width == expected:
		return grid, true
	case width > expected && e.opts.Lenient:
		trimmed := make(Grid, len(grid))
		for i, row := range grid {
			if len(row) > expected {
				row = row[:expected]
			}
			trimmed[i] = row
		}
		return trimmed, true
	default:
		e.logger.Warn("dropping a table whose column count disagrees with the first table in the file",
			zap.Int("table", index),
			zap.Int("columns", width),
			zap.Int("expected", expected))
		metrics.ObserveGridDropped(e.opts.State)
		return nil, false
	}
}

func (e *PDF) dropHeaderRows(index int, grid Grid) Grid {
	var drop int
	switch {
	case index == 0:
		drop = e.opts.HeaderRow + e.opts.FirstPageHeader + 1
	case e.opts.HeaderAllPages:
		drop = e.opts.HeaderRow + 1
	default:
		return grid
	}
	if drop >= len(grid) {
		return nil
	}
	return grid[drop:]
}

func gridWidth(grid Grid) int {
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

func firstNonEmpty(cells []string) (int, string) {
	for i, c := range cells {
		if c != "" {
			return i, c
		}
	}
	return 0, ""
}
