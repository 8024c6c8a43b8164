package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextGridder is the built-in PageGridder. It clusters positioned text
// fragments into rows by vertical proximity and splits rows into cells at
// horizontal gaps. One grid is produced per page.
//
// This is a text-based strategy: it needs no ruling lines, which suits the
// loosely formatted PDFs most states publish, but it cannot recover merged
// or borderless cells any better than the gaps allow.
type TextGridder struct {
	// RowTolerance is the max vertical distance (points) between fragments
	// considered part of the same row.
	RowTolerance float64
	// CellGap is the min horizontal gap (points) that starts a new cell.
	CellGap float64
}

// NewTextGridder returns a gridder with defaults tuned for the common
// single-table-per-page WARN report layout.
func NewTextGridder() *TextGridder {
	return &TextGridder{RowTolerance: 3.0, CellGap: 14.0}
}

// Grids implements PageGridder.
func (g *TextGridder) Grids(doc []byte) ([]Grid, error) {
	reader, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var grids []Grid
	for p := 1; p <= reader.NumPage(); p++ {
		page := reader.Page(p)
		if page.V.IsNull() {
			continue
		}
		texts := page.Content().Text
		if len(texts) == 0 {
			continue
		}
		grid := g.gridFromTexts(texts)
		if len(grid) > 0 {
			grids = append(grids, grid)
		}
	}
	return grids, nil
}

func (g *TextGridder) gridFromTexts(texts []pdf.Text) Grid {
	// PDF origin is bottom-left: sort top-to-bottom, then left-to-right.
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]pdf.Text
	for _, t := range sorted {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		if n := len(lines); n > 0 && lines[n-1][0].Y-t.Y <= g.RowTolerance {
			lines[n-1] = append(lines[n-1], t)
			continue
		}
		lines = append(lines, []pdf.Text{t})
	}

	grid := make(Grid, 0, len(lines))
	for _, line := range lines {
		grid = append(grid, g.splitCells(line))
	}
	return grid
}

func (g *TextGridder) splitCells(line []pdf.Text) []string {
	sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })

	var (
		cells []string
		cell  strings.Builder
		endX  float64
	)
	for i, t := range line {
		if i > 0 && t.X-endX > g.CellGap {
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		}
		cell.WriteString(t.S)
		if right := t.X + t.W; right > endX {
			endX = right
		}
	}
	if cell.Len() > 0 {
		cells = append(cells, strings.TrimSpace(cell.String()))
	}
	return cells
}
