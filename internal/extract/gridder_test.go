package extract

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextGridderClustersRowsAndCells(t *testing.T) {
	t.Parallel()

	g := NewTextGridder()

	// Two visual rows; cells separated by a wide horizontal gap.
	texts := []pdf.Text{
		{S: "Date", X: 50, Y: 700, W: 30},
		{S: "Company", X: 200, Y: 700, W: 60},
		{S: "1/2/2024", X: 50, Y: 680, W: 55},
		{S: "Acme", X: 200, Y: 680, W: 35},
		{S: " Corp", X: 236, Y: 680, W: 35},
	}

	grid := g.gridFromTexts(texts)
	require.Len(t, grid, 2)
	assert.Equal(t, []string{"Date", "Company"}, grid[0])
	assert.Equal(t, []string{"1/2/2024", "Acme Corp"}, grid[1])
}

func TestTextGridderIgnoresBlankFragments(t *testing.T) {
	t.Parallel()

	g := NewTextGridder()
	texts := []pdf.Text{
		{S: "  ", X: 10, Y: 700, W: 5},
		{S: "Company", X: 50, Y: 650, W: 60},
	}

	grid := g.gridFromTexts(texts)
	require.Len(t, grid, 1)
	assert.Equal(t, []string{"Company"}, grid[0])
}

func TestTextGridderBadDocument(t *testing.T) {
	t.Parallel()

	g := NewTextGridder()
	_, err := g.Grids([]byte("not a pdf"))
	assert.Error(t, err)
}
