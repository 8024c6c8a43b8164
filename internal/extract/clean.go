package extract

import (
	"strings"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// CollapseWhitespace replaces runs of whitespace, including newlines and
// tabs, with a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Clean drops rows and columns that are entirely empty and collapses
// whitespace runs in column names. Idempotent: cleaning a clean table
// is a no-op.
func Clean(table warn.RawTable) warn.RawTable {
	renamed := renameHeaders(table)

	// Find columns with at least one non-empty cell.
	populated := make(map[string]bool, len(renamed.Headers))
	for _, row := range renamed.Rows {
		for name, value := range row {
			if value != "" {
				populated[name] = true
			}
		}
	}

	out := warn.RawTable{}
	for _, h := range renamed.Headers {
		if populated[h] {
			out.Headers = append(out.Headers, h)
		}
	}
	for _, row := range renamed.Rows {
		kept := warn.Row{}
		for name, value := range row {
			if populated[name] {
				kept[name] = value
			}
		}
		if kept.Empty() {
			continue
		}
		out.Rows = append(out.Rows, kept)
	}
	return out
}

func renameHeaders(table warn.RawTable) warn.RawTable {
	rename := make(map[string]string, len(table.Headers))
	out := warn.RawTable{}
	for _, h := range table.Headers {
		clean := CollapseWhitespace(h)
		rename[h] = clean
		out.Headers = append(out.Headers, clean)
	}
	for _, row := range table.Rows {
		next := make(warn.Row, len(row))
		for name, value := range row {
			clean, ok := rename[name]
			if !ok {
				clean = CollapseWhitespace(name)
			}
			next[clean] = value
		}
		out.Rows = append(out.Rows, next)
	}
	return out
}
