// Package normalize maps raw per-state column names onto the canonical
// cross-source field vocabulary.
package normalize

import (
	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Record builds a normalized record from a raw row using the source's
// raw-name to canonical-name mapping. Raw names absent from the row are
// silently skipped: not every source populates every declared field, and
// the absence is expected rather than an error. The result never contains
// placeholder values for missing fields.
func Record(row warn.Row, mapping map[string]string) map[string]string {
	out := make(map[string]string, len(mapping))
	for raw, canonical := range mapping {
		if canonical == "" {
			continue
		}
		if value, ok := row[raw]; ok {
			out[canonical] = value
		}
	}
	return out
}
