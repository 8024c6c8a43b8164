package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

func TestRecordMapsRawToCanonical(t *testing.T) {
	t.Parallel()

	row := warn.Row{
		"Company Name":   "Acme Corp",
		"Layoff Date":    "1/2/2024",
		"Unmapped Extra": "ignored",
	}
	mapping := map[string]string{
		"Company Name": "COMPANY",
		"Layoff Date":  "EFFECTIVE_DATE",
	}

	got := Record(row, mapping)
	assert.Equal(t, map[string]string{
		"COMPANY":        "Acme Corp",
		"EFFECTIVE_DATE": "1/2/2024",
	}, got)
}

func TestRecordSkipsMissingRawFields(t *testing.T) {
	t.Parallel()

	row := warn.Row{"Company Name": "Acme Corp"}
	mapping := map[string]string{
		"Company Name": "COMPANY",
		"Layoff Date":  "EFFECTIVE_DATE",
	}

	got := Record(row, mapping)
	assert.Equal(t, "Acme Corp", got["COMPANY"])

	// Missing raw fields must be absent, not null placeholders.
	_, present := got["EFFECTIVE_DATE"]
	assert.False(t, present)
}

func TestRecordKeysSubsetOfVocabulary(t *testing.T) {
	t.Parallel()

	src := warn.SourceConfig{Fields: map[string]string{
		"Company":  "COMPANY",
		"Date":     "NOTICE_DATE",
		"Affected": "NUM_EMPLOYEES",
	}}
	row := warn.Row{"Company": "A", "Date": "B", "Affected": "C", "Stray": "D"}

	got := Record(row, src.Fields)
	vocab := src.CanonicalVocabulary()
	for key := range got {
		assert.True(t, vocab[key], "key %q outside canonical vocabulary", key)
	}
}

func TestRecordEmptyMapping(t *testing.T) {
	t.Parallel()

	got := Record(warn.Row{"a": "b"}, nil)
	assert.Empty(t, got)
}
