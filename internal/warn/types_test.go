package warn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCanonical(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatCSV, FormatGoogleSheets.Canonical())
	assert.Equal(t, FormatHTML, FormatHTML.Canonical())
	assert.True(t, FormatGoogleSheets.Valid())
	assert.False(t, Format("dbf").Valid())
}

func TestRawTableAppendRegistersNewHeaders(t *testing.T) {
	t.Parallel()

	var table RawTable
	table.Append(Row{"Company": "Acme", "Date": "1/2/2024"})
	table.Append(Row{"Company": "Widgets Inc", "Notice Link": "https://example.com/n/2"})

	assert.Equal(t, 2, table.Len())
	assert.ElementsMatch(t, []string{"Company", "Date", "Notice Link"}, table.Headers)
}

func TestRowEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, Row{"a": "", "b": ""}.Empty())
	assert.False(t, Row{"a": "", "b": "x"}.Empty())
}

func TestSourceConfigCanonicalVocabulary(t *testing.T) {
	t.Parallel()

	src := SourceConfig{
		Fields: map[string]string{
			"Company Name":   "COMPANY",
			"Effective Date": "EFFECTIVE_DATE",
		},
	}
	vocab := src.CanonicalVocabulary()
	assert.True(t, vocab["COMPANY"])
	assert.True(t, vocab["EFFECTIVE_DATE"])
	assert.Len(t, vocab, 2)
}

func TestStateLookupRoundTrip(t *testing.T) {
	t.Parallel()

	lookup := NewStateLookup()

	abbrev, ok := lookup.Abbrev("New Jersey")
	require.True(t, ok)
	assert.Equal(t, "NJ", abbrev)

	name, ok := lookup.Name("nj")
	require.True(t, ok)
	assert.Equal(t, "New Jersey", name)

	_, ok = lookup.Abbrev("Atlantis")
	assert.False(t, ok)
}
