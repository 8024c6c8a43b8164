// Package warn defines core types shared across subsystems.
package warn

import (
	"time"
)

// Format identifies the declared layout of a source document.
type Format string

// Formats understood by the extraction layer.
const (
	FormatHTML        Format = "html"
	FormatPDF         Format = "pdf"
	FormatSpreadsheet Format = "spreadsheet"
	FormatCSV         Format = "csv"
	// FormatGoogleSheets is an alias of FormatCSV: sheets are exported
	// as CSV before parsing.
	FormatGoogleSheets Format = "google_sheets"
)

// Canonical resolves aliases to the format the extractor dispatch knows.
func (f Format) Canonical() Format {
	if f == FormatGoogleSheets {
		return FormatCSV
	}
	return f
}

// Valid reports whether the format is a member of the closed set.
func (f Format) Valid() bool {
	switch f.Canonical() {
	case FormatHTML, FormatPDF, FormatSpreadsheet, FormatCSV:
		return true
	}
	return false
}

// Row maps raw column names to cell values. The column set may vary
// row to row within the same table.
type Row map[string]string

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Empty reports whether every cell in the row is blank.
func (r Row) Empty() bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}

// RawTable is the intermediate rectangular representation between a
// source document and normalized records.
type RawTable struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Append adds a row to the table, registering any new column names.
func (t *RawTable) Append(row Row) {
	seen := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		seen[h] = true
	}
	for k := range row {
		if !seen[k] {
			t.Headers = append(t.Headers, k)
		}
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows.
func (t RawTable) Len() int { return len(t.Rows) }

// ExtractOptions carries per-source knobs consumed by the extractors.
// Zero values mean "use the format's defaults".
type ExtractOptions struct {
	// HTML
	Tag          string `yaml:"tag"`
	TableClass   string `yaml:"table_class"`
	LinkColumn   int    `yaml:"link_column"`
	ExtractLinks bool   `yaml:"extract_links"`
	BaseURL      string `yaml:"base_url"`
	DropFirstRow bool   `yaml:"drop_first_row"`

	// PDF
	ColumnNames     []string `yaml:"column_names"`
	HeaderRow       int      `yaml:"header_row"`
	FirstPageHeader int      `yaml:"first_page_header"`
	HeaderDelimiter string   `yaml:"header_delimiter"`
	HeaderAllPages  bool     `yaml:"header_all_pages"`
	Lenient         bool     `yaml:"lenient"`

	// Spreadsheet
	SkipHeader  int      `yaml:"skip_header"`
	DropFooter  int      `yaml:"drop_footer"`
	Sheets      []string `yaml:"sheets"`
	LinkColumns []int    `yaml:"link_columns"`

	// Delimited text
	Delimiter string `yaml:"delimiter"`

	// State labels extractor metric observations. Set by the pipeline,
	// never from the registry.
	State string `yaml:"-"`
}

// SourceConfig describes one state's WARN archive. Immutable once loaded.
type SourceConfig struct {
	StateName   string            `yaml:"state"`
	StateAbbrev string            `yaml:"abbreviation"`
	URL         string            `yaml:"archive_url"`
	Format      Format            `yaml:"format"`
	JobLink     bool              `yaml:"joblink"`
	Dynamic     bool              `yaml:"dynamic"`
	Adapter     string            `yaml:"adapter"`
	Fields      map[string]string `yaml:"fields"` // raw name -> canonical name
	Extract     ExtractOptions    `yaml:"extract"`
}

// CanonicalVocabulary returns the set of canonical names declared by the
// source's field mapping.
func (s SourceConfig) CanonicalVocabulary() map[string]bool {
	vocab := make(map[string]bool, len(s.Fields))
	for _, canonical := range s.Fields {
		vocab[canonical] = true
	}
	return vocab
}

// Entry is the output record for a single WARN notice row. Created once
// at extraction time and immutable thereafter.
type Entry struct {
	ID               string            `json:"id"`
	StateName        string            `json:"state_name"`
	StateAbbrev      string            `json:"state_abbrev"`
	Timestamp        time.Time         `json:"timestamp"`
	URL              string            `json:"url"`
	ContentHash      string            `json:"content_hash,omitempty"`
	Fields           Row               `json:"fields"`
	NormalizedFields map[string]string `json:"normalized_fields"`
}

// RunEvent is published after a source finishes processing.
type RunEvent struct {
	StateAbbrev string    `json:"state_abbrev"`
	URL         string    `json:"url"`
	Entries     int       `json:"entries"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Error       string    `json:"error,omitempty"`
}

// QueueItem wraps one source ready to be scraped.
type QueueItem struct {
	Source    SourceConfig
	Attempt   int
	Submitted int64
}
