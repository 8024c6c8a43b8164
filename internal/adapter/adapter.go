// Package adapter holds bespoke extractors for sources whose archives are
// not plain tables. Each adapter is an independent, replaceable
// implementation of the Extractor contract; there is deliberately no shared
// abstraction beyond that, since every layout quirk is specific to one
// state's website.
package adapter

import (
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Factory builds an adapter extractor for a source.
type Factory func(opts warn.ExtractOptions, logger *zap.Logger) warn.Extractor

var registry = map[string]Factory{
	"one_row_tables": func(opts warn.ExtractOptions, logger *zap.Logger) warn.Extractor {
		return NewOneRowTables(opts, logger)
	},
	"pipe_paragraphs": func(opts warn.ExtractOptions, logger *zap.Logger) warn.Extractor {
		return NewPipeParagraphs(opts, logger)
	},
	"transposed_pdf": func(opts warn.ExtractOptions, logger *zap.Logger) warn.Extractor {
		return NewTransposedPDF(opts, nil, logger)
	},
	"date_company_paragraphs": func(opts warn.ExtractOptions, logger *zap.Logger) warn.Extractor {
		return NewDateCompanyParagraphs(opts, logger)
	},
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names lists the registered adapter names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
