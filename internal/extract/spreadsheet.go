package extract

import (
	"bytes"
	"context"
	"strconv"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Spreadsheet extracts tabular data from xlsx workbooks.
//
// All worksheets are parsed unless a subset is configured. SkipHeader
// leading rows are excluded, with column names taken from the last excluded
// row (the first row when SkipHeader is zero); DropFooter trailing rows are
// excluded. Hyperlink targets can be pulled out of configured columns as
// synthetic "<column> Link" fields.
type Spreadsheet struct {
	opts   warn.ExtractOptions
	logger *zap.Logger
}

// NewSpreadsheet builds a spreadsheet extractor.
func NewSpreadsheet(opts warn.ExtractOptions, logger *zap.Logger) *Spreadsheet {
	return &Spreadsheet{opts: opts, logger: logger}
}

// Extract implements warn.Extractor.
func (e *Spreadsheet) Extract(_ context.Context, doc []byte) (warn.RawTable, error) {
	book, err := excelize.OpenReader(bytes.NewReader(doc))
	if err != nil {
		e.logger.Error("open workbook", zap.Error(err))
		return warn.RawTable{}, nil
	}
	defer func() {
		if cerr := book.Close(); cerr != nil {
			e.logger.Warn("close workbook", zap.Error(cerr))
		}
	}()

	sheets := e.opts.Sheets
	if len(sheets) == 0 {
		sheets = book.GetSheetList()
	}

	var out warn.RawTable
	for _, sheet := range sheets {
		e.extractSheet(book, sheet, &out)
	}
	if out.Len() == 0 {
		e.logger.Error("no data rows found in workbook")
	}
	return out, nil
}

func (e *Spreadsheet) extractSheet(book *excelize.File, sheet string, out *warn.RawTable) {
	rows, err := book.GetRows(sheet)
	if err != nil {
		e.logger.Error("read worksheet", zap.String("sheet", sheet), zap.Error(err))
		return
	}

	headerIdx := 0
	if e.opts.SkipHeader > 0 {
		headerIdx = e.opts.SkipHeader - 1
	}
	if headerIdx >= len(rows) {
		e.logger.Error("worksheet has no header row", zap.String("sheet", sheet))
		return
	}

	headers := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		headers[i] = CollapseWhitespace(h)
	}

	data := rows[headerIdx+1:]
	if e.opts.DropFooter > 0 {
		if e.opts.DropFooter >= len(data) {
			return
		}
		data = data[:len(data)-e.opts.DropFooter]
	}

	for i, cells := range data {
		row := zipRow(headers, cells)
		for _, col := range e.opts.LinkColumns {
			e.attachHyperlink(book, sheet, headerIdx, headers, col, i, row)
		}
		if len(row) == 0 {
			continue
		}
		out.Append(row)
	}
}

// attachHyperlink records the hyperlink target of a cell as a synthetic
// "<column> Link" field on the row.
func (e *Spreadsheet) attachHyperlink(
	book *excelize.File,
	sheet string,
	headerIdx int,
	headers []string,
	col int,
	rowIdx int,
	row warn.Row,
) {
	name := strconv.Itoa(col)
	if col < len(headers) && headers[col] != "" {
		name = headers[col]
	}
	name += " Link"

	cell, err := excelize.CoordinatesToCellName(col+1, headerIdx+rowIdx+2)
	if err != nil {
		e.logger.Warn("bad link column coordinates", zap.Int("column", col), zap.Error(err))
		return
	}
	ok, target, err := book.GetCellHyperLink(sheet, cell)
	if err != nil || !ok {
		e.logger.Warn("expected a hyperlink in cell but found none",
			zap.String("sheet", sheet), zap.String("cell", cell))
		row[name] = ""
		return
	}
	row[name] = target
}
