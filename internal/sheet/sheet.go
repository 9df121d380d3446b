// Package sheet renders record sets into bulk-upload workbooks.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/bundlesheet-cli/internal/records"
)

// Headers is the fixed header row of the upload template.
var Headers = []string{
	"Beneficiary Msisdn",
	"Beneficiary Name",
	"Voice(Minutes)",
	"Data (MB) (1024MB = 1GB)",
	"Sms(Unit)",
}

// ErrNoRecords is returned when asked to render an empty record set.
var ErrNoRecords = errors.New("no records to export")

// Highlight scopes.
const (
	ScopeCell = "cell"
	ScopeRow  = "row"
)

// Options controls workbook layout and styling.
type Options struct {
	SheetName      string
	AlertColor     string // RGB hex, no '#'
	WarningColor   string
	HighlightScope string // cell|row
	MinColumnWidth int
	ColumnPadding  int
	// TotalsOffset is the distance in rows between the last data row and the totals row.
	TotalsOffset int
}

// DefaultOptions returns the standard upload template layout.
func DefaultOptions() Options {
	return Options{
		SheetName:      "Sheet1",
		AlertColor:     "FF0000",
		WarningColor:   "FFFF00",
		HighlightScope: ScopeCell,
		MinColumnWidth: 10,
		ColumnPadding:  2,
		TotalsOffset:   5,
	}
}

// Layout describes where things landed in a rendered sheet (1-based rows).
// Widths are capped at excelize.MaxColumnWidth.
type Layout struct {
	FirstDataRow int
	LastDataRow  int
	TotalsRow    int
	SumCell      string
	GBCell       string
	Widths       []float64
}

// Writer builds workbooks for a fixed set of options.
type Writer struct {
	opt Options
}

// NewWriter fills zero-valued options from DefaultOptions.
func NewWriter(opt Options) *Writer {
	def := DefaultOptions()
	if opt.SheetName == "" {
		opt.SheetName = def.SheetName
	}
	if opt.AlertColor == "" {
		opt.AlertColor = def.AlertColor
	}
	if opt.WarningColor == "" {
		opt.WarningColor = def.WarningColor
	}
	if opt.HighlightScope == "" {
		opt.HighlightScope = def.HighlightScope
	}
	if opt.MinColumnWidth <= 0 {
		opt.MinColumnWidth = def.MinColumnWidth
	}
	if opt.ColumnPadding < 0 {
		opt.ColumnPadding = def.ColumnPadding
	}
	if opt.TotalsOffset <= 0 {
		opt.TotalsOffset = def.TotalsOffset
	}
	return &Writer{opt: opt}
}

// Options returns the effective options.
func (w *Writer) Options() Options { return w.opt }

// Render builds the workbook and returns its bytes. The context is only
// consulted before assembly starts; once started, assembly runs to completion.
func (w *Writer) Render(ctx context.Context, recs []records.Record) ([]byte, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, _, err := w.Build(recs)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Build assembles the workbook in memory. The caller owns the returned file.
func (w *Writer) Build(recs []records.Record) (*excelize.File, *Layout, error) {
	if len(recs) == 0 {
		return nil, nil, ErrNoRecords
	}
	f := excelize.NewFile()
	lay, err := w.fill(f, recs)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return f, lay, nil
}

func (w *Writer) fill(f *excelize.File, recs []records.Record) (*Layout, error) {
	sh := w.opt.SheetName
	if def := f.GetSheetName(0); def != sh {
		if err := f.SetSheetName(def, sh); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}
	st, err := newStyles(f, w.opt)
	if err != nil {
		return nil, err
	}

	widths := make([]int, len(Headers))
	measure := func(col int, text string) {
		if text == "" {
			return
		}
		if n := utf8.RuneCountInString(text); n > widths[col] {
			widths[col] = n
		}
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
		measure(i, h)
	}
	if err := f.SetSheetRow(sh, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(Headers))
	for i, r := range recs {
		row := i + 2
		mb := r.AllocationMB()
		values := []interface{}{r.Identifier, "", 0, mb, 0}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sh, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		measure(0, r.Identifier)
		measure(2, "0")
		measure(3, formatNumber(mb))
		measure(4, "0")

		style, ok := st.forRecord(r)
		if !ok {
			continue
		}
		end := cell
		if w.opt.HighlightScope == ScopeRow {
			end = lastCol + strconv.Itoa(row)
		}
		if err := f.SetCellStyle(sh, cell, end, style); err != nil {
			return nil, fmt.Errorf("style row %d: %w", row, err)
		}
	}

	lay := &Layout{FirstDataRow: 2, LastDataRow: len(recs) + 1}
	lay.TotalsRow = lay.LastDataRow + w.opt.TotalsOffset
	lay.SumCell = "D" + strconv.Itoa(lay.TotalsRow)
	lay.GBCell = "E" + strconv.Itoa(lay.TotalsRow)
	sum := fmt.Sprintf("SUM(D%d:D%d)", lay.FirstDataRow, lay.LastDataRow)
	if err := f.SetCellFormula(sh, lay.SumCell, sum); err != nil {
		return nil, fmt.Errorf("write total formula: %w", err)
	}
	if err := f.SetCellFormula(sh, lay.GBCell, fmt.Sprintf("%s/%d", lay.SumCell, records.MBPerGB)); err != nil {
		return nil, fmt.Errorf("write GB formula: %w", err)
	}
	if err := f.SetCellStyle(sh, lay.SumCell, lay.GBCell, st.bold); err != nil {
		return nil, fmt.Errorf("style totals: %w", err)
	}

	for i, n := range widths {
		width := n
		if width < w.opt.MinColumnWidth {
			width = w.opt.MinColumnWidth
		}
		width += w.opt.ColumnPadding
		if width > excelize.MaxColumnWidth {
			width = excelize.MaxColumnWidth
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sh, col, col, float64(width)); err != nil {
			return nil, fmt.Errorf("set width %s: %w", col, err)
		}
		lay.Widths = append(lay.Widths, float64(width))
	}
	return lay, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
