package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/bundlesheet-cli/internal/records"
)

type styles struct {
	alert   int
	warning int
	bold    int
}

func newStyles(f *excelize.File, opt Options) (*styles, error) {
	alert, err := f.NewStyle(highlight(opt.AlertColor))
	if err != nil {
		return nil, fmt.Errorf("alert style: %w", err)
	}
	warning, err := f.NewStyle(highlight(opt.WarningColor))
	if err != nil {
		return nil, fmt.Errorf("warning style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("bold style: %w", err)
	}
	return &styles{alert: alert, warning: warning, bold: bold}, nil
}

func highlight(color string) *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		Font: &excelize.Font{Bold: true, Color: "000000"},
	}
}

// forRecord picks the highlight for a record. Invalid wins over duplicate.
func (s *styles) forRecord(r records.Record) (int, bool) {
	switch {
	case !r.Valid:
		return s.alert, true
	case r.Duplicate:
		return s.warning, true
	default:
		return 0, false
	}
}
