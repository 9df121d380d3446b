package aggregate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Markdown renders buckets as a compact report block.
func Markdown(name string, buckets []Bucket) string {
	var b strings.Builder
	b.WriteString("[ALLOCATION BUCKETS]\n")
	if name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", name))
	}
	total := Total(buckets)
	b.WriteString(fmt.Sprintf("Lines: %d\nBuckets: %d\n\n", total, len(buckets)))
	if len(buckets) == 0 {
		return b.String()
	}
	b.WriteString("| Allocation | Count | Share |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, bk := range buckets {
		share := float64(bk.Count) * 100.0 / float64(total)
		b.WriteString(fmt.Sprintf("| %s | %d | %.1f%% |\n", bk.Label, bk.Count, share))
	}
	return b.String()
}

// Table writes an aligned two-column table.
func Table(w io.Writer, buckets []Bucket) error {
	headers := [2]string{"Allocation", "Count"}
	widths := [2]int{runewidth.StringWidth(headers[0]), runewidth.StringWidth(headers[1])}
	rows := make([][2]string, len(buckets))
	for i, bk := range buckets {
		rows[i] = [2]string{bk.Label, fmt.Sprintf("%d", bk.Count)}
		for c := range rows[i] {
			if n := runewidth.StringWidth(rows[i][c]); n > widths[c] {
				widths[c] = n
			}
		}
	}
	line := func(cells [2]string) error {
		_, err := fmt.Fprintf(w, "%s  %s\n",
			runewidth.FillRight(cells[0], widths[0]),
			runewidth.FillLeft(cells[1], widths[1]))
		return err
	}
	if err := line(headers); err != nil {
		return err
	}
	if err := line([2]string{strings.Repeat("-", widths[0]), strings.Repeat("-", widths[1])}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := line(r); err != nil {
			return err
		}
	}
	return line([2]string{"Total", fmt.Sprintf("%d", Total(buckets))})
}

// JSON writes buckets and their chart feed as indented JSON.
func JSON(w io.Writer, buckets []Bucket) error {
	if buckets == nil {
		buckets = []Bucket{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Buckets []Bucket  `json:"buckets"`
		Chart   ChartFeed `json:"chart"`
	}{buckets, Chart(buckets)})
}
