package aggregate

import (
	"strings"

	"github.com/KaramelBytes/bundlesheet-cli/internal/records"
)

// UnknownLabel is used when an allocation token carries no digits.
const UnknownLabel = "Unknown"

// Bucket counts how many lines share an allocation label.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ChartFeed is the column-oriented form consumed by chart widgets.
type ChartFeed struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// Tally buckets normalized lines by the digits of their second field.
// No validation or duplicate detection happens here; it is a pure count.
// Buckets are returned in first-seen label order.
func Tally(lines []string) []Bucket {
	index := make(map[string]int)
	var out []Bucket
	for _, line := range lines {
		label := Label(line)
		if i, ok := index[label]; ok {
			out[i].Count++
			continue
		}
		index[label] = len(out)
		out = append(out, Bucket{Label: label, Count: 1})
	}
	return out
}

// TallyText normalizes text and tallies it.
func TallyText(text string) []Bucket {
	return Tally(records.NormalizeLines(text))
}

// Label derives the bucket label for one line: every non-digit of the second
// field is removed ("2.5GB" -> "25 GB").
func Label(line string) string {
	fields := records.SplitFields(line)
	if len(fields) < 2 {
		return UnknownLabel
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, fields[1])
	if digits == "" {
		return UnknownLabel
	}
	return digits + " GB"
}

// Chart converts buckets to a chart feed, keeping order.
func Chart(buckets []Bucket) ChartFeed {
	feed := ChartFeed{Labels: make([]string, len(buckets)), Counts: make([]int, len(buckets))}
	for i, b := range buckets {
		feed.Labels[i] = b.Label
		feed.Counts[i] = b.Count
	}
	return feed
}

// Total sums the counts.
func Total(buckets []Bucket) int {
	n := 0
	for _, b := range buckets {
		n += b.Count
	}
	return n
}
