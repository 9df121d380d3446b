package aggregate_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/bundlesheet-cli/internal/aggregate"
)

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"0201234567 10GB":      "10 GB",
		"0201234567-5gb":       "5 GB",
		"0201234567 2.5GB":     "25 GB",
		"0201234567 lots":      "Unknown",
		"0201234567":           "Unknown",
		"bad_id 3 trailing 9":  "3 GB",
		"bad-id 3 trailing 9":  "Unknown",
		"0201234567\u00a020GB": "20 GB",
	}
	for in, want := range cases {
		assert.Equal(t, want, aggregate.Label(in), in)
	}
}

func TestTallyFirstSeenOrder(t *testing.T) {
	text := "a 20GB\nb 10GB\n\nc 20GB\nd none\ne 10\nf 5GB\ng x"
	got := aggregate.TallyText(text)
	want := []aggregate.Bucket{
		{Label: "20 GB", Count: 2},
		{Label: "10 GB", Count: 2},
		{Label: "Unknown", Count: 2},
		{Label: "5 GB", Count: 1},
	}
	require.Equal(t, want, got)
	assert.Equal(t, 7, aggregate.Total(got))

	// recomputation yields identical output
	assert.Equal(t, got, aggregate.TallyText(text))
}

func TestTallyIgnoresValidation(t *testing.T) {
	got := aggregate.TallyText("0201234567 1GB\n0201234567 1GB\nnot-a-number 1GB")
	require.Len(t, got, 2)
	assert.Equal(t, aggregate.Bucket{Label: "1 GB", Count: 2}, got[0])
	// "not-a-number 1GB" splits on hyphens, so the second field is "a"
	assert.Equal(t, aggregate.Bucket{Label: "Unknown", Count: 1}, got[1])
}

func TestChart(t *testing.T) {
	feed := aggregate.Chart([]aggregate.Bucket{{Label: "1 GB", Count: 3}, {Label: "Unknown", Count: 1}})
	assert.Equal(t, []string{"1 GB", "Unknown"}, feed.Labels)
	assert.Equal(t, []int{3, 1}, feed.Counts)
}

func TestRenderers(t *testing.T) {
	buckets := aggregate.TallyText("a 1GB\nb 1GB\nc 2GB\nd 1GB")

	md := aggregate.Markdown("input.txt", buckets)
	assert.Contains(t, md, "[ALLOCATION BUCKETS]")
	assert.Contains(t, md, "Source: input.txt")
	assert.Contains(t, md, "| 1 GB | 3 | 75.0% |")

	var tbl bytes.Buffer
	require.NoError(t, aggregate.Table(&tbl, buckets))
	lines := strings.Split(strings.TrimRight(tbl.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "Allocation"))
	assert.Contains(t, lines[4], "Total")
	assert.True(t, strings.HasSuffix(lines[4], "4"))

	var js bytes.Buffer
	require.NoError(t, aggregate.JSON(&js, buckets))
	var decoded struct {
		Buckets []aggregate.Bucket  `json:"buckets"`
		Chart   aggregate.ChartFeed `json:"chart"`
	}
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, buckets, decoded.Buckets)
	assert.Equal(t, []int{3, 1}, decoded.Chart.Counts)
}
