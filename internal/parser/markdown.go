package parser

import (
	"strings"
)

type markdownParser struct{}

func (markdownParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown")
}

// Parse strips bullet markers and code fences so list-style inputs
// ("- 0201234567 10GB") reach the pipeline as plain lines. A bullet left in
// place would otherwise become an empty identifier field.
func (markdownParser) Parse(content []byte) (string, error) {
	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		for _, marker := range []string{"- ", "* ", "+ "} {
			if strings.HasPrefix(trimmed, marker) {
				trimmed = strings.TrimSpace(trimmed[len(marker):])
				break
			}
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n"), nil
}
