package records

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	lineBreaks  = regexp.MustCompile(`[\r\n]+`)
	fieldSplit  = regexp.MustCompile(`[\s\v\x{85}\p{Z}\x{FEFF}-]+`)
	unitSuffix  = regexp.MustCompile(`(?i)gb$`)
	numPrefix   = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)
	identifierR = regexp.MustCompile(`^0[0-9]{9}$`)
)

// Token is a tokenized input line.
type Token struct {
	Identifier   string
	AllocationGB float64
}

// NormalizeLines splits text on any CR/LF run, trims each line and drops empty ones.
// Order is preserved.
func NormalizeLines(text string) []string {
	parts := lineBreaks.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SplitFields splits a line on runs of whitespace and/or hyphens. Whitespace
// includes the Unicode space separators (NBSP, em space, ...), vertical tab and
// the zero-width no-break space. The split is literal: a leading delimiter
// yields an empty first field.
func SplitFields(line string) []string {
	return fieldSplit.Split(line, -1)
}

// Tokenize extracts the identifier and allocation from a normalized line.
// Periods act as field separators. ok is false when the line has fewer than two
// fields or the allocation has no finite numeric prefix.
func Tokenize(line string) (Token, bool) {
	fields := SplitFields(strings.ReplaceAll(line, ".", " "))
	if len(fields) < 2 {
		return Token{}, false
	}
	alloc := strings.TrimSpace(unitSuffix.ReplaceAllString(fields[1], ""))
	gb, ok := ParseLeadingFloat(alloc)
	if !ok {
		return Token{}, false
	}
	return Token{Identifier: fields[0], AllocationGB: gb}, true
}

// ParseLeadingFloat parses the longest numeric prefix of s, ignoring trailing
// garbage ("15.5xyz" -> 15.5). Non-finite results are rejected.
func ParseLeadingFloat(s string) (float64, bool) {
	m := numPrefix.FindString(strings.TrimLeft(s, " \t"))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// IsValid reports whether id is a leading 0 followed by exactly nine digits.
func IsValid(id string) bool {
	return identifierR.MatchString(id)
}

// Parse runs the full pipeline: normalize, tokenize, validate and flag duplicates.
func Parse(text string) *Set {
	return FromTokens(TokenizeAll(NormalizeLines(text)))
}

// TokenizeAll tokenizes lines, silently dropping the ones that do not parse.
func TokenizeAll(lines []string) []Token {
	toks := make([]Token, 0, len(lines))
	for _, l := range lines {
		if t, ok := Tokenize(l); ok {
			toks = append(toks, t)
		}
	}
	return toks
}

// FromTokens builds the record set from already tokenized lines.
func FromTokens(toks []Token) *Set {
	ids := make([]string, len(toks))
	for i, t := range toks {
		ids[i] = t.Identifier
	}
	dups := DetectDuplicates(ids)
	set := &Set{Records: make([]Record, 0, len(toks)), Duplicates: dups.Values()}
	for _, t := range toks {
		set.Records = append(set.Records, Record{
			Identifier:   t.Identifier,
			AllocationGB: t.AllocationGB,
			Valid:        IsValid(t.Identifier),
			Duplicate:    dups.Has(t.Identifier),
		})
	}
	return set
}

// Classify rebuilds the derived flags for records supplied from outside the
// text pipeline (e.g. a JSON request body). Input order is kept.
func Classify(in []Record) *Set {
	toks := make([]Token, len(in))
	for i, r := range in {
		toks[i] = Token{Identifier: strings.TrimSpace(r.Identifier), AllocationGB: r.AllocationGB}
	}
	return FromTokens(toks)
}
