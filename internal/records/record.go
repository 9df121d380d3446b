package records

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MBPerGB is the fixed multiplier used when converting allocations for export.
const MBPerGB = 1024

// Record is one parsed (identifier, allocation) pair.
type Record struct {
	Identifier   string  `json:"identifier"`
	AllocationGB float64 `json:"allocation_gb"`
	Valid        bool    `json:"valid"`
	Duplicate    bool    `json:"duplicate"`
}

// AllocationMB returns the allocation converted to megabytes (exact product).
func (r Record) AllocationMB() float64 {
	return r.AllocationGB * MBPerGB
}

// ErrBadAllocation reports a supplied allocation outside the data model
// (negative or not a finite number).
var ErrBadAllocation = errors.New("allocation must be a finite, non-negative number of GB")

// CheckAllocations validates records supplied from outside the text pipeline.
// Tokenized input never needs it: the tokenizer only yields finite values.
func CheckAllocations(in []Record) error {
	for i, r := range in {
		if r.AllocationGB < 0 || math.IsNaN(r.AllocationGB) || math.IsInf(r.AllocationGB, 0) {
			return fmt.Errorf("record %d (%q): %w", i+1, r.Identifier, ErrBadAllocation)
		}
	}
	return nil
}

// Set is the ordered result of one pipeline run.
type Set struct {
	Records []Record `json:"records"`
	// Duplicates lists every repeated identifier once, in the order the repeat was first seen.
	Duplicates []string `json:"duplicates,omitempty"`
}

// Stats summarizes a record set.
type Stats struct {
	Total     int     `json:"total"`
	Valid     int     `json:"valid"`
	Invalid   int     `json:"invalid"`
	Duplicate int     `json:"duplicate"`
	TotalGB   float64 `json:"total_gb"`
	TotalMB   float64 `json:"total_mb"`
}

// Len returns the number of records; safe on a nil set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Stats counts records by classification. Duplicate counts every flagged
// occurrence, not distinct identifiers.
func (s *Set) Stats() Stats {
	var st Stats
	if s == nil {
		return st
	}
	for _, r := range s.Records {
		st.Total++
		if r.Valid {
			st.Valid++
		} else {
			st.Invalid++
		}
		if r.Duplicate {
			st.Duplicate++
		}
		st.TotalGB += r.AllocationGB
	}
	st.TotalMB = st.TotalGB * MBPerGB
	return st
}

// Advisory returns the pre-export duplicate notice, or "" when there is nothing to report.
func (s *Set) Advisory() string {
	if s == nil || len(s.Duplicates) == 0 {
		return ""
	}
	noun := "identifiers"
	if len(s.Duplicates) == 1 {
		noun = "identifier"
	}
	return fmt.Sprintf("Duplicate %s found (every occurrence is highlighted): %s",
		noun, strings.Join(s.Duplicates, ", "))
}
