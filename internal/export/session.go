// Package export owns the single-use export pipeline: input buffer, record set,
// workbook rendering and delivery.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/bundlesheet-cli/internal/logging"
	"github.com/KaramelBytes/bundlesheet-cli/internal/records"
	"github.com/KaramelBytes/bundlesheet-cli/internal/sheet"
)

// ErrEmptyExport is returned when an export is requested without any records.
var ErrEmptyExport = errors.New("nothing to export: no valid lines in input")

// Error reports a failed export step. The session keeps its state so the
// caller can retry.
type Error struct {
	Op  string // render|deliver
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("export %s failed: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Summary is reported to the caller after a successful export.
type Summary struct {
	ID         string   `json:"id"`
	FileName   string   `json:"file_name"`
	Total      int      `json:"total"`
	Valid      int      `json:"valid"`
	Duplicate  int      `json:"duplicate"`
	Invalid    int      `json:"invalid"`
	TotalGB    float64  `json:"total_gb"`
	TotalMB    float64  `json:"total_mb"`
	Duplicates []string `json:"duplicates,omitempty"`
	Bytes      int      `json:"bytes"`
}

// Observer is notified about export outcomes. result is "ok", "empty" or "error".
type Observer interface {
	ObserveParse(records int)
	ObserveExport(result string, d time.Duration)
}

// Options configures a Session.
type Options struct {
	FileName string
	Sheet    sheet.Options
	Logger   *slog.Logger
	Observer Observer
}

// Session holds the current input text and its record set. Every input change
// rebuilds the record set from scratch.
type Session struct {
	mu     sync.Mutex
	input  string
	set    *records.Set
	writer *sheet.Writer
	name   string
	log    *slog.Logger
	obs    Observer
}

// NewSession creates an empty session.
func NewSession(opt Options) *Session {
	log := opt.Logger
	if log == nil {
		log = logging.Discard()
	}
	name := opt.FileName
	if name == "" {
		name = "Bulk_Data_Upload_Template.xlsx"
	}
	return &Session{
		set:    &records.Set{},
		writer: sheet.NewWriter(opt.Sheet),
		name:   name,
		log:    log.With(slog.String("component", "export")),
		obs:    opt.Observer,
	}
}

// SetInput replaces the input buffer and recomputes the record set.
func (s *Session) SetInput(text string) *records.Set {
	set := records.Parse(text)
	s.mu.Lock()
	s.input = text
	s.set = set
	s.mu.Unlock()
	if s.obs != nil {
		s.obs.ObserveParse(set.Len())
	}
	s.log.Debug("input parsed", slog.Int("records", set.Len()), slog.Int("duplicates", len(set.Duplicates)))
	return set
}

// SetRecords replaces the record set with externally supplied records; the
// derived flags are recomputed.
func (s *Session) SetRecords(in []records.Record) *records.Set {
	set := records.Classify(in)
	s.mu.Lock()
	s.input = ""
	s.set = set
	s.mu.Unlock()
	if s.obs != nil {
		s.obs.ObserveParse(set.Len())
	}
	return set
}

// Input returns the current input buffer.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Records returns the current record set.
func (s *Session) Records() *records.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// Advisory returns the duplicate notice for the current record set.
func (s *Session) Advisory() string {
	return s.Records().Advisory()
}

// FileName returns the deterministic name used for delivered workbooks.
func (s *Session) FileName() string { return s.name }

// Export renders the current record set and hands it to d. On success the
// input buffer and record set are cleared; on failure both are kept.
func (s *Session) Export(ctx context.Context, d Deliverer) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if s.set.Len() == 0 {
		s.observe("empty", start)
		return nil, ErrEmptyExport
	}
	log := s.log.With(slog.Int("records", s.set.Len()))

	data, err := s.writer.Render(ctx, s.set.Records)
	if err != nil {
		s.observe("error", start)
		log.Error("workbook render failed", slog.String("error", err.Error()))
		return nil, &Error{Op: "render", Err: err}
	}
	if err := d.Deliver(ctx, s.name, data); err != nil {
		s.observe("error", start)
		log.Error("workbook delivery failed", slog.String("error", err.Error()))
		return nil, &Error{Op: "deliver", Err: err}
	}

	st := s.set.Stats()
	sum := &Summary{
		ID:         uuid.NewString(),
		FileName:   s.name,
		Total:      st.Total,
		Valid:      st.Valid,
		Duplicate:  st.Duplicate,
		Invalid:    st.Invalid,
		TotalGB:    st.TotalGB,
		TotalMB:    st.TotalMB,
		Duplicates: s.set.Duplicates,
		Bytes:      len(data),
	}
	s.input = ""
	s.set = &records.Set{}
	s.observe("ok", start)
	log.Info("workbook exported", slog.String("export_id", sum.ID), slog.String("file", sum.FileName),
		slog.Int("bytes", sum.Bytes))
	return sum, nil
}

func (s *Session) observe(result string, start time.Time) {
	if s.obs != nil {
		s.obs.ObserveExport(result, time.Since(start))
	}
}
