// Package server exposes the record pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/KaramelBytes/bundlesheet-cli/internal/aggregate"
	"github.com/KaramelBytes/bundlesheet-cli/internal/export"
	"github.com/KaramelBytes/bundlesheet-cli/internal/logging"
	"github.com/KaramelBytes/bundlesheet-cli/internal/metrics"
	"github.com/KaramelBytes/bundlesheet-cli/internal/parser"
	"github.com/KaramelBytes/bundlesheet-cli/internal/records"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Config wires the server.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	Export         export.Options
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
}

// Server handles one independent pipeline run per request.
type Server struct {
	cfg Config
	log *slog.Logger
	mux *chi.Mux
}

// New builds the router.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 << 20
	}
	cfg.Export.Logger = cfg.Logger
	cfg.Export.Observer = cfg.Metrics

	s := &Server{cfg: cfg, log: cfg.Logger.With(slog.String("component", "server"))}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(cfg.MaxUploadBytes))
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Post("/records", s.handleRecords)
		r.Post("/buckets", s.handleBuckets)
		r.Post("/export", s.handleExport)
	})
	s.mux = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.InfoContext(r.Context(), "request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)))
	})
}

// exportRequest is the JSON form of an export: either raw text or explicit records.
type exportRequest struct {
	Text    string           `json:"text"`
	Records []records.Record `json:"records"`
}

// readInput returns the request body as pipeline text, or explicit records when
// a JSON body carries them.
func readInput(r *http.Request) (string, []records.Record, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "application/json" {
		return parser.TrimBOM(string(body)), nil, nil
	}
	var req exportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", nil, fmt.Errorf("decode json: %w", err)
	}
	if err := records.CheckAllocations(req.Records); err != nil {
		return "", nil, err
	}
	return parser.TrimBOM(req.Text), req.Records, nil
}

func (s *Server) inputError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		_ = render.Render(w, r, errTooLarge())
		return
	}
	_ = render.Render(w, r, errInvalidRequest(err))
}

type recordsResponse struct {
	Records    []records.Record `json:"records"`
	Stats      records.Stats    `json:"stats"`
	Duplicates []string         `json:"duplicates"`
	Advisory   string           `json:"advisory,omitempty"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	text, recs, err := readInput(r)
	if err != nil {
		s.inputError(w, r, err)
		return
	}
	sess := export.NewSession(s.cfg.Export)
	var set *records.Set
	if recs != nil {
		set = sess.SetRecords(recs)
	} else {
		set = sess.SetInput(text)
	}
	resp := recordsResponse{
		Records:    set.Records,
		Stats:      set.Stats(),
		Duplicates: set.Duplicates,
		Advisory:   set.Advisory(),
	}
	if resp.Records == nil {
		resp.Records = []records.Record{}
	}
	if resp.Duplicates == nil {
		resp.Duplicates = []string{}
	}
	render.JSON(w, r, resp)
}

func (s *Server) handleBuckets(w http.ResponseWriter, r *http.Request) {
	text, _, err := readInput(r)
	if err != nil {
		s.inputError(w, r, err)
		return
	}
	buckets := aggregate.TallyText(text)
	if buckets == nil {
		buckets = []aggregate.Bucket{}
	}
	render.JSON(w, r, map[string]any{
		"buckets": buckets,
		"chart":   aggregate.Chart(buckets),
		"total":   aggregate.Total(buckets),
	})
}

// handleExport renders into memory first, so a failure never leaks a partial
// workbook into the response.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	text, recs, err := readInput(r)
	if err != nil {
		s.inputError(w, r, err)
		return
	}
	sess := export.NewSession(s.cfg.Export)
	if recs != nil {
		sess.SetRecords(recs)
	} else {
		sess.SetInput(text)
	}
	advisory := sess.Advisory()

	var payload []byte
	sum, err := sess.Export(r.Context(), export.DeliverFunc(func(_ context.Context, _ string, data []byte) error {
		payload = data
		return nil
	}))
	switch {
	case errors.Is(err, export.ErrEmptyExport):
		_ = render.Render(w, r, errEmptyExport(err.Error()))
		return
	case err != nil:
		_ = render.Render(w, r, errExportFailed())
		return
	}

	h := w.Header()
	h.Set("Content-Type", xlsxContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": sum.FileName}))
	h.Set("Content-Length", strconv.Itoa(len(payload)))
	h.Set("X-Export-Id", sum.ID)
	h.Set("X-Export-Summary", fmt.Sprintf("total=%d valid=%d duplicate=%d invalid=%d gb=%s mb=%s",
		sum.Total, sum.Valid, sum.Duplicate, sum.Invalid,
		strconv.FormatFloat(sum.TotalGB, 'f', -1, 64), strconv.FormatFloat(sum.TotalMB, 'f', -1, 64)))
	if advisory != "" {
		h.Set("X-Export-Duplicates", strings.Join(sum.Duplicates, ","))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		s.log.Warn("write export response", slog.String("error", err.Error()))
	}
}
