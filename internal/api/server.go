// Package api serves the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness check
//	GET  /v1/version  build information
//	POST /v1/layout   lay out a netlist and return the layout and artifacts
//
// Requests and responses are JSON. Errors carry the netgrid error code so
// that clients can tell invalid input from unroutable designs.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netgrid/pkg/buildinfo"
	"github.com/matzehuels/netgrid/pkg/errors"
	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when none is given.
	DefaultAddr = ":8080"

	// MaxBodyBytes bounds the size of a layout request.
	MaxBodyBytes = 8 << 20

	// RequestTimeout bounds a single layout run.
	RequestTimeout = 2 * time.Minute

	shutdownTimeout = 10 * time.Second
)

// Server exposes a pipeline runner over HTTP.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server around runner. The runner's cache is shared by all
// requests.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Handler returns the HTTP handler with all routes and middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.With(middleware.Timeout(RequestTimeout)).Post("/layout", s.handleLayout)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

// LayoutResponse is the body of a successful or partially successful
// /v1/layout call.
type LayoutResponse struct {
	RunID     string            `json:"run_id"`
	Layout    graph.Layout      `json:"layout"`
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
	Stats     Stats             `json:"stats"`
	Cached    bool              `json:"cached"`
	Error     *ErrorBody        `json:"error,omitempty"`
}

// Stats summarizes a run.
type Stats struct {
	Cells       int   `json:"cells"`
	Nets        int   `json:"nets"`
	Frames      int   `json:"frames"`
	Escalations int   `json:"escalations"`
	Retries     int   `json:"retries"`
	LayoutMS    int64 `json:"layout_ms"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if opts.Netlist == nil {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "request has no netlist"))
		return
	}
	opts.Logger = s.logger.With("request", requestIDFrom(r.Context()))

	result, err := s.runner.Execute(r.Context(), opts)
	if result == nil {
		s.fail(w, r, err)
		return
	}

	resp := LayoutResponse{
		RunID:     result.RunID,
		Layout:    result.Layout,
		Artifacts: result.Artifacts,
		Cached:    result.CacheInfo.LayoutHit,
		Stats: Stats{
			Cells:       result.Stats.CellCount,
			Nets:        result.Stats.NetCount,
			Frames:      result.Stats.FrameCount,
			Escalations: result.Stats.Escalations,
			Retries:     result.Stats.Retries,
			LayoutMS:    result.Stats.LayoutTime.Milliseconds(),
		},
	}
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		resp.Error = &ErrorBody{Code: codeFor(err), Message: err.Error()}
		s.logger.Warn("layout failed", "request", requestIDFrom(r.Context()), "error", err)
	}
	writeJSON(w, status, resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request", requestIDFrom(r.Context()), "error", err)
	}
	writeJSON(w, status, map[string]*ErrorBody{
		"error": {Code: codeFor(err), Message: err.Error()},
	})
}

// statusFor maps an error chain to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Has(err, errors.ErrCodeInvalidInput),
		errors.Has(err, errors.ErrCodeInvalidNetlist),
		errors.Has(err, errors.ErrCodeInvalidConfig),
		errors.Has(err, errors.ErrCodeInvalidFormat):
		return http.StatusBadRequest
	case errors.Has(err, errors.ErrCodeNotFound),
		errors.Has(err, errors.ErrCodeFileNotFound):
		return http.StatusNotFound
	case errors.Has(err, errors.ErrCodeUnroutable),
		errors.Has(err, errors.ErrCodeEscalationExhausted),
		errors.Has(err, errors.ErrCodeGridNonConvergence):
		return http.StatusUnprocessableEntity
	case errors.Has(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	case isContextErr(err):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func codeFor(err error) errors.Code {
	if errors.IsFatal(err) {
		if errors.Has(err, errors.ErrCodeEscalationExhausted) {
			return errors.ErrCodeEscalationExhausted
		}
		return errors.ErrCodeGridNonConvergence
	}
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.ErrCodeInternal
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
