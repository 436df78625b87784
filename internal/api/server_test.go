package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"go.uber.org/goleak"

	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/errors"
	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/observability"
	"github.com/matzehuels/netgrid/pkg/pipeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func pair() *graph.Netlist {
	return &graph.Netlist{Top: graph.Cell{
		Name: "top",
		Kind: "top",
		Cells: []graph.Cell{
			{Name: "a", Kind: "instance", Statements: 1, Ports: []graph.Port{{Name: "o", Dir: "output"}}},
			{Name: "b", Kind: "instance", Statements: 1, Ports: []graph.Port{{Name: "i", Dir: "input"}}},
		},
		Connections: []graph.Connection{{From: "a.o", To: "b.i"}},
	}}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	srv := httptest.NewServer(New(runner, log.New(io.Discard)).Handler())
	t.Cleanup(func() {
		srv.Close()
		http.DefaultClient.CloseIdleConnections()
	})
	return srv
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if id := resp.Header.Get(RequestIDHeader); id == "" {
		t.Error("response has no request id")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/version", nil)
	const id = "3f1c1b7e-9d55-4a43-a7d0-0c9d5b0e2a11"
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /v1/version: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}
}

func TestLayout(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/v1/layout", pipeline.Options{
		Netlist: pair(),
		Formats: []string{pipeline.FormatJSON, pipeline.FormatSVG},
	})
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, b)
	}

	var got LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID == "" {
		t.Error("RunID is empty")
	}
	if got.Error != nil {
		t.Errorf("Error = %+v, want nil", got.Error)
	}
	if len(got.Layout.Frames) != 1 || got.Layout.Frames[0].Cell != "top" {
		t.Fatalf("frames = %+v, want just top", got.Layout.Frames)
	}
	if n := len(got.Layout.Frames[0].Routes); n != 1 {
		t.Errorf("routes = %d, want 1", n)
	}
	if !bytes.HasPrefix(got.Artifacts[pipeline.FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact = %.40q, want an svg document", got.Artifacts[pipeline.FormatSVG])
	}
	if got.Stats.Cells != 3 || got.Stats.Nets != 1 {
		t.Errorf("stats = %+v, want 3 cells and 1 net", got.Stats)
	}
}

func TestLayoutErrors(t *testing.T) {
	srv := newTestServer(t)

	unroutable := config.Default()
	unroutable.Border, unroutable.CellBorder = 0, 0
	unroutable.MaxEscalations = 0

	badConfig := config.Default()
	badConfig.PortPitch = 0

	dangling := pair()
	dangling.Top.Connections = []graph.Connection{{From: "a.o", To: "c.i"}}

	tests := []struct {
		name   string
		body   any
		status int
		code   errors.Code
	}{
		{"malformed json", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"netlist":{"top":{"name":"t","kind":"top"}},"colour":1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing netlist", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad format", pipeline.Options{Netlist: pair(), Formats: []string{"gif"}}, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad config", pipeline.Options{Netlist: pair(), Config: badConfig}, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"unknown port", pipeline.Options{Netlist: dangling}, http.StatusBadRequest, errors.ErrCodeInvalidNetlist},
		{"unroutable", pipeline.Options{Netlist: pair(), Config: unroutable}, http.StatusUnprocessableEntity, errors.ErrCodeEscalationExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/layout", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var body struct {
				Error *ErrorBody `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error == nil || body.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", body.Error, tt.code)
			}
		})
	}
}

func TestUnroutableReturnsPartialLayout(t *testing.T) {
	srv := newTestServer(t)
	cfg := config.Default()
	cfg.Border, cfg.CellBorder = 0, 0
	cfg.MaxEscalations = 0

	resp := post(t, srv.URL+"/v1/layout", pipeline.Options{Netlist: pair(), Config: cfg})
	var got LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Layout.Frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(got.Layout.Frames))
	}
	if rep := got.Layout.Frames[0].Report; rep.State != "failed" || !strings.Contains(rep.Error, "top/a.o") {
		t.Errorf("report = %+v, want failed naming top/a.o", rep)
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	requests []string
	statuses []int
}

func (h *recordingHooks) OnRequest(_ context.Context, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	post(t, srv.URL+"/v1/layout", "{")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	wantReq := []string{"GET /healthz", "POST /v1/layout"}
	if len(hooks.requests) != 2 || hooks.requests[0] != wantReq[0] || hooks.requests[1] != wantReq[1] {
		t.Errorf("requests = %v, want %v", hooks.requests, wantReq)
	}
	wantStatus := []int{http.StatusOK, http.StatusBadRequest}
	if len(hooks.statuses) != 2 || hooks.statuses[0] != wantStatus[0] || hooks.statuses[1] != wantStatus[1] {
		t.Errorf("statuses = %v, want %v", hooks.statuses, wantStatus)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidNetlist, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.Wrap(errors.ErrCodeEscalationExhausted, errors.New(errors.ErrCodeUnroutable, "net"), "top"), http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(pipeline.NewRunner(nil, nil, log.New(io.Discard)), log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
