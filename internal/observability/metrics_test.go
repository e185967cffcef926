package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveGeneration("quiz", "remote", time.Second)
	m.IncGenerationFailure("quiz", "remote_unreachable", "soft")
	m.IncCache("hit")
	m.ObserveSessionCompleted("1", 20)

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want=%d got=%d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestDisabledReturnsNil(t *testing.T) {
	if m := New(false, nil); m != nil {
		t.Fatalf("New(false): want nil")
	}
}

func TestWritePrometheus(t *testing.T) {
	m := New(true, nil)
	m.ObserveAPI("POST", "/api/generate", "502", 30*time.Millisecond)
	m.ObserveGeneration("summarize", "fallback", 2*time.Millisecond)
	m.IncGenerationFailure("summarize", "remote_unreachable", "soft")
	m.ObserveSessionCompleted("1", 20)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`coursehub_api_requests_total{method="POST",route="/api/generate",status="502"} 1.000000`,
		`coursehub_api_requests_error_total 1.000000`,
		`coursehub_generation_requests_total{action="summarize",source="fallback"} 1.000000`,
		`coursehub_generation_failures_total{action="summarize",reason="remote_unreachable",policy="soft"} 1.000000`,
		`coursehub_sessions_completed_total{course="1"} 1.000000`,
		`coursehub_course_progress_percent{course="1"} 20.000000`,
		`coursehub_generation_duration_seconds_bucket{action="summarize",source="fallback",le="0.05"} 1`,
		"# TYPE coursehub_api_inflight_requests gauge",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestHistogramBuckets(t *testing.T) {
	h := NewHistogramVec("h", "help", []string{"k"}, []float64{1, 2})
	h.Observe(0.5, "a")
	h.Observe(1.5, "a")
	h.Observe(3, "a")

	var buf bytes.Buffer
	if err := h.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`h_bucket{k="a",le="1"} 1`,
		`h_bucket{k="a",le="2"} 2`,
		`h_bucket{k="a",le="+Inf"} 3`,
		`h_count{k="a"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestEscapeLabel(t *testing.T) {
	got := labelString([]string{"a"}, []string{"x\"y\n"})
	if got != `{a="x\"y\n"}` {
		t.Fatalf("labelString=%s", got)
	}
}
