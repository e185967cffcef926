package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub/internal/config"
	"github.com/yungbote/coursehub/internal/domain/learning"
	"github.com/yungbote/coursehub/internal/generation"
	httpH "github.com/yungbote/coursehub/internal/http/handlers"
	"github.com/yungbote/coursehub/internal/http/response"
	"github.com/yungbote/coursehub/internal/observability"
	"github.com/yungbote/coursehub/internal/platform/logger"
	"github.com/yungbote/coursehub/internal/realtime"
	"github.com/yungbote/coursehub/internal/store"
)

type remoteFunc func(ctx context.Context, req generation.Request) (generation.Response, error)

func (f remoteFunc) Generate(ctx context.Context, req generation.Request) (generation.Response, error) {
	return f(ctx, req)
}

type testEnv struct {
	router *gin.Engine
	store  *store.Store
	hub    *realtime.SSEHub
}

func newTestEnv(t *testing.T, policy config.FailurePolicy, remote remoteFunc) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()

	st := store.New([]learning.Course{
		{ID: "1", Title: "HTML", Difficulty: learning.DifficultyBeginner,
			Sessions: []learning.Session{{ID: "1-1", Duration: 10}, {ID: "1-2", Duration: 15}}},
		{ID: "2", Title: "CSS", Difficulty: learning.DifficultyIntermediate,
			Sessions: []learning.Session{{ID: "2-1", Duration: 20}}},
	})
	hub := realtime.NewSSEHub(log, 50*time.Millisecond)
	stop := realtime.ForwardStore(st, hub)
	t.Cleanup(stop)

	pipe, err := generation.NewPipeline(generation.PipelineOptions{
		Remote:            remote,
		Policy:            policy,
		Validate:          true,
		RejectEmptyPrompt: true,
		Log:               log,
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	r := NewRouter(RouterConfig{
		Log:              log,
		Metrics:          observability.New(true, log),
		MaxRequestBytes:  1 << 20,
		HealthHandler:    httpH.NewHealthHandler(),
		CourseHandler:    httpH.NewCourseHandler(log, st),
		SelectionHandler: httpH.NewSelectionHandler(log, st),
		RealtimeHandler:  httpH.NewRealtimeHandler(log, hub, st),
		GenerateHandler:  httpH.NewGenerateHandler(log, generation.NewPanel(pipe)),
	})
	return &testEnv{router: r, store: st, hub: hub}
}

func unreachable(context.Context, generation.Request) (generation.Response, error) {
	return generation.Response{}, &generation.Error{Kind: generation.RemoteUnreachable, Err: errors.New("connection refused")}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealthcheck(t *testing.T) {
	env := newTestEnv(t, config.PolicySoft, unreachable)
	rec := env.do(t, http.MethodGet, "/healthcheck", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
}

func TestListAndGetCourses(t *testing.T) {
	env := newTestEnv(t, config.PolicySoft, unreachable)

	rec := env.do(t, http.MethodGet, "/api/courses", "")
	var list struct {
		Courses []learning.Course    `json:"courses"`
		Stats   learning.CourseStats `json:"stats"`
	}
	decode(t, rec, &list)
	if len(list.Courses) != 2 || list.Stats.TotalCourses != 2 || list.Stats.TotalSessions != 3 {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = env.do(t, http.MethodGet, "/api/courses/2", "")
	var c learning.Course
	decode(t, rec, &c)
	if c.ID != "2" || c.Title != "CSS" {
		t.Fatalf("unexpected course %+v", c)
	}

	rec = env.do(t, http.MethodGet, "/api/courses/9", "")
	var env404 response.ErrorEnvelope
	decode(t, rec, &env404)
	if rec.Code != http.StatusNotFound || env404.Error.Code != "course_not_found" {
		t.Fatalf("missing course: %d %+v", rec.Code, env404)
	}
}

func TestCompleteSessionAndRecompute(t *testing.T) {
	env := newTestEnv(t, config.PolicySoft, unreachable)

	type result struct {
		Matched bool             `json:"matched"`
		Course  *learning.Course `json:"course"`
	}
	var res result
	decode(t, env.do(t, http.MethodPost, "/api/courses/1/sessions/1-1/complete", ""), &res)
	if !res.Matched || res.Course == nil || res.Course.Progress() != 50 {
		t.Fatalf("complete: %+v", res)
	}

	before := env.store.Courses()
	res = result{}
	decode(t, env.do(t, http.MethodPost, "/api/courses/1/sessions/nope/complete", ""), &res)
	if res.Matched || res.Course != nil {
		t.Fatalf("unknown session should not match: %+v", res)
	}
	after := env.store.Courses()
	if after[0].CompletedSessions() != before[0].CompletedSessions() || after[0].Progress() != before[0].Progress() {
		t.Fatalf("store changed on unknown session")
	}

	res = result{}
	decode(t, env.do(t, http.MethodPost, "/api/courses/1/progress/recompute", ""), &res)
	if !res.Matched || res.Course.Progress() != 50 {
		t.Fatalf("recompute: %+v", res)
	}

	var stats learning.CourseStats
	decode(t, env.do(t, http.MethodGet, "/api/dashboard", ""), &stats)
	if stats.InProgressCourses != 1 || stats.CompletedSessions != 1 || stats.AverageProgress != 25 {
		t.Fatalf("dashboard: %+v", stats)
	}
}

func TestSelectionLifecycle(t *testing.T) {
	env := newTestEnv(t, config.PolicySoft, unreachable)

	var put struct {
		Matched  bool             `json:"matched"`
		Selected *learning.Course `json:"selected"`
	}
	decode(t, env.do(t, http.MethodPut, "/api/selection", `{"course_id":"2"}`), &put)
	if !put.Matched || put.Selected == nil || put.Selected.ID != "2" {
		t.Fatalf("select: %+v", put)
	}

	var get struct {
		Selected *learning.Course `json:"selected"`
	}
	decode(t, env.do(t, http.MethodGet, "/api/selection", ""), &get)
	if get.Selected == nil || get.Selected.ID != "2" {
		t.Fatalf("get selection: %+v", get)
	}

	if rec := env.do(t, http.MethodDelete, "/api/selection", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("clear: %d", rec.Code)
	}
	get.Selected = nil
	decode(t, env.do(t, http.MethodGet, "/api/selection", ""), &get)
	if get.Selected != nil {
		t.Fatalf("selection not cleared")
	}

	put.Selected = nil
	decode(t, env.do(t, http.MethodPut, "/api/selection", `{"course_id":"9"}`), &put)
	if put.Matched || put.Selected != nil {
		t.Fatalf("unknown selection: %+v", put)
	}

	if rec := env.do(t, http.MethodPut, "/api/selection", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing course id: %d", rec.Code)
	}
}

type generateBody struct {
	Sequence  uint64              `json:"sequence"`
	Published bool                `json:"published"`
	Response  generation.Response `json:"response"`
	View      map[string]any      `json:"view"`
}

func TestGenerateSoftFallback(t *testing.T) {
	env := newTestEnv(t, config.PolicySoft, unreachable)

	rec := env.do(t, http.MethodPost, "/api/generate", `{"action":"summarize","user_prompt":"explain HTML"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body generateBody
	decode(t, rec, &body)
	if body.Response.Source != generation.SourceFallback || body.Response.Body == "" || body.Response.Error != "" {
		t.Fatalf("unexpected response %+v", body.Response)
	}
	if body.View["type"] != "prose" || body.View["fallback"] != true {
		t.Fatalf("unexpected view %+v", body.View)
	}
	if body.Sequence != 1 || !body.Published {
		t.Fatalf("sequence=%d published=%v", body.Sequence, body.Published)
	}

	var state generation.PanelState
	decode(t, env.do(t, http.MethodGet, "/api/generate/panel", ""), &state)
	if state.Generating || state.Tool != generation.ActionSummarize || state.Result == nil {
		t.Fatalf("unexpected panel state %+v", state)
	}
}

func TestGenerateHardPolicyReturnsBadGateway(t *testing.T) {
	env := newTestEnv(t, config.PolicyHard, unreachable)
	rec := env.do(t, http.MethodPost, "/api/generate", `{"action":"quiz","user_prompt":"HTML"}`)
	var errEnv response.ErrorEnvelope
	decode(t, rec, &errEnv)
	if rec.Code != http.StatusBadGateway || errEnv.Error.Code != string(generation.RemoteUnreachable) {
		t.Fatalf("hard failure: %d %+v", rec.Code, errEnv)
	}
}

func TestGenerateInputErrors(t *testing.T) {
	env := newTestEnv(t, config.PolicySoft, unreachable)
	cases := []struct {
		body string
		code string
	}{
		{`{"action":"","user_prompt":"HTML"}`, string(generation.NoToolSelected)},
		{`{"action":"poem","user_prompt":"HTML"}`, string(generation.InvalidInput)},
		{`{"action":"summarize","user_prompt":"   "}`, string(generation.InvalidInput)},
		{`not json`, "invalid_body"},
	}
	for _, tc := range cases {
		rec := env.do(t, http.MethodPost, "/api/generate", tc.body)
		var errEnv response.ErrorEnvelope
		decode(t, rec, &errEnv)
		if rec.Code != http.StatusBadRequest || errEnv.Error.Code != tc.code {
			t.Fatalf("%s: %d %+v", tc.body, rec.Code, errEnv)
		}
	}
}

func TestGenerateQuizView(t *testing.T) {
	quiz := generation.Quiz{Title: "HTML", Questions: []generation.QuizQuestion{
		{Question: "Balise de titre ?", Options: []string{"<p>", "<h1>"}, Answer: "<h1>"},
	}}
	env := newTestEnv(t, config.PolicySoft, func(_ context.Context, req generation.Request) (generation.Response, error) {
		if req.Action != generation.ActionQuiz || req.UserPrompt != "HTML" {
			t.Errorf("unexpected request %+v", req)
		}
		return generation.Structured(quiz)
	})

	var body generateBody
	decode(t, env.do(t, http.MethodPost, "/api/generate", `{"action":"quiz","user_prompt":"HTML"}`), &body)
	if body.Response.Source != generation.SourceRemote || body.View["type"] != "quiz" {
		t.Fatalf("unexpected quiz result %+v", body)
	}
}

func TestSelectTool(t *testing.T) {
	env := newTestEnv(t, config.PolicySoft, unreachable)
	var state generation.PanelState
	decode(t, env.do(t, http.MethodPut, "/api/generate/panel/tool", `{"action":"mindmap"}`), &state)
	if state.Tool != generation.ActionMindmap || state.Issued != 0 {
		t.Fatalf("unexpected state %+v", state)
	}
	if rec := env.do(t, http.MethodPut, "/api/generate/panel/tool", `{"action":""}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty tool: %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, config.PolicySoft, unreachable)
	env.do(t, http.MethodGet, "/api/courses", "")
	rec := env.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "coursehub_api_requests_total") {
		t.Fatalf("metrics: %d\n%s", rec.Code, rec.Body.String())
	}
}

func TestEventsStream(t *testing.T) {
	env := newTestEnv(t, config.PolicySoft, unreachable)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	if rec := env.do(t, http.MethodGet, "/api/events?course=9", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown course stream: %d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events?course=1", nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	waitFor := func(line string) {
		t.Helper()
		for sc.Scan() {
			if sc.Text() == line {
				return
			}
		}
		t.Fatalf("stream ended before %q: %v", line, sc.Err())
	}

	waitFor("event: Snapshot")
	for env.hub.Subscribers(realtime.CourseChannel("1")) == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	env.store.CompleteSession("1", "1-2")
	waitFor("event: SessionCompleted")
	cancel()
}
