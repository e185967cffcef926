package present

import (
	"strings"
	"testing"

	"github.com/yungbote/coursehub/internal/generation"
)

func TestSelectError(t *testing.T) {
	v := Select(generation.Response{Kind: generation.KindProse, Body: "x", Error: "quota"}, generation.ActionSummarize)
	ev, ok := v.(ErrorView)
	if !ok || ev.Message != "quota" {
		t.Fatalf("expected error view, got %#v", v)
	}
}

func TestSelectProse(t *testing.T) {
	resp := generation.Prose("# Résumé")
	resp.Source = generation.SourceFallback
	v, ok := Select(resp, generation.ActionSummarize).(ProseView)
	if !ok {
		t.Fatalf("expected prose view")
	}
	if v.HTML != "<h1>Résumé</h1>" || !v.Fallback {
		t.Fatalf("unexpected prose view %+v", v)
	}
}

func TestSelectQuizAndMindmap(t *testing.T) {
	q, err := generation.Structured(sampleQuiz())
	if err != nil {
		t.Fatalf("Structured: %v", err)
	}
	if _, ok := Select(q, generation.ActionQuiz).(QuizView); !ok {
		t.Fatalf("expected quiz view")
	}

	m, _ := generation.Structured(sampleMindmap())
	mv, ok := Select(m, generation.ActionMindmap).(MindmapView)
	if !ok {
		t.Fatalf("expected mindmap view")
	}
	if len(mv.Visible) != 5 {
		t.Fatalf("visible nodes = %d", len(mv.Visible))
	}
}

func TestSelectStructuredFallsBackToRawJSON(t *testing.T) {
	q, _ := generation.Structured(sampleQuiz())
	v, ok := Select(q, generation.ActionSummarize).(ProseView)
	if !ok {
		t.Fatalf("summarize with structured content should be prose")
	}
	if !strings.HasPrefix(v.Markdown, "```json\n") || !strings.Contains(v.HTML, "<pre><code") {
		t.Fatalf("unexpected raw view %+v", v)
	}

	odd := generation.Response{Kind: generation.KindStructured, Shape: []byte(`{"foo":1}`)}
	if _, ok := Select(odd, generation.ActionQuiz).(ProseView); !ok {
		t.Fatalf("undecodable quiz should be prose")
	}
}
