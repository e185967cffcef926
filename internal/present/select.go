package present

import (
	"bytes"
	"encoding/json"

	"github.com/yungbote/coursehub/internal/generation"
)

type ViewKind string

const (
	ViewError   ViewKind = "error"
	ViewProse   ViewKind = "prose"
	ViewQuiz    ViewKind = "quiz"
	ViewMindmap ViewKind = "mindmap"
)

// View is what a generation result turns into for display.
type View interface {
	Kind() ViewKind
}

type ErrorView struct {
	Type    ViewKind `json:"type"`
	Message string   `json:"message"`
}

type ProseView struct {
	Type     ViewKind `json:"type"`
	Markdown string   `json:"markdown"`
	HTML     string   `json:"html"`
	// Fallback is set when the text was produced locally after a failed call.
	Fallback bool     `json:"fallback,omitempty"`
}

type QuizView struct {
	Type ViewKind        `json:"type"`
	Quiz generation.Quiz `json:"quiz"`
}

type MindmapView struct {
	Type    ViewKind           `json:"type"`
	Mindmap generation.Mindmap `json:"mindmap"`
	Visible []VisibleNode      `json:"visible"`
}

func (ErrorView) Kind() ViewKind   { return ViewError }
func (ProseView) Kind() ViewKind   { return ViewProse }
func (QuizView) Kind() ViewKind    { return ViewQuiz }
func (MindmapView) Kind() ViewKind { return ViewMindmap }

// Select picks the view for a response produced by action. Structured shapes
// that do not decode for their action are shown as prose around the raw JSON.
func Select(resp generation.Response, action generation.Action) View {
	if resp.Error != "" {
		return ErrorView{Type: ViewError, Message: resp.Error}
	}
	if resp.Kind == generation.KindStructured {
		switch action {
		case generation.ActionQuiz:
			if q, err := resp.Quiz(); err == nil && len(q.Questions) > 0 {
				return QuizView{Type: ViewQuiz, Quiz: q}
			}
		case generation.ActionMindmap:
			if m, err := resp.Mindmap(); err == nil && len(m.Nodes) > 0 {
				return MindmapView{Type: ViewMindmap, Mindmap: m, Visible: NewMindmapTree(m).Visible()}
			}
		}
		return proseView(rawJSONMarkdown(resp.Shape), resp.Source)
	}
	return proseView(resp.Body, resp.Source)
}

func proseView(md string, src generation.Source) ProseView {
	return ProseView{
		Type:     ViewProse,
		Markdown: md,
		HTML:     ProseHTML(md),
		Fallback: src == generation.SourceFallback,
	}
}

func rawJSONMarkdown(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	return "```json\n" + buf.String() + "\n```"
}
