package generation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Request struct {
	Action     Action `json:"action"`
	UserPrompt string `json:"user_prompt"`
}

type Kind string

const (
	KindProse      Kind = "prose"
	KindStructured Kind = "structured"
)

type Source string

const (
	SourceRemote   Source = "remote"
	SourceLocal    Source = "local"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Response is either prose (Body holds markdown) or structured (Shape holds a
// JSON object). Error may accompany either kind. Source and Reason record where
// the value came from; a fallback carries the failure kind in Reason and never
// sets Error.
type Response struct {
	Kind   Kind
	Body   string
	Shape  json.RawMessage
	Error  string
	Source Source
	Reason ErrorKind
}

func Prose(body string) Response {
	return Response{Kind: KindProse, Body: body}
}

func Structured(v any) (Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Response{}, err
	}
	return Response{Kind: KindStructured, Shape: b}, nil
}

type wireResponse struct {
	Kind    string          `json:"kind,omitempty"`
	Type    string          `json:"type,omitempty"`
	Content json.RawMessage `json:"content"`
	Error   string          `json:"error,omitempty"`
	Source  Source          `json:"source,omitempty"`
	Reason  ErrorKind       `json:"reason,omitempty"`
}

func (r Response) MarshalJSON() ([]byte, error) {
	w := wireResponse{Kind: string(r.Kind), Error: r.Error, Source: r.Source, Reason: r.Reason}
	switch r.Kind {
	case KindStructured:
		if len(r.Shape) == 0 {
			w.Content = json.RawMessage("null")
		} else {
			w.Content = r.Shape
		}
	default:
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, err
		}
		w.Content = b
	}
	return json.Marshal(w)
}

var errUnknownKind = errors.New("unknown response kind")

// UnmarshalJSON accepts {"kind": "prose"|"structured"} and the legacy
// {"type": "markdown"|"json"} form. Without either, the kind is inferred from
// whether content is a string.
func (r *Response) UnmarshalJSON(b []byte) error {
	var w wireResponse
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	content := bytes.TrimSpace(w.Content)
	isString := len(content) > 0 && content[0] == '"'
	isNull := len(content) == 0 || bytes.Equal(content, []byte("null"))

	var kind Kind
	switch strings.ToLower(strings.TrimSpace(firstNonEmpty(w.Kind, w.Type))) {
	case "prose", "markdown", "text":
		kind = KindProse
	case "structured", "json":
		kind = KindStructured
	case "":
		switch {
		case isString:
			kind = KindProse
		case isNull && w.Error != "":
			kind = KindProse
		case isNull:
			return errors.New("response has neither kind nor content")
		default:
			kind = KindStructured
		}
	default:
		return fmt.Errorf("%w %q", errUnknownKind, firstNonEmpty(w.Kind, w.Type))
	}

	out := Response{Kind: kind, Error: w.Error, Source: w.Source, Reason: w.Reason}
	switch kind {
	case KindProse:
		if isString {
			if err := json.Unmarshal(content, &out.Body); err != nil {
				return err
			}
		} else if !isNull {
			// Some backends answer summarize with an object; keep it as text.
			out.Body = string(content)
		}
	case KindStructured:
		if isString {
			// Structured content delivered as a JSON-encoded string.
			var s string
			if err := json.Unmarshal(content, &s); err != nil {
				return err
			}
			if !json.Valid([]byte(s)) {
				return errors.New("structured content is not JSON")
			}
			content = []byte(s)
		}
		if !isNull {
			out.Shape = append(json.RawMessage(nil), content...)
		}
	}
	*r = out
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type Quiz struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// AnswerIndex is the index of the option equal to Answer, or -1.
func (q QuizQuestion) AnswerIndex() int {
	for i, o := range q.Options {
		if o == q.Answer {
			return i
		}
	}
	return -1
}

type Mindmap struct {
	Title string        `json:"title"`
	Nodes []MindmapNode `json:"nodes"`
}

type MindmapNode struct {
	Title    string        `json:"title"`
	Children []MindmapNode `json:"children,omitempty"`
}

func (r Response) Quiz() (Quiz, error) {
	var q Quiz
	if r.Kind != KindStructured || len(r.Shape) == 0 {
		return q, errors.New("response has no structured shape")
	}
	err := json.Unmarshal(r.Shape, &q)
	return q, err
}

func (r Response) Mindmap() (Mindmap, error) {
	var m Mindmap
	if r.Kind != KindStructured || len(r.Shape) == 0 {
		return m, errors.New("response has no structured shape")
	}
	err := json.Unmarshal(r.Shape, &m)
	return m, err
}
