// Package mock answers generation requests from the course catalog without a
// generation service. Answers are deterministic for a given catalog and prompt.
package mock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/yungbote/coursehub/internal/domain/learning"
	"github.com/yungbote/coursehub/internal/generation"
)

const maxQuizOptions = 4

type Engine struct {
	courses []learning.Course
}

func New(courses []learning.Course) *Engine {
	cp := make([]learning.Course, len(courses))
	for i, c := range courses {
		cp[i] = c.Clone()
	}
	return &Engine{courses: cp}
}

// Generate matches the prompt to a session and builds the answer from that
// session's course: prose for summarize, a quiz or mindmap shape otherwise.
func (e *Engine) Generate(ctx context.Context, req generation.Request) (generation.Response, error) {
	if err := ctx.Err(); err != nil {
		return generation.Response{}, err
	}
	action, err := generation.ParseAction(string(req.Action))
	if err != nil {
		return generation.Response{}, err
	}
	ci, si, ok := e.match(req.UserPrompt)
	if !ok {
		return generation.Response{}, &generation.Error{Kind: generation.RemoteUnreachable, Err: errors.New("mock: catalog has no sessions")}
	}
	course := e.courses[ci]

	var resp generation.Response
	switch action {
	case generation.ActionQuiz:
		resp, err = generation.Structured(e.quiz(course))
	case generation.ActionMindmap:
		resp, err = generation.Structured(mindmap(course))
	default:
		resp = generation.Prose(summary(course, si))
	}
	if err != nil {
		return generation.Response{}, &generation.Error{Kind: generation.MalformedResponse, Err: err}
	}
	resp.Source = generation.SourceLocal
	return resp, nil
}

// match scores every session by how many prompt words appear in its course
// title, category, session title and content. Ties keep catalog order; a
// prompt matching nothing selects the first session.
func (e *Engine) match(prompt string) (course int, session int, ok bool) {
	words := keywords(prompt)
	best := -1
	for ci, c := range e.courses {
		for si, s := range c.Sessions {
			text := strings.ToLower(strings.Join([]string{c.Title, c.Category, s.Title, s.Content}, " "))
			score := 0
			for _, w := range words {
				if strings.Contains(text, w) {
					score++
				}
			}
			if score > best {
				best = score
				course, session = ci, si
			}
		}
	}
	return course, session, best >= 0
}

func keywords(prompt string) []string {
	fields := strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

func summary(c learning.Course, si int) string {
	s := c.Sessions[si]
	var b strings.Builder
	fmt.Fprintf(&b, "# Résumé : %s\n\n", s.Title)
	fmt.Fprintf(&b, "*%s* · séance %d/%d · %d min\n\n", c.Title, si+1, len(c.Sessions), s.Duration)
	b.WriteString("## Points clés\n\n")
	topics := topicsOf(s.Content)
	if len(topics) == 0 {
		topics = []string{s.Title}
	}
	for _, t := range topics {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	if si+1 < len(c.Sessions) {
		fmt.Fprintf(&b, "\n## Ensuite\n\n%s\n", c.Sessions[si+1].Title)
	}
	return b.String()
}

// quiz asks, for each session with content, which session covers its first
// topic. Options are session titles of the course, padded from other courses
// when the course has fewer than four.
func (e *Engine) quiz(c learning.Course) generation.Quiz {
	titles := distinctTitles(c.Sessions)
	if len(titles) < maxQuizOptions {
		for _, other := range e.courses {
			if other.ID == c.ID {
				continue
			}
			titles = appendDistinct(titles, distinctTitles(other.Sessions)...)
		}
	}

	q := generation.Quiz{Title: "Quiz : " + c.Title}
	for i, s := range c.Sessions {
		topics := topicsOf(s.Content)
		if len(topics) == 0 {
			continue
		}
		options := []string{s.Title}
		for j := 1; len(options) < maxQuizOptions && j < len(titles); j++ {
			options = appendDistinct(options, titles[(indexOf(titles, s.Title)+j)%len(titles)])
		}
		if len(options) < 2 {
			continue
		}
		// Rotate so the answer does not always come first.
		k := i % len(options)
		rotated := make([]string, 0, len(options))
		rotated = append(rotated, options[k:]...)
		rotated = append(rotated, options[:k]...)
		q.Questions = append(q.Questions, generation.QuizQuestion{
			Question:    fmt.Sprintf("Quelle séance aborde : %s ?", topics[0]),
			Options:     rotated,
			Answer:      s.Title,
			Explanation: fmt.Sprintf("« %s » couvre : %s.", s.Title, strings.Join(topics, ", ")),
		})
	}
	return q
}

// mindmap puts the course at the root, one node per session and one child per
// topic. A topic ending in a parenthesised list becomes a node with those
// items as children.
func mindmap(c learning.Course) generation.Mindmap {
	m := generation.Mindmap{Title: c.Title}
	for _, s := range c.Sessions {
		node := generation.MindmapNode{Title: s.Title}
		for _, t := range topicsOf(s.Content) {
			node.Children = append(node.Children, topicNode(t))
		}
		m.Nodes = append(m.Nodes, node)
	}
	return m
}

func topicNode(t string) generation.MindmapNode {
	open := strings.LastIndex(t, "(")
	if open <= 0 || !strings.HasSuffix(t, ")") {
		return generation.MindmapNode{Title: t}
	}
	head := strings.TrimSpace(t[:open])
	n := generation.MindmapNode{Title: head}
	for _, item := range splitTopLevel(t[open+1:len(t)-1], ',') {
		n.Children = append(n.Children, generation.MindmapNode{Title: item})
	}
	if head == "" || len(n.Children) == 0 {
		return generation.MindmapNode{Title: t}
	}
	return n
}

// topicsOf splits session content into topics on commas and sentence ends
// outside parentheses.
func topicsOf(content string) []string {
	var out []string
	for _, sentence := range splitTopLevel(content, '.') {
		out = append(out, splitTopLevel(sentence, ',')...)
	}
	return out
}

func splitTopLevel(s string, sep rune) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			out = append(out, t)
		}
		cur.Reset()
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case r == sep && depth == 0:
			// A period inside a word (Node.js) is not a sentence end.
			if sep == '.' && i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
				break
			}
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}

func distinctTitles(sessions []learning.Session) []string {
	var out []string
	for _, s := range sessions {
		if t := strings.TrimSpace(s.Title); t != "" {
			out = appendDistinct(out, t)
		}
	}
	return out
}

func appendDistinct(list []string, items ...string) []string {
	for _, it := range items {
		if indexOf(list, it) < 0 {
			list = append(list, it)
		}
	}
	return list
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
