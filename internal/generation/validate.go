package generation

import (
	"errors"
	"fmt"
	"strings"
)

const maxMindmapDepth = 16

// Validate checks that a remote response has the shape its action promises.
// A response carrying an Error is accepted as is; it renders as an inline error.
func Validate(action Action, r Response) error {
	if strings.TrimSpace(r.Error) != "" {
		return nil
	}
	switch action {
	case ActionSummarize:
		if r.Kind != KindProse {
			return fmt.Errorf("summarize: want prose, got %s", r.Kind)
		}
		if strings.TrimSpace(r.Body) == "" {
			return errors.New("summarize: empty body")
		}
		return nil
	case ActionQuiz:
		q, err := r.Quiz()
		if err != nil {
			return fmt.Errorf("quiz: %w", err)
		}
		return validateQuiz(q)
	case ActionMindmap:
		m, err := r.Mindmap()
		if err != nil {
			return fmt.Errorf("mindmap: %w", err)
		}
		return validateMindmap(m)
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

func validateQuiz(q Quiz) error {
	if len(q.Questions) == 0 {
		return errors.New("quiz: no questions")
	}
	for i, qq := range q.Questions {
		if strings.TrimSpace(qq.Question) == "" {
			return fmt.Errorf("quiz: question %d has no text", i+1)
		}
		if len(qq.Options) < 2 {
			return fmt.Errorf("quiz: question %d has %d options", i+1, len(qq.Options))
		}
		matches := 0
		for _, o := range qq.Options {
			if o == qq.Answer {
				matches++
			}
		}
		if matches != 1 {
			return fmt.Errorf("quiz: question %d answer matches %d options, want exactly 1", i+1, matches)
		}
	}
	return nil
}

func validateMindmap(m Mindmap) error {
	if len(m.Nodes) == 0 {
		return errors.New("mindmap: no nodes")
	}
	return validateNodes(m.Nodes, 0, "")
}

func validateNodes(nodes []MindmapNode, depth int, path string) error {
	if depth >= maxMindmapDepth {
		return fmt.Errorf("mindmap: deeper than %d levels at %s", maxMindmapDepth, path)
	}
	for i, n := range nodes {
		p := fmt.Sprintf("%s/%d", path, i)
		if strings.TrimSpace(n.Title) == "" {
			return fmt.Errorf("mindmap: node %s has no title", p)
		}
		if err := validateNodes(n.Children, depth+1, p); err != nil {
			return err
		}
	}
	return nil
}
