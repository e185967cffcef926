package generation

import (
	"fmt"
	"strings"
)

// Action selects a generation tool.
type Action string

const (
	ActionSummarize Action = "summarize"
	ActionQuiz      Action = "quiz"
	ActionMindmap   Action = "mindmap"
)

var Actions = []Action{ActionSummarize, ActionQuiz, ActionMindmap}

// ParseAction maps user input to an Action. An empty string yields
// ErrNoToolSelected; any other unknown value is InvalidInput.
func ParseAction(raw string) (Action, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", &Error{Kind: NoToolSelected, Err: ErrNoToolSelected}
	}
	a := Action(s)
	if !a.Valid() {
		return "", &Error{Kind: InvalidInput, Err: fmt.Errorf("unsupported action %q", raw)}
	}
	return a, nil
}

func (a Action) Valid() bool {
	switch a {
	case ActionSummarize, ActionQuiz, ActionMindmap:
		return true
	default:
		return false
	}
}

// Structured reports whether a remote answer for this action is expected to
// carry a structured shape rather than prose.
func (a Action) Structured() bool {
	return a == ActionQuiz || a == ActionMindmap
}
