package learning

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

func ParseDifficulty(raw string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "beginner":
		return DifficultyBeginner, nil
	case "intermediate":
		return DifficultyIntermediate, nil
	case "advanced":
		return DifficultyAdvanced, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", raw)
	}
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	default:
		return false
	}
}

// Session is one learning unit of a course. Duration is in minutes.
type Session struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Content   string `json:"content" yaml:"content"`
	Completed bool   `json:"completed" yaml:"completed"`
	Duration  int    `json:"duration" yaml:"duration"`
}

// Course carries a cached completion percentage derived from its sessions.
// The cache is only written by RecomputeProgress and CompleteSession.
type Course struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Thumbnail   string     `json:"thumbnail" yaml:"thumbnail"`
	Sessions    []Session  `json:"sessions" yaml:"sessions"`
	Rating      float64    `json:"rating" yaml:"rating"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Category    string     `json:"category" yaml:"category"`

	progress float64
}

func (c Course) Progress() float64 {
	return c.progress
}

// RecomputeProgress sets progress to 100*completed/total, or 0 for a course
// without sessions.
func (c *Course) RecomputeProgress() float64 {
	c.progress = ProgressOf(c.Sessions)
	return c.progress
}

// CompleteSession marks the session completed and recomputes progress.
// found reports whether the session exists; changed whether it flipped.
func (c *Course) CompleteSession(sessionID string) (found bool, changed bool) {
	for i := range c.Sessions {
		if c.Sessions[i].ID != sessionID {
			continue
		}
		if !c.Sessions[i].Completed {
			c.Sessions[i].Completed = true
			changed = true
		}
		c.RecomputeProgress()
		return true, changed
	}
	return false, false
}

func (c Course) Session(id string) (Session, bool) {
	for _, s := range c.Sessions {
		if s.ID == id {
			return s, true
		}
	}
	return Session{}, false
}

func (c Course) CompletedSessions() int {
	n := 0
	for _, s := range c.Sessions {
		if s.Completed {
			n++
		}
	}
	return n
}

func (c Course) TotalMinutes() int {
	total := 0
	for _, s := range c.Sessions {
		total += s.Duration
	}
	return total
}

// Clone returns a deep copy, including the cached progress.
func (c Course) Clone() Course {
	out := c
	if c.Sessions != nil {
		out.Sessions = make([]Session, len(c.Sessions))
		copy(out.Sessions, c.Sessions)
	}
	return out
}

func (c Course) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("course id is required")
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("course %q: invalid difficulty %q", c.ID, c.Difficulty)
	}
	seen := make(map[string]struct{}, len(c.Sessions))
	for _, s := range c.Sessions {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("course %q: session id is required", c.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("course %q: duplicate session id %q", c.ID, s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.Duration <= 0 {
			return fmt.Errorf("course %q: session %q duration must be positive", c.ID, s.ID)
		}
	}
	return nil
}

type courseJSON struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Thumbnail   string     `json:"thumbnail"`
	Sessions    []Session  `json:"sessions"`
	Progress    float64    `json:"progress"`
	Rating      float64    `json:"rating"`
	Difficulty  Difficulty `json:"difficulty"`
	Category    string     `json:"category"`
}

func (c Course) MarshalJSON() ([]byte, error) {
	sessions := c.Sessions
	if sessions == nil {
		sessions = []Session{}
	}
	return json.Marshal(courseJSON{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Thumbnail:   c.Thumbnail,
		Sessions:    sessions,
		Progress:    c.progress,
		Rating:      c.Rating,
		Difficulty:  c.Difficulty,
		Category:    c.Category,
	})
}

// UnmarshalJSON ignores any supplied progress and derives it from sessions.
func (c *Course) UnmarshalJSON(b []byte) error {
	var raw courseJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = Course{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Thumbnail:   raw.Thumbnail,
		Sessions:    raw.Sessions,
		Rating:      raw.Rating,
		Difficulty:  raw.Difficulty,
		Category:    raw.Category,
	}
	c.RecomputeProgress()
	return nil
}

func ProgressOf(sessions []Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	done := 0
	for _, s := range sessions {
		if s.Completed {
			done++
		}
	}
	return float64(100*done) / float64(len(sessions))
}
