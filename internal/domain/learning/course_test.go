package learning

import (
	"encoding/json"
	"math"
	"testing"
)

func fiveSessions() []Session {
	out := make([]Session, 5)
	for i := range out {
		out[i] = Session{ID: string(rune('a' + i)), Title: "s", Duration: 60}
	}
	return out
}

func TestProgressIsCompletedFraction(t *testing.T) {
	for k := 0; k <= 5; k++ {
		c := Course{ID: "c", Sessions: fiveSessions(), Difficulty: DifficultyBeginner}
		for i := 0; i < k; i++ {
			c.Sessions[i].Completed = true
		}
		got := c.RecomputeProgress()
		want := float64(100*k) / 5
		if got != want || c.Progress() != want {
			t.Fatalf("k=%d: want=%v got=%v cached=%v", k, want, got, c.Progress())
		}
	}
}

func TestProgressWithoutSessionsIsZero(t *testing.T) {
	c := Course{ID: "empty"}
	got := c.RecomputeProgress()
	if got != 0 || math.IsNaN(got) {
		t.Fatalf("want 0, got=%v", got)
	}
}

func TestCompleteSession(t *testing.T) {
	c := Course{ID: "c", Sessions: fiveSessions()}

	found, changed := c.CompleteSession("a")
	if !found || !changed {
		t.Fatalf("first completion: found=%v changed=%v", found, changed)
	}
	if c.Progress() != 20 {
		t.Fatalf("progress=%v", c.Progress())
	}

	found, changed = c.CompleteSession("a")
	if !found || changed {
		t.Fatalf("repeat completion: found=%v changed=%v", found, changed)
	}
	if c.Progress() != 20 {
		t.Fatalf("progress after repeat=%v", c.Progress())
	}

	found, _ = c.CompleteSession("missing")
	if found {
		t.Fatalf("unknown session reported found")
	}
	if c.CompletedSessions() != 1 {
		t.Fatalf("completed=%d", c.CompletedSessions())
	}
}

func TestCloneDoesNotShareSessions(t *testing.T) {
	c := Course{ID: "c", Sessions: fiveSessions()}
	c.RecomputeProgress()
	cp := c.Clone()
	cp.Sessions[0].Completed = true
	if c.Sessions[0].Completed {
		t.Fatalf("clone aliases the original sessions")
	}
}

func TestJSONIgnoresSuppliedProgress(t *testing.T) {
	raw := `{"id":"c","difficulty":"Beginner","progress":99,"sessions":[
		{"id":"a","duration":10,"completed":true},
		{"id":"b","duration":10},
		{"id":"c","duration":10},
		{"id":"d","duration":10}]}`
	var c Course
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Progress() != 25 {
		t.Fatalf("progress: want=25 got=%v", c.Progress())
	}

	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["progress"] != float64(25) {
		t.Fatalf("encoded progress=%v", out["progress"])
	}
}

func TestParseDifficulty(t *testing.T) {
	cases := map[string]Difficulty{
		"Beginner":      DifficultyBeginner,
		" intermediate": DifficultyIntermediate,
		"ADVANCED":      DifficultyAdvanced,
	}
	for in, want := range cases {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Fatalf("ParseDifficulty(%q): got=%q err=%v", in, got, err)
		}
	}
	if _, err := ParseDifficulty("expert"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestComputeStats(t *testing.T) {
	done := Course{ID: "done", Sessions: []Session{{ID: "1", Duration: 30, Completed: true}}}
	half := Course{ID: "half", Sessions: []Session{{ID: "1", Duration: 40, Completed: true}, {ID: "2", Duration: 60}}}
	none := Course{ID: "none", Sessions: []Session{{ID: "1", Duration: 10}}}
	courses := []Course{done, half, none}
	for i := range courses {
		courses[i].RecomputeProgress()
	}

	st := ComputeStats(courses)
	want := CourseStats{
		TotalCourses:      3,
		CompletedCourses:  1,
		InProgressCourses: 1,
		AverageProgress:   50,
		TotalSessions:     4,
		CompletedSessions: 2,
		TotalMinutes:      140,
		CompletedMinutes:  70,
	}
	if st != want {
		t.Fatalf("stats:\nwant=%+v\n got=%+v", want, st)
	}
	if empty := ComputeStats(nil); empty.AverageProgress != 0 {
		t.Fatalf("empty average=%v", empty.AverageProgress)
	}
}

func TestReadAccessorsOnReturnedValues(t *testing.T) {
	oneDone := func() Course {
		c := Course{ID: "c", Sessions: fiveSessions(), Difficulty: DifficultyBeginner}
		c.CompleteSession("a")
		return c
	}

	if got := oneDone().Progress(); got != 20 {
		t.Fatalf("Progress: want=20 got=%v", got)
	}
	if got := oneDone().CompletedSessions(); got != 1 {
		t.Fatalf("CompletedSessions: want=1 got=%d", got)
	}
	if got := oneDone().TotalMinutes(); got != 300 {
		t.Fatalf("TotalMinutes: want=300 got=%d", got)
	}
	if s, ok := oneDone().Session("a"); !ok || !s.Completed {
		t.Fatalf("Session(a): ok=%v completed=%v", ok, s.Completed)
	}
}
