package present

import (
	"errors"
	"testing"

	"github.com/yungbote/coursehub/internal/generation"
)

func sampleQuiz() generation.Quiz {
	return generation.Quiz{
		Title: "HTML",
		Questions: []generation.QuizQuestion{
			{Question: "Balise de titre ?", Options: []string{"<p>", "<h1>", "<a>"}, Answer: "<h1>", Explanation: "h1 est le titre principal."},
			{Question: "Balise de lien ?", Options: []string{"<a>", "<link>"}, Answer: "<a>"},
		},
	}
}

func TestQuizSessionRejectsEmptyQuiz(t *testing.T) {
	if _, err := NewQuizSession(generation.Quiz{}); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestQuizSessionFirstAnswerIsFinal(t *testing.T) {
	s, err := NewQuizSession(sampleQuiz())
	if err != nil {
		t.Fatalf("NewQuizSession: %v", err)
	}
	before := s.Current()
	if before.Answered || before.Explanation != "" {
		t.Fatalf("fresh question should be unanswered: %+v", before)
	}
	for _, o := range before.Options {
		if o.Correct {
			t.Fatalf("correct option revealed before answering")
		}
	}

	ok, err := s.Choose(0)
	if err != nil || ok {
		t.Fatalf("Choose(0) = %v, %v; want false, nil", ok, err)
	}
	if _, err := s.Choose(1); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("second choice should be locked, got %v", err)
	}

	v := s.Current()
	if !v.Answered || !v.Options[0].Chosen || !v.Options[1].Correct || v.Options[0].Correct {
		t.Fatalf("unexpected view after answering: %+v", v)
	}
	if v.Explanation != "h1 est le titre principal." {
		t.Fatalf("explanation not shown: %q", v.Explanation)
	}
}

func TestQuizSessionNavigation(t *testing.T) {
	s, _ := NewQuizSession(sampleQuiz())
	if err := s.Prev(); !errors.Is(err, ErrAtStart) {
		t.Fatalf("Prev at start: %v", err)
	}
	if err := s.Next(); !errors.Is(err, ErrNotAnswered) {
		t.Fatalf("Next before answering: %v", err)
	}
	if _, err := s.Choose(5); !errors.Is(err, ErrOptionRange) {
		t.Fatalf("out of range choice: %v", err)
	}
	if _, err := s.Choose(1); err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if s.Index() != 1 {
		t.Fatalf("expected index 1, got %d", s.Index())
	}
	if v := s.Current(); v.CanFinish || !v.CanPrev || v.CanNext {
		t.Fatalf("unexpected flags on last question: %+v", v)
	}
	if _, err := s.Finish(); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Finish before all answered: %v", err)
	}
	if _, err := s.Choose(1); err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if err := s.Next(); !errors.Is(err, ErrAtEnd) {
		t.Fatalf("Next at end: %v", err)
	}
	if err := s.Prev(); err != nil {
		t.Fatalf("Prev: %v", err)
	}
	if !s.Current().Answered {
		t.Fatalf("answer lost after navigating back")
	}
}

func TestQuizSessionScoreFinishReset(t *testing.T) {
	s, _ := NewQuizSession(sampleQuiz())
	_, _ = s.Choose(1)
	_ = s.Next()
	_, _ = s.Choose(1)

	if got := s.Score(); got != 1 {
		t.Fatalf("Score = %d, want 1", got)
	}
	res, err := s.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if res.Score != 1 || res.Total != 2 || res.Percent != 50 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !s.Finished() {
		t.Fatalf("expected finished")
	}

	s.Reset()
	if s.Finished() || s.Index() != 0 || s.Score() != 0 || s.Current().Answered {
		t.Fatalf("reset did not clear state")
	}
}
