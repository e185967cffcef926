package present

import (
	"errors"
	"sync"

	"github.com/yungbote/coursehub/internal/generation"
)

var (
	ErrNoQuestions     = errors.New("quiz has no questions")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrOptionRange     = errors.New("option out of range")
	ErrNotAnswered     = errors.New("current question not answered")
	ErrIncomplete      = errors.New("not every question is answered")
	ErrAtStart         = errors.New("already at the first question")
	ErrAtEnd           = errors.New("already at the last question")
)

// QuizSession walks a quiz one question at a time. The first option chosen
// for a question is final.
type QuizSession struct {
	mu       sync.Mutex
	quiz     generation.Quiz
	index    int
	answers  []int
	finished bool
}

type OptionView struct {
	Text    string `json:"text"`
	Chosen  bool   `json:"chosen"`
	Correct bool   `json:"correct"`
}

// QuestionView is one question as shown to the learner. Correct flags and the
// explanation stay empty until the question is answered.
type QuestionView struct {
	Index       int          `json:"index"`
	Total       int          `json:"total"`
	Question    string       `json:"question"`
	Options     []OptionView `json:"options"`
	Answered    bool         `json:"answered"`
	Explanation string       `json:"explanation,omitempty"`
	CanPrev     bool         `json:"can_prev"`
	CanNext     bool         `json:"can_next"`
	CanFinish   bool         `json:"can_finish"`
}

type QuizResult struct {
	Score   int     `json:"score"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

func NewQuizSession(q generation.Quiz) (*QuizSession, error) {
	if len(q.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	s := &QuizSession{quiz: q}
	s.resetLocked()
	return s, nil
}

func (s *QuizSession) Title() string { return s.quiz.Title }

func (s *QuizSession) Len() int { return len(s.quiz.Questions) }

func (s *QuizSession) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *QuizSession) Current() QuestionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(s.index)
}

// Choose records the answer for the current question and reports whether it
// was correct.
func (s *QuizSession) Choose(option int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.quiz.Questions[s.index]
	if option < 0 || option >= len(q.Options) {
		return false, ErrOptionRange
	}
	if s.answers[s.index] >= 0 {
		return false, ErrAlreadyAnswered
	}
	s.answers[s.index] = option
	return option == q.AnswerIndex(), nil
}

func (s *QuizSession) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.answers[s.index] < 0 {
		return ErrNotAnswered
	}
	if s.index >= len(s.quiz.Questions)-1 {
		return ErrAtEnd
	}
	s.index++
	return nil
}

func (s *QuizSession) Prev() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == 0 {
		return ErrAtStart
	}
	s.index--
	return nil
}

// Score counts correct answers so far.
func (s *QuizSession) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked()
}

func (s *QuizSession) Finish() (QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.answers {
		if a < 0 {
			return QuizResult{}, ErrIncomplete
		}
	}
	s.finished = true
	total := len(s.quiz.Questions)
	score := s.scoreLocked()
	return QuizResult{Score: score, Total: total, Percent: float64(100*score) / float64(total)}, nil
}

func (s *QuizSession) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

func (s *QuizSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *QuizSession) resetLocked() {
	s.index = 0
	s.finished = false
	s.answers = make([]int, len(s.quiz.Questions))
	for i := range s.answers {
		s.answers[i] = -1
	}
}

func (s *QuizSession) scoreLocked() int {
	score := 0
	for i, a := range s.answers {
		if a >= 0 && a == s.quiz.Questions[i].AnswerIndex() {
			score++
		}
	}
	return score
}

func (s *QuizSession) viewLocked(i int) QuestionView {
	q := s.quiz.Questions[i]
	chosen := s.answers[i]
	answered := chosen >= 0
	correct := q.AnswerIndex()

	v := QuestionView{
		Index:    i,
		Total:    len(s.quiz.Questions),
		Question: q.Question,
		Options:  make([]OptionView, len(q.Options)),
		Answered: answered,
		CanPrev:  i > 0,
		CanNext:  answered && i < len(s.quiz.Questions)-1,
	}
	for j, o := range q.Options {
		v.Options[j] = OptionView{Text: o, Chosen: j == chosen, Correct: answered && j == correct}
	}
	if answered {
		v.Explanation = q.Explanation
	}
	v.CanFinish = true
	for _, a := range s.answers {
		if a < 0 {
			v.CanFinish = false
			break
		}
	}
	return v
}
