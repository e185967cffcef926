package store

import (
	"sync"
	"time"

	"github.com/yungbote/coursehub/internal/domain/learning"
)

type EventType string

const (
	EventSessionCompleted   EventType = "SessionCompleted"
	EventProgressRecomputed EventType = "ProgressRecomputed"
	EventSelectionChanged   EventType = "SelectionChanged"
)

// Event is delivered to observers after the mutation it describes is visible
// to readers. Progress is the course progress at the time of the mutation.
type Event struct {
	Type      EventType `json:"type"`
	CourseID  string    `json:"course_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Progress  float64   `json:"progress"`
	At        time.Time `json:"at"`
}

type Observer func(Event)

// Store is the in-memory registry of courses and their completion state.
// It is safe for concurrent use.
type Store struct {
	// writeMu is held across a mutation and the delivery of its event, so
	// observers receive events in mutation order. Lock order: writeMu, then mu.
	writeMu sync.Mutex

	mu       sync.RWMutex
	courses  []learning.Course
	index    map[string]int
	selected string

	obsMu     sync.RWMutex
	observers map[uint64]Observer
	nextObs   uint64

	now func() time.Time
}

// New takes ownership of a copy of courses; progress is recomputed for each.
func New(courses []learning.Course) *Store {
	s := &Store{
		courses:   make([]learning.Course, len(courses)),
		index:     make(map[string]int, len(courses)),
		observers: make(map[uint64]Observer),
		now:       time.Now,
	}
	for i, c := range courses {
		cp := c.Clone()
		cp.RecomputeProgress()
		s.courses[i] = cp
		s.index[cp.ID] = i
	}
	return s
}

func (s *Store) Courses() []learning.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]learning.Course, len(s.courses))
	for i := range s.courses {
		out[i] = s.courses[i].Clone()
	}
	return out
}

func (s *Store) Course(id string) (learning.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return learning.Course{}, false
	}
	return s.courses[i].Clone(), true
}

// SelectCourse points the selection at the course with the given id. An id
// that matches nothing clears the selection and returns false.
func (s *Store) SelectCourse(courseID string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	_, ok := s.index[courseID]
	prev := s.selected
	if ok {
		s.selected = courseID
	} else {
		s.selected = ""
	}
	next := s.selected
	s.mu.Unlock()

	if prev != next {
		s.notify(Event{Type: EventSelectionChanged, CourseID: next, At: s.now()})
	}
	return ok
}

func (s *Store) ClearSelection() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	prev := s.selected
	s.selected = ""
	s.mu.Unlock()

	if prev != "" {
		s.notify(Event{Type: EventSelectionChanged, At: s.now()})
	}
}

func (s *Store) Selected() (learning.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return learning.Course{}, false
	}
	return s.courses[s.index[s.selected]].Clone(), true
}

// CompleteSession marks a session completed and recomputes its course's
// progress under one lock. Unknown ids leave the store untouched and return
// false. Completing an already completed session returns true without notifying.
func (s *Store) CompleteSession(courseID, sessionID string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	i, ok := s.index[courseID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	found, changed := s.courses[i].CompleteSession(sessionID)
	progress := s.courses[i].Progress()
	s.mu.Unlock()

	if changed {
		s.notify(Event{
			Type:      EventSessionCompleted,
			CourseID:  courseID,
			SessionID: sessionID,
			Progress:  progress,
			At:        s.now(),
		})
	}
	return found
}

func (s *Store) RecomputeProgress(courseID string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	i, ok := s.index[courseID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	before := s.courses[i].Progress()
	progress := s.courses[i].RecomputeProgress()
	s.mu.Unlock()

	if before != progress {
		s.notify(Event{Type: EventProgressRecomputed, CourseID: courseID, Progress: progress, At: s.now()})
	}
	return true
}

func (s *Store) Stats() learning.CourseStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return learning.ComputeStats(s.courses)
}

// Hold runs fn while no mutation can start and no event is in flight. Reads
// inside fn see exactly the state that precedes the next delivered event.
// fn must not mutate the store.
func (s *Store) Hold(fn func()) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	fn()
}

// Subscribe registers fn for every subsequent event. Observers run on the
// mutating goroutine in mutation order, outside the read lock. They may read
// the store but must not mutate it, and must not block.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

func (s *Store) notify(ev Event) {
	s.obsMu.RLock()
	fns := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}
