package app

import (
	"github.com/yungbote/coursehub/internal/observability"
	"github.com/yungbote/coursehub/internal/platform/logger"
	"github.com/yungbote/coursehub/internal/store"
)

// observeStore logs store events and feeds the progress metrics. It also
// seeds the per-course progress gauge from the initial catalog.
func observeStore(log *logger.Logger, st *store.Store, m *observability.Metrics) func() {
	log = log.With("component", "StoreObserver")
	for _, c := range st.Courses() {
		m.SetCourseProgress(c.ID, c.Progress())
	}
	return st.Subscribe(func(ev store.Event) {
		switch ev.Type {
		case store.EventSessionCompleted:
			m.ObserveSessionCompleted(ev.CourseID, ev.Progress)
			log.Info("session completed", "course_id", ev.CourseID, "session_id", ev.SessionID, "progress", ev.Progress)
		case store.EventProgressRecomputed:
			m.SetCourseProgress(ev.CourseID, ev.Progress)
			log.Debug("progress recomputed", "course_id", ev.CourseID, "progress", ev.Progress)
		case store.EventSelectionChanged:
			log.Debug("selection changed", "course_id", ev.CourseID)
		}
	})
}
