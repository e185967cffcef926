package learning

// CourseStats is the dashboard summary over a catalog.
type CourseStats struct {
	TotalCourses      int     `json:"total_courses"`
	CompletedCourses  int     `json:"completed_courses"`
	InProgressCourses int     `json:"in_progress_courses"`
	AverageProgress   float64 `json:"average_progress"`
	TotalSessions     int     `json:"total_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	TotalMinutes      int     `json:"total_minutes"`
	CompletedMinutes  int     `json:"completed_minutes"`
}

func ComputeStats(courses []Course) CourseStats {
	var st CourseStats
	st.TotalCourses = len(courses)
	var sum float64
	for i := range courses {
		c := &courses[i]
		p := c.Progress()
		sum += p
		switch {
		case p >= 100:
			st.CompletedCourses++
		case p > 0:
			st.InProgressCourses++
		}
		for _, s := range c.Sessions {
			st.TotalSessions++
			st.TotalMinutes += s.Duration
			if s.Completed {
				st.CompletedSessions++
				st.CompletedMinutes += s.Duration
			}
		}
	}
	if st.TotalCourses > 0 {
		st.AverageProgress = sum / float64(st.TotalCourses)
	}
	return st
}
