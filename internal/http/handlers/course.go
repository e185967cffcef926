package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub/internal/domain/learning"
	"github.com/yungbote/coursehub/internal/http/response"
	"github.com/yungbote/coursehub/internal/platform/apierr"
	"github.com/yungbote/coursehub/internal/platform/logger"
	"github.com/yungbote/coursehub/internal/store"
)

type CourseHandler struct {
	log   *logger.Logger
	store *store.Store
}

func NewCourseHandler(log *logger.Logger, st *store.Store) *CourseHandler {
	return &CourseHandler{
		log:   log.With("handler", "CourseHandler"),
		store: st,
	}
}

type mutationResult struct {
	Matched bool             `json:"matched"`
	Course  *learning.Course `json:"course,omitempty"`
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"courses": h.store.Courses(),
		"stats":   h.store.Stats(),
	})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := c.Param("id")
	course, ok := h.store.Course(id)
	if !ok {
		response.RespondAPIError(c, apierr.NotFound("course_not_found", fmt.Errorf("course %q not found", id)))
		return
	}
	response.RespondOK(c, course)
}

// CompleteSession answers 200 with matched=false for unknown ids; the store is
// left untouched in that case.
func (h *CourseHandler) CompleteSession(c *gin.Context) {
	courseID, sessionID := c.Param("id"), c.Param("sessionId")
	matched := h.store.CompleteSession(courseID, sessionID)
	if !matched {
		h.log.Debug("complete session: no match", "course_id", courseID, "session_id", sessionID)
	}
	response.RespondOK(c, h.result(courseID, matched))
}

func (h *CourseHandler) RecomputeProgress(c *gin.Context) {
	courseID := c.Param("id")
	response.RespondOK(c, h.result(courseID, h.store.RecomputeProgress(courseID)))
}

func (h *CourseHandler) Dashboard(c *gin.Context) {
	response.RespondOK(c, h.store.Stats())
}

func (h *CourseHandler) result(courseID string, matched bool) mutationResult {
	out := mutationResult{Matched: matched}
	if matched {
		if course, ok := h.store.Course(courseID); ok {
			out.Course = &course
		}
	}
	return out
}
