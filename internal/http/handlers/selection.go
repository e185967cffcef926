package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub/internal/domain/learning"
	"github.com/yungbote/coursehub/internal/http/response"
	"github.com/yungbote/coursehub/internal/platform/apierr"
	"github.com/yungbote/coursehub/internal/platform/logger"
	"github.com/yungbote/coursehub/internal/store"
)

type SelectionHandler struct {
	log   *logger.Logger
	store *store.Store
}

func NewSelectionHandler(log *logger.Logger, st *store.Store) *SelectionHandler {
	return &SelectionHandler{
		log:   log.With("handler", "SelectionHandler"),
		store: st,
	}
}

type selectRequest struct {
	CourseID string `json:"course_id"`
}

func (h *SelectionHandler) selected() *learning.Course {
	if course, ok := h.store.Selected(); ok {
		return &course
	}
	return nil
}

func (h *SelectionHandler) GetSelection(c *gin.Context) {
	response.RespondOK(c, gin.H{"selected": h.selected()})
}

// PutSelection selects course_id; an unknown id clears the selection and
// reports matched=false.
func (h *SelectionHandler) PutSelection(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_body", err))
		return
	}
	id := strings.TrimSpace(req.CourseID)
	if id == "" {
		response.RespondAPIError(c, apierr.BadRequest("missing_course_id", errors.New("course_id is required")))
		return
	}
	matched := h.store.SelectCourse(id)
	response.RespondOK(c, gin.H{"matched": matched, "selected": h.selected()})
}

func (h *SelectionHandler) ClearSelection(c *gin.Context) {
	h.store.ClearSelection()
	c.Status(http.StatusNoContent)
}
