package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub/internal/http/response"
	"github.com/yungbote/coursehub/internal/platform/apierr"
	"github.com/yungbote/coursehub/internal/platform/logger"
	"github.com/yungbote/coursehub/internal/realtime"
	"github.com/yungbote/coursehub/internal/store"
)

type RealtimeHandler struct {
	Log   *logger.Logger
	Hub   *realtime.SSEHub
	store *store.Store
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, st *store.Store) *RealtimeHandler {
	return &RealtimeHandler{
		Log:   log.With("handler", "RealtimeHandler"),
		Hub:   hub,
		store: st,
	}
}

// SSEStream sends a snapshot, then every store event. ?course=<id> narrows the
// stream to one course.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	channel := realtime.ChannelStore
	if id := strings.TrimSpace(c.Query("course")); id != "" {
		if _, ok := h.store.Course(id); !ok {
			response.RespondAPIError(c, apierr.NotFound("course_not_found", fmt.Errorf("course %q not found", id)))
			return
		}
		channel = realtime.CourseChannel(id)
	}

	client := h.Hub.NewSSEClient()
	realtime.Attach(h.store, h.Hub, client, channel)
	h.Log.Info("SSEStream open", "client_id", client.ID.String(), "channel", channel)

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.Hub.CloseClient(client)
	h.Log.Info("SSEStream closed", "client_id", client.ID.String())
}
