package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub/internal/generation"
	"github.com/yungbote/coursehub/internal/http/response"
	"github.com/yungbote/coursehub/internal/platform/apierr"
	"github.com/yungbote/coursehub/internal/platform/ctxutil"
	"github.com/yungbote/coursehub/internal/platform/logger"
	"github.com/yungbote/coursehub/internal/present"
)

type GenerateHandler struct {
	log   *logger.Logger
	panel *generation.Panel
}

func NewGenerateHandler(log *logger.Logger, panel *generation.Panel) *GenerateHandler {
	return &GenerateHandler{
		log:   log.With("handler", "GenerateHandler"),
		panel: panel,
	}
}

type generateRequest struct {
	Action     string `json:"action"`
	UserPrompt string `json:"user_prompt"`
}

type generateResult struct {
	Sequence  uint64               `json:"sequence"`
	Published bool                 `json:"published"`
	Response  *generation.Response `json:"response"`
	View      present.View         `json:"view"`
}

type selectToolRequest struct {
	Action string `json:"action"`
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_body", err))
		return
	}

	res, published, err := h.panel.Submit(c.Request.Context(), generation.Action(req.Action), req.UserPrompt)
	if err != nil {
		kind := generation.KindOf(err)
		fields := append([]interface{}{"action", req.Action, "kind", kind, "error", err}, ctxutil.LogFields(c.Request.Context())...)
		h.log.Warn("generation failed", fields...)
		response.RespondAPIError(c, apierr.New(statusForKind(kind), codeForKind(kind), err))
		return
	}

	response.RespondOK(c, generateResult{
		Sequence:  res.Sequence,
		Published: published,
		Response:  res.Response,
		View:      present.Select(*res.Response, res.Action),
	})
}

func (h *GenerateHandler) PanelState(c *gin.Context) {
	response.RespondOK(c, h.panel.State())
}

func (h *GenerateHandler) SelectTool(c *gin.Context) {
	var req selectToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_body", err))
		return
	}
	if err := h.panel.Select(generation.Action(req.Action)); err != nil {
		kind := generation.KindOf(err)
		response.RespondAPIError(c, apierr.New(statusForKind(kind), codeForKind(kind), err))
		return
	}
	response.RespondOK(c, h.panel.State())
}

func statusForKind(kind generation.ErrorKind) int {
	switch {
	case kind == generation.NoToolSelected, kind == generation.InvalidInput:
		return http.StatusBadRequest
	case kind.Remote():
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeForKind(kind generation.ErrorKind) string {
	if kind == "" {
		return "generation_failed"
	}
	return string(kind)
}
