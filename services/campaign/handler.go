package campaign

import (
	"net/http"

	"socialboost-core/pkg/errutil"
	"socialboost-core/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Platform    string `json:"platform" binding:"required"`
	Type        string `json:"type"`
	Speed       string `json:"speed"`
	URL         string `json:"url" binding:"required"`
	TargetCount int    `json:"targetCount" binding:"required"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid campaign payload", errutil.WithErr(err)))
		return
	}

	if req.Type == "" {
		req.Type = string(TypeFollow)
	}
	if req.Speed == "" {
		req.Speed = string(SpeedNormal)
	}

	created, err := h.service.Create(c.Request.Context(), CreateRequest{
		OwnerID:     middleware.CallerID(c),
		Platform:    req.Platform,
		Type:        Type(req.Type),
		Speed:       Speed(req.Speed),
		URL:         req.URL,
		TargetCount: req.TargetCount,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "campaign": created})
}

func (h *Handler) Complete(c *gin.Context) {
	completer, err := h.service.RegisterCompletion(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "task completed, gems earned",
		"completer": completer,
	})
}

func (h *Handler) List(c *gin.Context) {
	filter := ListFilter{
		ActiveOnly: c.Query("active") == "true",
		Platform:   c.Query("platform"),
		OwnerID:    c.Query("userId"),
	}

	campaigns, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(errutil.Internal("failed to list campaigns", errutil.WithErr(err)))
		return
	}
	c.JSON(http.StatusOK, campaigns)
}
