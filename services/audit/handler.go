package audit

import (
	"net/http"

	"socialboost-core/pkg/errutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	logs, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(errutil.Internal("failed to list audit logs", errutil.WithErr(err)))
		return
	}
	c.JSON(http.StatusOK, logs)
}

type createRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Username string `json:"username"`
	Action   string `json:"action" binding:"required"`
	Details  string `json:"details"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid audit log payload", errutil.WithErr(err)))
		return
	}

	if err := h.service.Record(c.Request.Context(), req.UserID, req.Username, req.Action, req.Details); err != nil {
		c.Error(errutil.Internal("failed to record audit log", errutil.WithErr(err)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
