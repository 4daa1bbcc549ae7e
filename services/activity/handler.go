package activity

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

func (h *Handler) Feed(c *gin.Context) {
	entries, err := h.service.Feed(c.Request.Context())
	if err != nil {
		c.Error(errutil.Internal("failed to load activity feed", errutil.WithErr(err)))
		return
	}
	c.JSON(http.StatusOK, entries)
}
