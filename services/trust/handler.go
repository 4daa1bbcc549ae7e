package trust

import (
	"net/http"

	"socialboost-core/pkg/errutil"
	"socialboost-core/pkg/middleware"
	"socialboost-core/services/campaign"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type rateRequest struct {
	CampaignID  string `json:"campaignId" binding:"required"`
	CompleterID string `json:"completerId" binding:"required"`
	Rating      string `json:"rating" binding:"required"`
}

func (h *Handler) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid rating payload", errutil.WithErr(err)))
		return
	}

	result, err := h.service.Rate(c.Request.Context(), middleware.CallerID(c),
		req.CampaignID, req.CompleterID, campaign.Rating(req.Rating))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    result.Message,
		"trustScore": result.TrustScore,
	})
}

func (h *Handler) Eligibility(c *gin.Context) {
	eligibility, err := h.service.RewardEligibility(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, eligibility)
}

func (h *Handler) Claim(c *gin.Context) {
	result, err := h.service.ClaimReward(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reward": result})
}
