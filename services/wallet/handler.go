package wallet

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

type appendRequest struct {
	UserID      string `json:"userId" binding:"required"`
	Username    string `json:"username"`
	Type        string `json:"type" binding:"required"`
	Amount      int64  `json:"amount" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (h *Handler) Append(c *gin.Context) {
	var req appendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid transaction payload", errutil.WithErr(err)))
		return
	}

	if req.UserID != middleware.CallerID(c) && !middleware.IsAdmin(c) {
		c.Error(errutil.Forbidden("cannot write transactions for another user"))
		return
	}

	t, err := h.service.Append(c.Request.Context(), AppendRequest{
		UserID:      req.UserID,
		Username:    req.Username,
		Type:        TransactionType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		Status:      TransactionStatus(req.Status),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": t})
}

func (h *Handler) List(c *gin.Context) {
	userID := c.Query("userId")
	if !middleware.IsAdmin(c) {
		userID = middleware.CallerID(c)
	}

	transactions, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		c.Error(errutil.Internal("failed to list transactions", errutil.WithErr(err)))
		return
	}
	c.JSON(http.StatusOK, transactions)
}

type purchaseRequest struct {
	Gems int64 `json:"gems" binding:"required"`
}

func (h *Handler) RequestPurchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid purchase payload", errutil.WithErr(err)))
		return
	}

	t, err := h.service.RequestPurchase(c.Request.Context(), middleware.CallerID(c), req.Gems)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": t})
}

type processRequest struct {
	Action string `json:"action" binding:"required"`
}

func (h *Handler) Process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid process payload", errutil.WithErr(err)))
		return
	}

	if err := h.service.ProcessPurchase(c.Request.Context(), c.Param("id"), req.Action); err != nil {
		c.Error(err)
		return
	}

	message := "balance credited"
	if req.Action == ActionReject {
		message = "purchase rejected"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

type adjustRequest struct {
	UserID string `json:"userId" binding:"required"`
	Delta  int64  `json:"delta" binding:"required"`
}

func (h *Handler) AdjustPoints(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid adjustment payload", errutil.WithErr(err)))
		return
	}

	if err := h.service.AdjustPoints(c.Request.Context(),
		middleware.CallerID(c), req.UserID, req.Delta); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
