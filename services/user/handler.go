package user

import (
	"net/http"

	"socialboost-core/pkg/auth"
	"socialboost-core/pkg/errutil"
	"socialboost-core/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	auth    *auth.Manager
}

func NewHandler(service *Service, auth *auth.Manager) *Handler {
	return &Handler{service: service, auth: auth}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid registration payload", errutil.WithErr(err)))
		return
	}

	u, err := h.service.Register(c.Request.Context(), RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		c.Error(err)
		return
	}

	token, err := h.auth.Issue(u.ID, string(u.Role))
	if err != nil {
		c.Error(errutil.Internal("failed to issue session token", errutil.WithErr(err)))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": u, "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid login payload", errutil.WithErr(err)))
		return
	}

	u, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	token, err := h.auth.Issue(u.ID, string(u.Role))
	if err != nil {
		c.Error(errutil.Internal("failed to issue session token", errutil.WithErr(err)))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": u, "token": token})
}

type verifyIdentityRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) VerifyIdentity(c *gin.Context) {
	var req verifyIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid payload", errutil.WithErr(err)))
		return
	}

	if err := h.service.VerifyIdentity(c.Request.Context(), middleware.CallerID(c), req.Email, req.Password); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type securityRequest struct {
	CurrentEmail    string `json:"currentEmail" binding:"required"`
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewEmail        string `json:"newEmail"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) UpdateSecurity(c *gin.Context) {
	id := c.Param("id")
	if id != middleware.CallerID(c) && !middleware.IsAdmin(c) {
		c.Error(errutil.Forbidden("cannot modify another user's credentials"))
		return
	}

	var req securityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid payload", errutil.WithErr(err)))
		return
	}

	if err := h.service.UpdateSecurity(c.Request.Context(), id, SecurityUpdateRequest{
		CurrentEmail:    req.CurrentEmail,
		CurrentPassword: req.CurrentPassword,
		NewEmail:        req.NewEmail,
		NewPassword:     req.NewPassword,
	}); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid payload", errutil.WithErr(err)))
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "verification code sent"})
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid payload", errutil.WithErr(err)))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(errutil.Internal("failed to list users", errutil.WithErr(err)))
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) Get(c *gin.Context) {
	u, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type suspendRequest struct {
	Suspended *bool `json:"suspended" binding:"required"`
}

func (h *Handler) Suspend(c *gin.Context) {
	var req suspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid payload", errutil.WithErr(err)))
		return
	}

	if err := h.service.SetSuspended(c.Request.Context(), c.Param("id"), *req.Suspended); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type linkAccountRequest struct {
	Platform string `json:"platform" binding:"required"`
	URL      string `json:"url" binding:"required"`
}

func (h *Handler) LinkAccount(c *gin.Context) {
	id := c.Param("id")
	if id != middleware.CallerID(c) {
		c.Error(errutil.Forbidden("cannot link accounts for another user"))
		return
	}

	var req linkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid payload", errutil.WithErr(err)))
		return
	}

	account, err := h.service.LinkAccount(c.Request.Context(), id, LinkAccountRequest{
		Platform: req.Platform,
		URL:      req.URL,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "account": account})
}

func (h *Handler) UnlinkAccount(c *gin.Context) {
	id := c.Param("id")
	if id != middleware.CallerID(c) {
		c.Error(errutil.Forbidden("cannot unlink accounts for another user"))
		return
	}

	if err := h.service.UnlinkAccount(c.Request.Context(), id, c.Param("accountId")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VerifyProfile is a stateless structural check used by the client before
// creating campaigns or linking accounts.
func (h *Handler) VerifyProfile(c *gin.Context) {
	var req linkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid payload", errutil.WithErr(err)))
		return
	}

	valid, name := h.service.CheckProfileURL(req.Platform, req.URL)
	message := "URL matches the selected platform"
	if !valid {
		message = "URL does not match the selected platform"
	}
	c.JSON(http.StatusOK, gin.H{
		"isValid":     valid,
		"profileName": name,
		"message":     message,
	})
}
