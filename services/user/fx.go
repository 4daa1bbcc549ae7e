package user

import (
	"socialboost-core/pkg/auth"
	"socialboost-core/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("user.module",
	fx.Provide(NewService, NewHandler),
	fx.Invoke(registerRoutes),
)

type routeParams struct {
	fx.In
	Router  *gin.Engine
	Auth    *auth.Manager
	Handler *Handler
}

func registerRoutes(p routeParams) {
	authGroup := p.Router.Group("/api/auth", middleware.Error())
	authGroup.POST("/register", p.Handler.Register)
	authGroup.POST("/login", p.Handler.Login)
	authGroup.POST("/forgot-password", p.Handler.ForgotPassword)
	authGroup.POST("/reset-password", p.Handler.ResetPassword)
	authGroup.POST("/verify-identity", middleware.Authenticate(p.Auth), p.Handler.VerifyIdentity)

	p.Router.POST("/api/verify-profile", middleware.Error(), p.Handler.VerifyProfile)

	users := p.Router.Group("/api/users", middleware.Error(), middleware.Authenticate(p.Auth))
	users.GET("", middleware.RequireAdmin(), p.Handler.List)
	users.GET("/:id", p.Handler.Get)
	users.PUT("/:id/security", p.Handler.UpdateSecurity)
	users.PUT("/:id/suspend", middleware.RequireAdmin(), p.Handler.Suspend)
	users.POST("/:id/accounts", p.Handler.LinkAccount)
	users.DELETE("/:id/accounts/:accountId", p.Handler.UnlinkAccount)
}
