package audit

import (
	"socialboost-core/pkg/auth"
	"socialboost-core/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.module",
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
	g := p.Router.Group("/api/audit-logs", middleware.Error(), middleware.Authenticate(p.Auth))
	g.GET("", middleware.RequireAdmin(), p.Handler.List)
	g.POST("", p.Handler.Create)
}
