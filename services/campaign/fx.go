package campaign

import (
	"socialboost-core/pkg/auth"
	"socialboost-core/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("campaign.module",
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
	g := p.Router.Group("/api/campaigns", middleware.Error(), middleware.Authenticate(p.Auth))
	g.GET("", p.Handler.List)
	g.POST("", p.Handler.Create)
	g.POST("/:id/complete", p.Handler.Complete)
}
