package trust

import (
	"socialboost-core/pkg/auth"
	"socialboost-core/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("trust.module",
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
	p.Router.POST("/api/campaigns/rate", middleware.Error(), middleware.Authenticate(p.Auth), p.Handler.Rate)

	g := p.Router.Group("/api/trust", middleware.Error(), middleware.Authenticate(p.Auth))
	g.GET("/reward", p.Handler.Eligibility)
	g.POST("/reward/claim", p.Handler.Claim)
}
