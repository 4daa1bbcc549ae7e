package wallet

import (
	"socialboost-core/pkg/auth"
	"socialboost-core/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.module",
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
	transactions := p.Router.Group("/api/transactions", middleware.Error(), middleware.Authenticate(p.Auth))
	transactions.GET("", p.Handler.List)
	transactions.POST("", p.Handler.Append)
	transactions.POST("/:id/process", middleware.RequireAdmin(), p.Handler.Process)

	p.Router.POST("/api/wallet/purchase", middleware.Error(), middleware.Authenticate(p.Auth), p.Handler.RequestPurchase)
	p.Router.POST("/api/admin/points", middleware.Error(), middleware.Authenticate(p.Auth), middleware.RequireAdmin(), p.Handler.AdjustPoints)
}
