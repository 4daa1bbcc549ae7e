package activity

import (
	"socialboost-core/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("activity.module",
	fx.Provide(NewService, NewHandler),
	fx.Invoke(registerRoutes),
)

type routeParams struct {
	fx.In
	Router  *gin.Engine
	Handler *Handler
}

func registerRoutes(p routeParams) {
	p.Router.GET("/api/activity", middleware.Error(), p.Handler.Feed)
}
