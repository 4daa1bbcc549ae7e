package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"socialboost-core/pkg/auth"
	"socialboost-core/pkg/config"
	"socialboost-core/pkg/db"
	"socialboost-core/pkg/health"
	"socialboost-core/pkg/logger"
	"socialboost-core/pkg/redis"
	"socialboost-core/pkg/server"
	"socialboost-core/pkg/task"
	"socialboost-core/services/activity"
	"socialboost-core/services/audit"
	"socialboost-core/services/campaign"
	"socialboost-core/services/notify"
	"socialboost-core/services/trust"
	"socialboost-core/services/user"
	"socialboost-core/services/wallet"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		task.Client,
		task.Server,
		auth.Module,
		health.Module,
		fx.Provide(
			provideTracerProvider,
			provideSnowflakeNode,
		),
		audit.Module,
		user.Module,
		wallet.Module,
		campaign.Module,
		trust.Module,
		activity.Module,
		notify.Module,
		server.ProvideHTTPServer,
		fx.Invoke(
			migrate,
			registerHealthRoutes,
			db.Otel,
			db.Metric,
		),
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideTracerProvider() trace.TracerProvider {
	return otel.GetTracerProvider()
}

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&user.User{},
		&user.LinkedAccount{},
		&campaign.Campaign{},
		&campaign.Completer{},
		&wallet.Transaction{},
		&audit.Log{},
	)
}

func registerHealthRoutes(router *gin.Engine, svc health.HealthService) {
	router.GET("/api/health", svc.Liveness)
	router.GET("/api/health/ready", svc.Readiness)
}
