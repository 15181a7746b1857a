package common

import (
	"context"

	"threaded_comments/internal/domain/common/handler"
	"threaded_comments/internal/pkg/registry"

	_ "threaded_comments/docs" // swagger 文档

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	sqlDB, err := ctx.DB.DB()
	if err != nil {
		return err
	}

	checks := map[string]handler.Pinger{
		"database": sqlDB,
		"redis": handler.PingFunc(func(c context.Context) error {
			return ctx.Redis.Ping(c).Err()
		}),
	}
	setupRoutes(ctx.Router, handler.NewHealthHandler(checks, ctx.Logger))
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.HealthHandler) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
