package user

import (
	"time"

	"threaded_comments/internal/domain/user/handler"
	"threaded_comments/internal/domain/user/repository"
	"threaded_comments/internal/domain/user/service"
	"threaded_comments/internal/pkg/invitation"
	"threaded_comments/internal/pkg/middleware"
	"threaded_comments/internal/pkg/registry"
	"threaded_comments/pkg/cache"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 用户模块优先级最高，因为其他模块可能依赖它
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)
	invitations := invitation.NewStore(ctx.Redis, time.Duration(ctx.Config.Invitation.TTLHours)*time.Hour)
	userService := service.NewCachedUserService(
		service.NewUserService(userRepo, invitations),
		cache.NewRedisCache(ctx.Redis, "threaded-comments:"),
	)
	invitationService := service.NewInvitationService(userRepo, invitations, ctx.Mail, ctx.Config.App.FrontendURL)
	userHandler := handler.NewUserHandler(userService, invitationService)

	// 2. 路由注册
	setupRoutes(ctx.API, userHandler, middleware.RateLimitMiddleware(ctx.RateLimiter))

	return nil
}

func setupRoutes(api *gin.RouterGroup, h *handler.UserHandler, limit gin.HandlerFunc) {
	// 公开路由
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", limit, h.Register)
		authGroup.POST("/login", limit, h.Login)
		authGroup.GET("/invitation/:token", h.CheckInvitation)
	}

	// 受保护的路由
	protected := authGroup.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/me", h.Me)
		protected.POST("/invitations", limit, h.Invite)
	}
}
