package comment

import (
	"threaded_comments/internal/domain/comment/handler"
	"threaded_comments/internal/domain/comment/repository"
	"threaded_comments/internal/domain/comment/service"
	"threaded_comments/internal/pkg/middleware"
	"threaded_comments/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CommentModule 评论和 reaction 模块
type CommentModule struct{}

func init() {
	registry.Register(&CommentModule{})
}

func (m *CommentModule) Name() string {
	return "comment"
}

func (m *CommentModule) Priority() int {
	return 10
}

func (m *CommentModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	commentRepo := repository.NewCommentRepository(ctx.DB)
	reactionRepo := repository.NewReactionRepository(ctx.DB)
	h := handler.NewCommentHandler(
		service.NewCommentService(commentRepo, reactionRepo),
		service.NewReactionService(commentRepo, reactionRepo),
		ctx.Metrics,
	)

	// 2. 路由注册
	setupRoutes(ctx.API, h, middleware.RateLimitMiddleware(ctx.RateLimiter))

	return nil
}

func setupRoutes(api *gin.RouterGroup, h *handler.CommentHandler, limit gin.HandlerFunc) {
	g := api.Group("/comments")

	// Public
	g.GET("", h.ListComments)

	// Requires Login
	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("", limit, h.CreateComment)
		auth.PUT("/:id", limit, h.UpdateComment)
		auth.DELETE("/:id", h.DeleteComment)

		auth.GET("/:id/reaction", h.GetUserReaction)
		auth.POST("/:id/reaction", limit, h.SetReaction)
		auth.POST("/:id/reaction/toggle", limit, h.ToggleReaction)
		auth.DELETE("/:id/reaction", h.RemoveReaction)
	}
}
