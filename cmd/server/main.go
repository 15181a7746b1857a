package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "threaded_comments/internal/domain/comment"
	_ "threaded_comments/internal/domain/common"
	_ "threaded_comments/internal/domain/user"
	"threaded_comments/internal/pkg/config"
	"threaded_comments/internal/pkg/mailer"
	"threaded_comments/internal/pkg/middleware"
	"threaded_comments/internal/pkg/registry"
	"threaded_comments/internal/pkg/worker"
	"threaded_comments/pkg/database"
	"threaded_comments/pkg/logger"
	"threaded_comments/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// @title           Threaded Comments API
// @version         1.0
// @description     Threaded comments with like/dislike reactions.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := &config.GlobalConfig

	zlog, err := logger.Init(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDatabase(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zlog.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := database.InitRedis(rootCtx, cfg.Redis)
	if err != nil {
		zlog.Fatal("Failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	metrics.InitMetrics()
	collector := metrics.GetGlobalCollector()
	go database.NewPoolMonitor(sqlDB, collector, zlog, 15*time.Second).Run(rootCtx)

	// 邀请邮件异步发送
	mailPool := worker.NewWorkerPool(mailer.NewSender(cfg.Mail, zlog), cfg.Mail.Workers, cfg.Mail.Queue, zlog, collector)
	mailPool.Start()

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.QPS), cfg.RateLimit.Burst)
	go cleanupLimiter(rootCtx, limiter, zlog)

	r := gin.New()
	r.Use(
		middleware.RecoveryMiddleware(),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(collector),
		middleware.SecurityHeadersMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-Trace-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	moduleCtx := &registry.ModuleContext{
		DB:          db,
		Redis:       rdb,
		Router:      r,
		API:         r.Group("/api"),
		Config:      cfg,
		Logger:      zlog,
		Metrics:     collector,
		Mail:        mailPool,
		RateLimiter: limiter,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		zlog.Fatal("Failed to init modules", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zlog.Info("Server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}

	cancel()
	// 等正在发送的邮件结束
	mailPool.Stop()
	zlog.Info("Server exited")
}

// cleanupLimiter 定期清理长时间不活跃的 IP
func cleanupLimiter(ctx context.Context, limiter *middleware.IPRateLimiter, zlog *zap.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := limiter.Cleanup(10 * time.Minute); n > 0 {
				zlog.Debug("Rate limiter entries evicted", zap.Int("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}
