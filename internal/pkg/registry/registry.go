package registry

import (
	"fmt"
	"sort"

	"threaded_comments/internal/pkg/config"
	"threaded_comments/internal/pkg/middleware"
	"threaded_comments/internal/pkg/worker"
	"threaded_comments/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine
	API    *gin.RouterGroup // /api 前缀

	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.MetricsCollector
	Mail        worker.Enqueuer
	RateLimiter *middleware.IPRateLimiter // 写接口共用
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	Priority() int
}

// moduleRegistry 全局模块注册表
var moduleRegistry = make(map[string]Module)

// Register 注册模块，同名模块重复注册直接 panic
func Register(module Module) {
	if _, dup := moduleRegistry[module.Name()]; dup {
		panic(fmt.Sprintf("registry: module %q registered twice", module.Name()))
	}
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	return moduleRegistry
}

// sorted 按优先级排序，优先级相同按名称，保证顺序稳定
func sorted(registered map[string]Module) []Module {
	modules := make([]Module, 0, len(registered))
	for _, m := range registered {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})
	return modules
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	for _, module := range sorted(moduleRegistry) {
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
		if ctx.Logger != nil {
			ctx.Logger.Info("Module initialized", zap.String("module", module.Name()))
		}
	}
	return nil
}
