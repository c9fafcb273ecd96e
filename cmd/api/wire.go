//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如book.NewStore）
// - Injector: 声明最终要构造的目标类型（*gin.Engine）
// - wire.Build(): 告诉Wire如何组装依赖链

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/ratelimit"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
// 包含：配置加载、快照存储、限流器、事件发布者
// buildSnapshotStore/buildLimiter/buildPublisher定义在main.go中，
// 它们按配置在多个实现之间选择，Wire无法自动推导这种分支
var infrastructureSet = wire.NewSet(
	config.Load,        // 加载配置文件
	buildSnapshotStore, // 按storage.driver选择快照存储
	buildLimiter,       // 按rate_limit.backend选择限流器
	buildPublisher,     // 按mq.enabled选择事件发布者
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	book.NewStore, // 图书集合（启动时装载快照）
)

// applicationSet 应用层依赖
// 包含：所有Use Case的构造函数
var applicationSet = wire.NewSet(
	appbook.NewAddBooksUseCase,   // 图书入库用例
	appbook.NewListBooksUseCase,  // 图书列表用例
	appbook.NewGetBookUseCase,    // 图书详情用例
	appbook.NewUpdateBookUseCase, // 图书更新用例
	appbook.NewDeleteBookUseCase, // 图书删除用例
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideRateLimitMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewBookHandler, // 图书处理器
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================

// provideRateLimitMiddleware 从配置提取限流中间件的bool参数
// 教学要点：config.Config包含多个字段，Wire无法自动知道
// NewRateLimitMiddleware的keyByClientIP参数来自哪个字段
func provideRateLimitMiddleware(
	limiter ratelimit.Limiter,
	cfg *config.Config,
) *middleware.RateLimitMiddleware {
	return middleware.NewRateLimitMiddleware(limiter, cfg.RateLimit.KeyByClientIP)
}

// provideGinEngine 创建并配置Gin引擎
// 路由注册直接在函数内完成，避免与main.go中的registerRoutes冲突
func provideGinEngine(
	cfg *config.Config,
	bookHandler *handler.BookHandler,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLog())
	r.Use(middleware.Metrics())

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 图书模块
	api := r.Group("/api")
	api.Use(rateLimitMiddleware.Limit())
	{
		books := api.Group("/books")
		{
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)
			books.POST("", bookHandler.AddBooks)
			books.PUT("/:id", bookHandler.UpdateBook)
			books.DELETE("/:id", bookHandler.DeleteBook)
		}
	}

	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================
// 依赖链：
// *gin.Engine 需要 → *handler.BookHandler
// *handler.BookHandler 需要 → *appbook.AddBooksUseCase 等
// *appbook.AddBooksUseCase 需要 → *book.Store
// *book.Store 需要 → book.SnapshotStore
// book.SnapshotStore 需要 → *config.Config

// InitializeApp 初始化整个应用
// 返回：配置好的Gin引擎
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		// 基础设施层
		infrastructureSet,

		// 领域层
		domainSet,

		// 应用层
		applicationSet,

		// 中间件层
		middlewareSet,

		// 接口层
		handlerSet,

		// Gin引擎
		provideGinEngine,
	)

	// 占位返回值，实际代码由wire_gen.go生成
	return nil, nil
}
