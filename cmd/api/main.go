package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/jsonfile"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshelf/internal/infrastructure/ratelimit"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/pkg/events"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/response"

	_ "github.com/xiebiao/bookshelf/docs" // swagger文档
)

// @title           Bookshelf API
// @version         1.0
// @description     图书管理服务:JSON文件持久化、组合条件查询、分页和按方法限流
// @BasePath        /

// main 主程序入口
// 说明:手动依赖注入(wire.go提供等价的Wire声明)
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 存储驱动: %s\n", cfg.Storage.Driver)
	fmt.Printf("  - 限流后端: %s\n", cfg.RateLimit.Backend)

	// 2. 初始化Prometheus指标
	metrics.InitMetrics()

	// 3. 按驱动选择集合快照存储
	// 学习要点:领域层只依赖SnapshotStore接口,
	// 换存储实现不需要改动Store的任何代码
	snapshots, err := buildSnapshotStore(cfg)
	if err != nil {
		log.Fatalf("初始化存储失败: %v", err)
	}

	// 4. 装载图书集合(数据文件损坏时拒绝启动,避免静默覆盖数据)
	store, err := book.NewStore(snapshots)
	if err != nil {
		log.Fatalf("装载图书数据失败: %v", err)
	}
	metrics.SetGauge(metrics.BooksLive, float64(store.Count()))

	// 5. 构建限流器
	limiter, err := buildLimiter(cfg)
	if err != nil {
		log.Fatalf("初始化限流器失败: %v", err)
	}

	// 6. 事件发布(可选,默认关闭)
	publisher := buildPublisher(cfg)
	defer publisher.Close()

	// 7. 依赖注入(手动组装)
	// 依赖链:SnapshotStore ← Store ← UseCase ← Handler
	addBooksUseCase := appbook.NewAddBooksUseCase(store, publisher)
	listBooksUseCase := appbook.NewListBooksUseCase(store)
	getBookUseCase := appbook.NewGetBookUseCase(store)
	updateBookUseCase := appbook.NewUpdateBookUseCase(store, publisher)
	deleteBookUseCase := appbook.NewDeleteBookUseCase(store, publisher)

	bookHandler := handler.NewBookHandler(
		addBooksUseCase,
		listBooksUseCase,
		getBookUseCase,
		updateBookUseCase,
		deleteBookUseCase,
	)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(limiter, cfg.RateLimit.KeyByClientIP)

	// 8. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLog())
	r.Use(middleware.Metrics())

	// 9. 注册路由
	registerRoutes(r, bookHandler, rateLimitMiddleware)

	// 10. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   图书列表: GET http://localhost%s/api/books\n", addr)
	fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// buildSnapshotStore 按storage.driver构建快照存储
func buildSnapshotStore(cfg *config.Config) (book.SnapshotStore, error) {
	switch cfg.Storage.Driver {
	case "mysql":
		db, err := mysql.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		return mysql.NewSnapshotStore(db), nil
	default:
		return jsonfile.NewStore(cfg.Storage.Path), nil
	}
}

// buildLimiter 按rate_limit.backend构建限流器
func buildLimiter(cfg *config.Config) (ratelimit.Limiter, error) {
	ceilings := ratelimit.Ceilings{
		http.MethodGet:    cfg.RateLimit.Ceilings.Get,
		http.MethodPost:   cfg.RateLimit.Ceilings.Post,
		http.MethodPut:    cfg.RateLimit.Ceilings.Put,
		http.MethodDelete: cfg.RateLimit.Ceilings.Delete,
	}

	if cfg.RateLimit.Backend == "redis" {
		client, err := redis.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return ratelimit.NewRedisLimiter(client, ceilings, cfg.RateLimit.Window), nil
	}

	return ratelimit.NewMemoryLimiter(ceilings, cfg.RateLimit.Window), nil
}

// buildPublisher 按mq.enabled构建事件发布者
// MQ不可用时降级为空发布者,图书服务本身照常工作
func buildPublisher(cfg *config.Config) events.Publisher {
	if !cfg.MQ.Enabled {
		return events.NewNopPublisher()
	}

	publisher, err := events.NewAMQPPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		log.Printf("连接RabbitMQ失败,事件发布已禁用: %v", err)
		return events.NewNopPublisher()
	}
	return publisher
}

// registerRoutes 注册路由
func registerRoutes(r *gin.Engine, bookHandler *handler.BookHandler, rateLimitMiddleware *middleware.RateLimitMiddleware) {
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
}
