package middleware

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshelf/internal/infrastructure/ratelimit"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// RateLimitMiddleware 限流中间件
// 设计说明:
// 1. 按HTTP方法划分限流档位,同一方法下所有路径共享计数
// 2. 固定窗口算法,窗口到期后计数归零
// 3. 限流器故障时放行请求(可用性优先于限流精度)
type RateLimitMiddleware struct {
	limiter       ratelimit.Limiter
	keyByClientIP bool
}

// NewRateLimitMiddleware 创建限流中间件
func NewRateLimitMiddleware(limiter ratelimit.Limiter, keyByClientIP bool) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:       limiter,
		keyByClientIP: keyByClientIP,
	}
}

// Limit 执行限流检查
// 使用方式:
//
//	api := r.Group("/api")
//	api.Use(rateLimitMiddleware.Limit())
func (m *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := ratelimit.GlobalKey
		if m.keyByClientIP {
			clientKey = c.ClientIP()
		}

		decision, err := m.limiter.Allow(c.Request.Context(), c.Request.Method, clientKey)
		if err != nil {
			// 教学要点:限流属于保护机制而非业务规则,
			// 后端故障时选择放行而不是拒绝所有请求
			log.Printf("限流检查失败,本次放行: %v", err)
			c.Next()
			return
		}

		if decision.Limit > 0 {
			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", decision.Limit))
			c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))
		}

		if !decision.Allowed {
			metrics.IncCounterVec(metrics.RateLimitRejectedTotal, map[string]string{"route": c.Request.Method})
			if decision.RetryAfter > 0 {
				c.Header("Retry-After", fmt.Sprintf("%d", int(decision.RetryAfter.Seconds())))
			}
			response.ErrorWithCode(c, apperrors.ErrCodeRateLimited, "请求过于频繁,请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
