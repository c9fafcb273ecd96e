package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// RedisLimiter 基于Redis的固定窗口限流器
// 设计说明:
// 1. 计数键 ratelimit:{route}:{client},INCR递增;
//    首次计数时设置窗口长度的过期时间,过期即窗口重置
// 2. 计数在Redis侧共享,多实例部署时各实例看到同一份额度
// 3. Redis故障时返回错误,由中间件决定放行策略
type RedisLimiter struct {
	client   *redis.Client
	ceilings Ceilings
	size     time.Duration
}

// NewRedisLimiter 创建Redis限流器
func NewRedisLimiter(client *redis.Client, ceilings Ceilings, size time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		ceilings: ceilings,
		size:     size,
	}
}

// Allow 固定窗口判定
func (l *RedisLimiter) Allow(ctx context.Context, route, clientKey string) (Decision, error) {
	ceiling := l.ceilings[route]
	if ceiling <= 0 {
		return Decision{Allowed: true}, nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", route, clientKey)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, apperrors.WrapWithCode(apperrors.ErrCodeRedisError, err, "限流计数失败")
	}

	// 首次计数时启动窗口;ExpireNX保证窗口起点不被后续请求顺延
	if count == 1 {
		if err := l.client.ExpireNX(ctx, key, l.size).Err(); err != nil {
			return Decision{}, apperrors.WrapWithCode(apperrors.ErrCodeRedisError, err, "设置限流窗口失败")
		}
	}

	if count > int64(ceiling) {
		retryAfter := l.size
		if ttl, err := l.client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			retryAfter = ttl
		}
		return Decision{
			Allowed:    false,
			Limit:      ceiling,
			Remaining:  0,
			RetryAfter: retryAfter,
		}, nil
	}

	remaining := ceiling - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   true,
		Limit:     ceiling,
		Remaining: remaining,
	}, nil
}
