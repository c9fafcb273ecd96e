package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	ceilings := Ceilings{
		http.MethodGet:    10,
		http.MethodPut:    5,
		http.MethodDelete: 3,
		http.MethodPost:   0, // 不限制
	}

	t.Run("窗口内前N次放行第N加1次拒绝", func(t *testing.T) {
		limiter := NewMemoryLimiter(ceilings, time.Minute)

		for i := 0; i < 5; i++ {
			decision, err := limiter.Allow(ctx, http.MethodPut, GlobalKey)
			require.NoError(t, err)
			assert.True(t, decision.Allowed, "第%d次应放行", i+1)
			assert.Equal(t, 5-(i+1), decision.Remaining)
		}

		decision, err := limiter.Allow(ctx, http.MethodPut, GlobalKey)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Positive(t, decision.RetryAfter)
	})

	t.Run("上限为0的路由类别不限制", func(t *testing.T) {
		limiter := NewMemoryLimiter(ceilings, time.Minute)

		for i := 0; i < 100; i++ {
			decision, err := limiter.Allow(ctx, http.MethodPost, GlobalKey)
			require.NoError(t, err)
			assert.True(t, decision.Allowed)
		}
	})

	t.Run("不同路由类别独立计数", func(t *testing.T) {
		limiter := NewMemoryLimiter(ceilings, time.Minute)

		// 打满DELETE的窗口
		for i := 0; i < 3; i++ {
			_, err := limiter.Allow(ctx, http.MethodDelete, GlobalKey)
			require.NoError(t, err)
		}
		decision, err := limiter.Allow(ctx, http.MethodDelete, GlobalKey)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)

		// GET不受影响
		decision, err = limiter.Allow(ctx, http.MethodGet, GlobalKey)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})

	t.Run("不同客户端键独立计数", func(t *testing.T) {
		limiter := NewMemoryLimiter(ceilings, time.Minute)

		for i := 0; i < 3; i++ {
			_, err := limiter.Allow(ctx, http.MethodDelete, "10.0.0.1")
			require.NoError(t, err)
		}
		decision, err := limiter.Allow(ctx, http.MethodDelete, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)

		decision, err = limiter.Allow(ctx, http.MethodDelete, "10.0.0.2")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})

	t.Run("窗口到期后计数重置", func(t *testing.T) {
		limiter := NewMemoryLimiter(ceilings, time.Minute)

		current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		limiter.SetNowFunc(func() time.Time { return current })

		for i := 0; i < 3; i++ {
			_, err := limiter.Allow(ctx, http.MethodDelete, GlobalKey)
			require.NoError(t, err)
		}
		decision, err := limiter.Allow(ctx, http.MethodDelete, GlobalKey)
		require.NoError(t, err)
		require.False(t, decision.Allowed)

		// 推进假时钟跨过窗口边界
		current = current.Add(time.Minute)

		decision, err = limiter.Allow(ctx, http.MethodDelete, GlobalKey)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "新窗口应重新计数")
		assert.Equal(t, 2, decision.Remaining)
	})

	t.Run("窗口中途不重置", func(t *testing.T) {
		limiter := NewMemoryLimiter(ceilings, time.Minute)

		current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		limiter.SetNowFunc(func() time.Time { return current })

		for i := 0; i < 3; i++ {
			_, err := limiter.Allow(ctx, http.MethodDelete, GlobalKey)
			require.NoError(t, err)
		}

		current = current.Add(30 * time.Second)

		decision, err := limiter.Allow(ctx, http.MethodDelete, GlobalKey)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, 30*time.Second, decision.RetryAfter)
	})
}
