package ratelimit

import (
	"context"
	"sync"
	"time"
)

// window 单个(路由类别,客户端键)维度的计数窗口
type window struct {
	start time.Time
	count int
}

// MemoryLimiter 进程内存固定窗口限流器
// 设计说明:
// 1. 单互斥锁保护计数表:判定本身是纳秒级的map操作,
//    锁竞争远小于为每个维度单独加锁的复杂度
// 2. now可注入,测试中用假时钟推进窗口,不需要真实sleep
type MemoryLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	ceilings Ceilings
	size     time.Duration
	now      func() time.Time
}

// NewMemoryLimiter 创建内存限流器
// size是计数窗口长度(通常60s)
func NewMemoryLimiter(ceilings Ceilings, size time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		windows:  make(map[string]*window),
		ceilings: ceilings,
		size:     size,
		now:      time.Now,
	}
}

// Allow 固定窗口判定
// 距窗口起点满一个窗口时清零重置;递增后超过上限则拒绝
func (l *MemoryLimiter) Allow(_ context.Context, route, clientKey string) (Decision, error) {
	ceiling := l.ceilings[route]
	if ceiling <= 0 {
		// 该路由类别不限制
		return Decision{Allowed: true}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := route + ":" + clientKey

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.size {
		w = &window{start: now}
		l.windows[key] = w
	}

	w.count++

	if w.count > ceiling {
		return Decision{
			Allowed:    false,
			Limit:      ceiling,
			Remaining:  0,
			RetryAfter: l.size - now.Sub(w.start),
		}, nil
	}

	return Decision{
		Allowed:   true,
		Limit:     ceiling,
		Remaining: ceiling - w.count,
	}, nil
}

// SetNowFunc 注入时钟（测试用）
func (l *MemoryLimiter) SetNowFunc(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
