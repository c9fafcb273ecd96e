// Package ratelimit 提供按路由类别的固定窗口限流
//
// 计数维度是(路由类别, 客户端键):路由类别即HTTP方法(GET/POST/PUT/DELETE),
// 客户端键默认是全局单键,按配置可切换为客户端IP。
// 每个计数维度维护一个计数器和窗口起点:距窗口起点满一个窗口时
// 计数清零并重置窗口起点;计数超过该路由类别的上限时拒绝请求,
// 且不执行底层操作。
package ratelimit

import (
	"context"
	"time"
)

// GlobalKey 未按调用方区分时使用的全局客户端键
const GlobalKey = "global"

// Ceilings 各路由类别在一个窗口内允许的请求数上限
// 键为HTTP方法,值为上限;0或缺失表示该类别不限制
type Ceilings map[string]int

// Decision 单次限流判定结果
type Decision struct {
	Allowed    bool          // 是否放行
	Limit      int           // 该路由类别的上限(0=不限制)
	Remaining  int           // 当前窗口剩余额度
	RetryAfter time.Duration // 拒绝时距窗口重置的时间
}

// Limiter 限流器接口
// 实现:memory(默认,单进程内存计数)、redis(多实例共享计数)
type Limiter interface {
	// Allow 对一次请求做限流判定并消耗额度
	// 判定为拒绝时调用方不得执行底层操作
	Allow(ctx context.Context, route, clientKey string) (Decision, error)
}
