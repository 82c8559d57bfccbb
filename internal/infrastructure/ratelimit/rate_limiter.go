package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter 速率限制器
// 下载器用它来合并进度上报(不是每行输出都写注册表),
// 同步客户端用它约束轮询频率
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter 创建QPS限制器
// qps为0或负数时不限制
func NewRateLimiter(qps int) *RateLimiter {
	if qps <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(qps), qps)}
}

// NewIntervalLimiter 创建按最小间隔放行的限制器
// 相邻两次Allow之间至少间隔interval,突发不累积
func NewIntervalLimiter(interval time.Duration) *RateLimiter {
	if interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Allow 检查是否允许当前事件,不阻塞
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait 阻塞等待直到获得令牌或ctx取消
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
