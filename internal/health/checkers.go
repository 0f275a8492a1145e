package health

import (
	"context"
	"sync"
	"time"
)

// Status 健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"   // 健康
	StatusDegraded  Status = "degraded"  // 降级（部分功能受损但仍可服务）
	StatusUnhealthy Status = "unhealthy" // 不健康（无法服务）
)

// CheckResult 健康检查结果
type CheckResult struct {
	Status  Status                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Latency time.Duration          `json:"latency"`
}

// Checker 健康检查器接口；Check 需可并发调用
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}
// SelfTestFunc 编解码自检，返回通过的样例数
type SelfTestFunc func() (int, error)

// CodecChecker 用内置样例往返检验命令表。样例固定，结果缓存 ttl。
type CodecChecker struct {
	selfTest SelfTestFunc
	ttl      time.Duration

	mu      sync.Mutex
	last    CheckResult
	checked time.Time
}

// NewCodecChecker ttl<=0 时每次检查都重新执行
func NewCodecChecker(selfTest SelfTestFunc, ttl time.Duration) *CodecChecker {
	return &CodecChecker{selfTest: selfTest, ttl: ttl}
}

func (c *CodecChecker) Name() string {
	return "codec"
}

func (c *CodecChecker) Check(ctx context.Context) CheckResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl > 0 && !c.checked.IsZero() && time.Since(c.checked) < c.ttl {
		return c.last
	}

	start := time.Now()
	passed, err := c.selfTest()
	result := CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]interface{}{"examples_passed": passed},
		Latency: time.Since(start),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	c.last, c.checked = result, time.Now()
	return result
}

// ReassemblyChecker 未集齐分段的会话数过多时降级
type ReassemblyChecker struct {
	pending  func() int
	degraded int
}

// NewReassemblyChecker degraded 为进入降级状态的会话数阈值
func NewReassemblyChecker(pending func() int, degraded int) *ReassemblyChecker {
	return &ReassemblyChecker{pending: pending, degraded: degraded}
}

func (c *ReassemblyChecker) Name() string {
	return "reassembly"
}

func (c *ReassemblyChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	n := c.pending()
	status, message := StatusHealthy, "ok"
	if c.degraded > 0 && n >= c.degraded {
		status, message = StatusDegraded, "too many incomplete segment sessions"
	}
	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{"pending_sessions": n, "threshold": c.degraded},
		Latency: time.Since(start),
	}
}
