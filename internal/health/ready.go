package health

import "sync/atomic"

// Readiness 就绪状态聚合（命令表、HTTP）
type Readiness struct {
	codecReady atomic.Bool
	httpReady  atomic.Bool
}

func New() *Readiness { return &Readiness{} }

func (r *Readiness) SetCodecReady(v bool) { r.codecReady.Store(v) }
func (r *Readiness) SetHTTPReady(v bool)  { r.httpReady.Store(v) }

// Ready 总体就绪：各子系统均为 true
func (r *Readiness) Ready() bool {
	return r.codecReady.Load() && r.httpReady.Load()
}
