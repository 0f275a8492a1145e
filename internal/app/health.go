package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taoyao-code/meter-codec/internal/health"
	"github.com/taoyao-code/meter-codec/internal/service"
)

// 自检结果缓存时间
const selfTestTTL = time.Minute

// 未集齐分段会话数达到该值时降级
const pendingSegmentsDegraded = 64

// NewHealthAggregator 创建健康检查聚合器
func NewHealthAggregator(svc *service.CodecService) *health.Aggregator {
	return health.NewAggregator(
		health.NewCodecChecker(svc.SelfTest, selfTestTTL),
		health.NewReassemblyChecker(svc.PendingSegments, pendingSegmentsDegraded),
	)
}

// RegisterHealthRoutes 注册健康检查HTTP路由
func RegisterHealthRoutes(r *gin.Engine, aggregator *health.Aggregator) {
	health.RegisterHTTPRoutes(r, aggregator)
}
