package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/taoyao-code/meter-codec/internal/metrics"
)

// NewMetrics 初始化注册表与编解码指标
func NewMetrics() (*prometheus.Registry, *metrics.CodecMetrics) {
	reg := metrics.NewRegistry()
	m := metrics.NewCodecMetrics(reg)
	return reg, m
}
