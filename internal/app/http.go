package app

import (
	"net/http"

	cfgpkg "github.com/taoyao-code/meter-codec/internal/config"
	"github.com/taoyao-code/meter-codec/internal/httpserver"
)

// NewHTTPServer 根据配置创建 HTTP 服务器；指标关闭时不挂载指标路由
func NewHTTPServer(cfg cfgpkg.HTTPConfig, metricsCfg cfgpkg.MetricsConfig, metricsHandler http.Handler, readyFn func() bool) *httpserver.Server {
	if !metricsCfg.Enable {
		metricsHandler = nil
	}
	return httpserver.New(cfg, metricsCfg.Path, metricsHandler, readyFn)
}
