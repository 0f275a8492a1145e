package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/meter-codec/internal/api/middleware"
)

// RouteConfig API 路由中间件配置
type RouteConfig struct {
	Auth         middleware.AuthConfig
	RateLimit    middleware.RateLimitConfig
	MaxBodyBytes int64
	// OnRateLimited 每次限流拒绝时调用，可为 nil
	OnRateLimited func()
}

// RegisterCodecRoutes 注册编解码路由
func RegisterCodecRoutes(r *gin.Engine, handler *CodecHandler, cfg RouteConfig, logger *zap.Logger) {
	if r == nil || handler == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	api := r.Group("/api/v1")
	api.Use(middleware.RequestTracing(), middleware.CORS())
	if cfg.MaxBodyBytes > 0 {
		api.Use(maxBodyBytes(cfg.MaxBodyBytes))
	}
	api.Use(middleware.RateLimit(cfg.RateLimit, cfg.OnRateLimited))
	if cfg.Auth.Enabled {
		api.Use(middleware.APIKeyAuth(cfg.Auth, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(cfg.Auth.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	frames := api.Group("/frames")
	{
		frames.POST("/decode", handler.DecodeFrame)
		frames.POST("/encode", handler.EncodeFrame)
		frames.POST("/scan", handler.ScanFrames)
	}
	messages := api.Group("/messages")
	{
		messages.POST("/decode", handler.DecodeMessage)
		messages.POST("/encode", handler.EncodeMessage)
	}
	api.GET("/commands", handler.ListCommands)

	logger.Info("codec routes registered", zap.Int("endpoints", 6))
}

// maxBodyBytes 限制请求体大小，超限时 JSON 绑定失败返回 400
func maxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
