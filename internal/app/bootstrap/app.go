package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/meter-codec/internal/api"
	"github.com/taoyao-code/meter-codec/internal/api/middleware"
	"github.com/taoyao-code/meter-codec/internal/app"
	cfgpkg "github.com/taoyao-code/meter-codec/internal/config"
	"github.com/taoyao-code/meter-codec/internal/health"
	"github.com/taoyao-code/meter-codec/internal/metrics"
	"github.com/taoyao-code/meter-codec/internal/service"
)

// Run 统一启动流程：自检通过后再对外提供 HTTP 服务
func Run(cfg *cfgpkg.Config, log *zap.Logger) error {
	log.Info("starting meter codec server", zap.String("name", cfg.App.Name), zap.String("env", cfg.App.Env))

	// ========== 阶段1: 初始化基础组件 ==========
	reg, codecMetrics := app.NewMetrics()
	metricsHandler := metrics.Handler(reg)
	ready := health.New()
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ========== 阶段2: 构建编解码服务并自检（失败直接返回）==========
	svc, err := service.NewCodecService(cfg.Codec, nil, codecMetrics, log.Named("codec"))
	if err != nil {
		log.Error("codec service initialization failed", zap.Error(err))
		return err
	}
	passed, err := svc.SelfTest()
	if err != nil {
		log.Error("codec self test failed", zap.Int("passed", passed), zap.Error(err))
		return err
	}
	ready.SetCodecReady(true)
	log.Info("codec ready",
		zap.String("direction", cfg.Codec.Direction),
		zap.Bool("seven_bit", cfg.Codec.SevenBit),
		zap.Bool("aes_key", cfg.Codec.AESKey != ""),
		zap.Int("examples_passed", passed),
	)

	// ========== 阶段3: 注册路由并启动HTTP服务 ==========
	httpSrv := app.NewHTTPServer(cfg.HTTP, cfg.Metrics, metricsHandler, ready.Ready)
	healthAgg := app.NewHealthAggregator(svc)

	httpSrv.Register(func(r *gin.Engine) {
		routeCfg := api.RouteConfig{
			Auth: middleware.AuthConfig{
				APIKeys: cfg.API.Auth.APIKeys,
				Enabled: cfg.API.Auth.Enabled,
			},
			RateLimit: middleware.RateLimitConfig{
				Enabled:    cfg.API.RateLimit.Enabled,
				RatePerSec: cfg.API.RateLimit.RatePerSec,
				Burst:      cfg.API.RateLimit.Burst,
			},
			MaxBodyBytes:  cfg.API.MaxBodyBytes,
			OnRateLimited: codecMetrics.RateLimitedTotal.Inc,
		}
		api.RegisterCodecRoutes(r, api.NewCodecHandler(svc, log.Named("api")), routeCfg, log)
		app.RegisterHealthRoutes(r, healthAgg)
	})

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	ready.SetHTTPReady(true)
	log.Info("http server started", zap.String("addr", cfg.HTTP.Addr), zap.Bool("swagger", cfg.HTTP.Swagger))

	// ========== 阶段4: 等待关闭信号 ==========
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		log.Info("received shutdown signal, gracefully shutting down...")
	case err := <-errCh:
		log.Error("http server error", zap.Error(err))
		return err
	}

	ready.SetHTTPReady(false)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warn("http server shutdown error", zap.Error(err))
	}
	log.Info("shutdown complete")
	return nil
}
