package main

import (
	"flag"

	"go.uber.org/zap"

	_ "github.com/taoyao-code/meter-codec/internal/api/docs"
	"github.com/taoyao-code/meter-codec/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/meter-codec/internal/config"
	"github.com/taoyao-code/meter-codec/internal/logging"
)

// @title Meter Codec API
// @version 1.0
// @description 计量设备二进制协议编解码服务：链路帧、消息与命令表。
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	configPath := flag.String("config", "", "配置文件路径，留空时读取 METER_CONFIG 或 configs/example.yaml")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// 3) 启动
	if err := bootstrap.Run(cfg, zap.L()); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}
