package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	Swagger      bool          `mapstructure:"swagger"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置；File.Filename 为空时只输出到控制台
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// CodecConfig 编解码默认参数
type CodecConfig struct {
	Direction    string `mapstructure:"direction"`    // auto|downlink|uplink
	AESKey       string `mapstructure:"aesKey"`       // 16 字节密钥的 hex，空表示不支持加密级别
	SevenBit     bool   `mapstructure:"sevenBit"`     // 链路帧 7 位模式
	BytesFormat  string `mapstructure:"bytesFormat"`  // hex|base64
	MaxFrameLen  int    `mapstructure:"maxFrameLen"`  // 流式拆帧上限
	HardwareType int    `mapstructure:"hardwareType"` // 默认硬件类型，<0 表示不提供
}

// AuthConfig API Key 认证
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	APIKeys []string `mapstructure:"apiKeys"`
}

// RateLimitConfig 令牌桶限流
type RateLimitConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	RatePerSec int  `mapstructure:"ratePerSec"`
	Burst      int  `mapstructure:"burst"`
}

// APIConfig 对外 API
type APIConfig struct {
	Auth         AuthConfig      `mapstructure:"auth"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
	MaxBodyBytes int64           `mapstructure:"maxBodyBytes"`
}

// Config 顶层配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Codec   CodecConfig   `mapstructure:"codec"`
	API     APIConfig     `mapstructure:"api"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 METER_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	// 环境变量覆盖：前缀 METER_，并将点号替换为下划线
	v.SetEnvPrefix("METER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	// 默认值
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "meter-codec")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")
	v.SetDefault("http.swagger", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/meter-codec.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("codec.direction", "auto")
	v.SetDefault("codec.aesKey", "")
	v.SetDefault("codec.sevenBit", false)
	v.SetDefault("codec.bytesFormat", "hex")
	v.SetDefault("codec.maxFrameLen", 1024)
	v.SetDefault("codec.hardwareType", -1)

	v.SetDefault("api.auth.enabled", false)
	v.SetDefault("api.auth.apiKeys", []string{})
	v.SetDefault("api.rateLimit.enabled", true)
	v.SetDefault("api.rateLimit.ratePerSec", 100)
	v.SetDefault("api.rateLimit.burst", 200)
	v.SetDefault("api.maxBodyBytes", 1<<20)
}
