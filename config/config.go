package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ceyewan/genesis/clog"
	"github.com/ceyewan/genesis/config"
)

// Config dworld 服务配置
type Config struct {
	// 服务基础配置
	Service struct {
		Name     string `mapstructure:"name"`      // 服务名称
		HTTPPort int    `mapstructure:"http_port"` // HTTP 服务端口
		BaseURL  string `mapstructure:"base_url"`  // 媒体定位符补全用的对外源地址
	} `mapstructure:"service"`

	// 鉴权配置（单一静态共享密钥）
	Auth AuthConfig `mapstructure:"auth"`

	// 世界核心配置
	World WorldConfig `mapstructure:"world"`

	// 限流配置
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`

	// 日志配置
	Log clog.Config `mapstructure:"log"`
}

// AuthConfig 鉴权配置
type AuthConfig struct {
	Token string `mapstructure:"token"` // Bearer 共享密钥
}

// WorldConfig 世界核心配置
type WorldConfig struct {
	LivenessWindow time.Duration `mapstructure:"liveness_window"` // 活跃窗口
	MediaMaxBytes  int           `mapstructure:"media_max_bytes"` // 内联媒体解码后上限
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`  // 媒体清扫周期
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Rate  float64 `mapstructure:"rate"`  // 每秒令牌数
	Burst int     `mapstructure:"burst"` // 突发额度
}

// GetName 服务名，默认 "dworld"
func (c *Config) GetName() string {
	if c.Service.Name != "" {
		return c.Service.Name
	}
	return "dworld"
}

// GetHTTPPort HTTP 端口，默认 8080
func (c *Config) GetHTTPPort() int {
	if c.Service.HTTPPort > 0 && c.Service.HTTPPort < 65536 {
		return c.Service.HTTPPort
	}
	return 8080
}

// GetHTTPAddr HTTP 绑定地址
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.GetHTTPPort())
}

// GetBaseURL 对外源地址，默认本机端口
func (c *Config) GetBaseURL() string {
	if c.Service.BaseURL != "" {
		return c.Service.BaseURL
	}
	return fmt.Sprintf("http://localhost:%d", c.GetHTTPPort())
}

// GetLivenessWindow 活跃窗口，默认 5 分钟
func (c *WorldConfig) GetLivenessWindow() time.Duration {
	if c.LivenessWindow > 0 {
		return c.LivenessWindow
	}
	return 5 * time.Minute
}

// GetMediaMaxBytes 媒体上限，默认 10 MiB
func (c *WorldConfig) GetMediaMaxBytes() int {
	if c.MediaMaxBytes > 0 {
		return c.MediaMaxBytes
	}
	return 10 << 20
}

// GetSweepInterval 清扫周期，默认一小时
func (c *WorldConfig) GetSweepInterval() time.Duration {
	if c.SweepInterval > 0 {
		return c.SweepInterval
	}
	return time.Hour
}

// GetRate 限流速率，默认每秒 50
func (c *RateLimitConfig) GetRate() float64 {
	if c.Rate > 0 {
		return c.Rate
	}
	return 50
}

// GetBurst 突发额度，默认 100
func (c *RateLimitConfig) GetBurst() int {
	if c.Burst > 0 {
		return c.Burst
	}
	return 100
}

// Load 创建并加载配置
// 配置加载顺序：环境变量 > .env > dworld.{env}.yaml > dworld.yaml
func Load() (*Config, error) {
	loader, err := config.New(&config.Config{
		Name:      "dworld",
		FileType:  "yaml",
		Paths:     []string{"./configs"},
		EnvPrefix: "DWORLD",
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := loader.Load(ctx); err != nil {
		return nil, err
	}

	var cfg Config
	if err := loader.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if os.Getenv("DEBUG_CONFIG") == "true" || os.Getenv("DWORLD_DEBUG_CONFIG") == "true" {
		dumpConfig(&cfg)
	}

	return &cfg, nil
}

// dumpConfig 以 JSON 格式打印配置（脱敏共享密钥）
func dumpConfig(cfg *Config) {
	sanitized := *cfg
	if sanitized.Auth.Token != "" {
		sanitized.Auth.Token = "***"
	}

	data, _ := json.MarshalIndent(sanitized, "", "  ")
	fmt.Fprintf(os.Stderr, "\n=== dworld Configuration ===\n%s\n=== End of Configuration ===\n\n", data)
}
