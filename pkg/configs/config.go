// Package configs 管理应用程序配置，包括服务器、存储目录、过期清理、日志、监控和事件的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv），环境变量覆盖并启用热重载.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing retention config:
//
//	config := configs.GetConfig()
//	fmt.Println("max age:", config.Retention.MaxAge)
//
// 环境变量使用 FLARECLOUD_ 前缀，层级以下划线分隔，例如 FLARECLOUD_SERVER_PORT=8080.
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yeisme/flarecloud/pkg/rule"
)

const (
	// EnvPrefix 环境变量前缀.
	EnvPrefix = "FLARECLOUD"
	// AppName 应用名称.
	AppName = "flarecloud"
	// AppVersion 应用版本.
	AppVersion = "1.0.0"
)

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 服务器配置，端口、静态目录等
		Storage        StorageConfig        `mapstructure:"storage"`         // StorageConfig 文件存储目录配置
		Retention      RetentionConfig      `mapstructure:"retention"`       // RetentionConfig 过期文件清理配置
		Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 监控配置
		Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 追踪配置
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // RateLimitConfig 限流配置
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // CircuitBreakerConfig 熔断配置
		Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 文件事件发布配置
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
	// reloadHooks 配置热重载后的回调.
	reloadHooks []func(*AppConfig)
	hooksMu     sync.Mutex
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// path 可以是配置文件或所在目录；找不到配置文件时仅使用默认值与环境变量.
func InitConfig(path string) error {
	v, err := Load(path)
	if err != nil {
		return err
	}

	appViper = v

	if err := v.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := globalConfig.Validate(); err != nil {
		return err
	}

	reloadConfigs(v, globalConfig.Server.ReloadConfig)

	return nil
}

// Load 创建并读取一个 Viper 实例，不修改全局配置.
func Load(path string) (*viper.Viper, error) {
	v := viper.New()
	// 设置默认值
	setAllDefaults(v)

	if path == "" {
		path = "."
	}

	// 检查path是否是文件
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，使用SetConfigFile，Viper会自动检测类型
		v.SetConfigFile(path)
	} else {
		// 是目录，设置配置名和路径
		v.SetConfigName("config")
		v.AddConfigPath(path)
		v.AddConfigPath(filepath.Join(path, "configs"))

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				v.SetConfigFile(cfg)

				break
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置，没有配置文件时使用默认值
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

// Decode 从 Viper 实例解析并校验配置.
func Decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default 返回仅由默认值构成的配置，便于测试和命令行子命令使用.
func Default() *AppConfig {
	v := viper.New()
	setAllDefaults(v)

	var cfg AppConfig
	_ = v.Unmarshal(&cfg)

	return &cfg
}

// Validate 使用 rule 标签校验配置，并检查字段间的约束.
func (c *AppConfig) Validate() error {
	if err := rule.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Retention.Enabled && c.Retention.Cron == "" && c.Retention.Interval <= 0 {
		return fmt.Errorf("invalid config: retention.interval must be positive when retention.cron is empty")
	}

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var serverConfig ServerConfig

	var storageConfig StorageConfig

	var retentionConfig RetentionConfig

	var logConfig LogConfig

	var metricsConfig MetricsConfig

	var tracingConfig TracingConfig

	var rateLimitConfig RateLimitConfig

	var circuitBreakerConfig CircuitBreakerConfig

	var eventsConfig EventsConfig

	serverConfig.setDefaults(v)
	storageConfig.setDefaults(v)
	retentionConfig.setDefaults(v)
	logConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	rateLimitConfig.setDefaults(v)
	circuitBreakerConfig.setDefaults(v)
	eventsConfig.setDefaults(v)
}

// OnReload 注册配置热重载后的回调，例如重新应用日志级别.
func OnReload(fn func(*AppConfig)) {
	hooksMu.Lock()
	defer hooksMu.Unlock()

	reloadHooks = append(reloadHooks, fn)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload || v.ConfigFileUsed() == "" {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)
		fmt.Println("Reloading configuration...")

		var next AppConfig
		if err := v.Unmarshal(&next); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
			return
		}

		if err := next.Validate(); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
			return
		}

		globalConfig = next

		hooksMu.Lock()
		hooks := append([]func(*AppConfig){}, reloadHooks...)
		hooksMu.Unlock()

		for _, fn := range hooks {
			fn(&globalConfig)
		}
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

// GetViper 返回全局 Viper 实例.
func GetViper() *viper.Viper {
	return appViper
}
