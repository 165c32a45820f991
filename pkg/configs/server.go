package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPort            = 3000             // 监听端口
	DefaultHost            = "0.0.0.0"        // 监听地址
	DefaultReloadConfig    = true             // 是否启用配置热重载
	DefaultDebug           = false            // 是否启用调试模式
	DefaultTimeout         = 30               // 读取请求头超时时间，单位秒
	DefaultShutdownTimeout = 30 * time.Second // 优雅关闭等待时间
	DefaultStaticDir       = "public"         // 静态资源目录
	DefaultSwagger         = false            // 是否提供 /swagger 文档
)

type (
	// ServerConfig 服务器配置.
	ServerConfig struct {
		Port            int           `mapstructure:"port"             rule:"min=1,max=65535"`
		Host            string        `mapstructure:"host"             rule:"omitempty,ip|hostname"`
		ReloadConfig    bool          `mapstructure:"reload_config"`
		Debug           bool          `mapstructure:"debug"`
		Timeout         int           `mapstructure:"timeout"          rule:"min=1,max=300"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" rule:"gt=0"`
		StaticDir       string        `mapstructure:"static_dir"`
		CORSOrigins     []string      `mapstructure:"cors_origins"`
		Swagger         bool          `mapstructure:"swagger"`
	}
)

// GetTimeoutDuration 返回超时时间作为time.Duration.
func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// setDefaults 设置服务器配置的默认值.
func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.reload_config", DefaultReloadConfig)
	v.SetDefault("server.debug", DefaultDebug)
	v.SetDefault("server.timeout", DefaultTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("server.static_dir", DefaultStaticDir)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.swagger", DefaultSwagger)
}
