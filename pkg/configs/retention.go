package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultRetentionEnabled     = true
	DefaultRetentionMaxAge      = 24 * time.Hour // 超过该时长未修改的文件会被清理
	DefaultRetentionInterval    = time.Hour      // 清理周期
	DefaultRetentionConcurrency = 8              // 单次清理时并行处理的文件数
)

// RetentionConfig 过期文件清理配置.
// Cron 非空时优先使用 cron 表达式调度，否则按 Interval 周期执行.
type RetentionConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxAge      time.Duration `mapstructure:"max_age"      rule:"gt=0"`
	Interval    time.Duration `mapstructure:"interval"     rule:"gte=0"`
	Cron        string        `mapstructure:"cron"`
	Concurrency int           `mapstructure:"concurrency"  rule:"min=1,max=256"`
	RunOnStart  bool          `mapstructure:"run_on_start"`
}

func (c *RetentionConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("retention.enabled", DefaultRetentionEnabled)
	v.SetDefault("retention.max_age", DefaultRetentionMaxAge)
	v.SetDefault("retention.interval", DefaultRetentionInterval)
	v.SetDefault("retention.cron", "")
	v.SetDefault("retention.concurrency", DefaultRetentionConcurrency)
	v.SetDefault("retention.run_on_start", false)
}
