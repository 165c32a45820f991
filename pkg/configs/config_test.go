package configs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/flarecloud/pkg/configs"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))

	return dir
}

// TestDefault 测试默认配置与参考行为一致.
func TestDefault(t *testing.T) {
	cfg := configs.Default()

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "uploads", cfg.Storage.Root)
	assert.True(t, cfg.Storage.Unbounded())
	assert.Equal(t, 24*time.Hour, cfg.Retention.MaxAge)
	assert.Equal(t, time.Hour, cfg.Retention.Interval)
	assert.True(t, cfg.Retention.Enabled)
	assert.Equal(t, configs.EventsTypeGoChannel, cfg.Events.Type)
	assert.NoError(t, cfg.Validate())
}

// TestLoad_FromDirectory 测试从目录读取 config.yaml.
func TestLoad_FromDirectory(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 8088
storage:
  root: /tmp/flare-data
  max_upload_size: 1048576
retention:
  max_age: 2h
  interval: 5m
`)

	v, err := configs.Load(dir)
	require.NoError(t, err)

	cfg, err := configs.Decode(v)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "/tmp/flare-data", cfg.Storage.Root)
	assert.Equal(t, int64(1048576), cfg.Storage.MaxUploadSize)
	assert.False(t, cfg.Storage.Unbounded())
	assert.Equal(t, 2*time.Hour, cfg.Retention.MaxAge)
	assert.Equal(t, 5*time.Minute, cfg.Retention.Interval)
	// 未配置的键保持默认值
	assert.Equal(t, "public", cfg.Server.StaticDir)
}

// TestLoad_MissingFile 测试没有配置文件时使用默认值.
func TestLoad_MissingFile(t *testing.T) {
	v, err := configs.Load(t.TempDir())
	require.NoError(t, err)

	cfg, err := configs.Decode(v)
	require.NoError(t, err)
	assert.Equal(t, configs.DefaultPort, cfg.Server.Port)
}

// TestLoad_EnvOverride 测试环境变量覆盖配置文件.
func TestLoad_EnvOverride(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 8088\n")

	t.Setenv("FLARECLOUD_SERVER_PORT", "9099")
	t.Setenv("FLARECLOUD_RETENTION_MAX_AGE", "90m")

	v, err := configs.Load(dir)
	require.NoError(t, err)

	cfg, err := configs.Decode(v)
	require.NoError(t, err)
	assert.Equal(t, 9099, cfg.Server.Port)
	assert.Equal(t, 90*time.Minute, cfg.Retention.MaxAge)
}

// TestValidate 测试非法配置被拒绝.
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*configs.AppConfig)
	}{
		{"port out of range", func(c *configs.AppConfig) { c.Server.Port = 70000 }},
		{"zero max age", func(c *configs.AppConfig) { c.Retention.MaxAge = 0 }},
		{"no interval and no cron", func(c *configs.AppConfig) { c.Retention.Interval = 0 }},
		{"empty storage root", func(c *configs.AppConfig) { c.Storage.Root = "" }},
		{"unknown log level", func(c *configs.AppConfig) { c.Log.Level = "loud" }},
		{"unknown events type", func(c *configs.AppConfig) { c.Events.Type = "kafka" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := configs.Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// TestValidate_CronWithoutInterval 测试配置 cron 时允许 interval 为 0.
func TestValidate_CronWithoutInterval(t *testing.T) {
	cfg := configs.Default()
	cfg.Retention.Interval = 0
	cfg.Retention.Cron = "0 * * * *"

	assert.NoError(t, cfg.Validate())
}
