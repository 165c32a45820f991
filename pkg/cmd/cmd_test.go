package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/flarecloud/pkg/configs"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configPath = "."
		debug = false
	})

	require.NoError(t, rootCmd.Execute())

	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.True(t, strings.HasPrefix(out, configs.AppName+" "+configs.AppVersion))
}

func TestMQListCommand(t *testing.T) {
	out := execute(t, "mq", "ls")

	for _, typ := range []configs.EventsType{configs.EventsTypeGoChannel, configs.EventsTypeNATS, configs.EventsTypeRedis} {
		assert.Contains(t, out, string(typ))
	}
}

func TestConfigDebugCommand(t *testing.T) {
	out := execute(t, "config", "debug", "--config", filepath.Join(t.TempDir(), "missing"))

	var cfg configs.AppConfig
	require.NoError(t, sonic.UnmarshalString(out, &cfg))
	assert.Equal(t, configs.DefaultPort, cfg.Server.Port)
	assert.Equal(t, configs.DefaultStorageRoot, cfg.Storage.Root)
}

func TestConfigPathCommand_NoFile(t *testing.T) {
	out := execute(t, "config", "path", "--config", t.TempDir())
	assert.Contains(t, out, "no config file used")
}
