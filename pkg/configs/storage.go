package configs

import "github.com/spf13/viper"

const (
	DefaultStorageRoot        = "uploads" // 文件存储根目录
	DefaultMaxUploadSize      = 0         // 单次上传最大字节数，0 表示不限制
	DefaultMaxMultipartMemory = 32 << 20  // multipart 解析时驻留内存的上限（32MB），超出部分落临时文件
)

// StorageConfig 文件存储目录配置.
type StorageConfig struct {
	Root               string `mapstructure:"root"                 rule:"required"`
	MaxUploadSize      int64  `mapstructure:"max_upload_size"      rule:"min=0"`
	MaxMultipartMemory int64  `mapstructure:"max_multipart_memory" rule:"min=0"`
}

// Unbounded 是否未限制上传大小.
func (c *StorageConfig) Unbounded() bool {
	return c.MaxUploadSize <= 0
}

func (c *StorageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.root", DefaultStorageRoot)
	v.SetDefault("storage.max_upload_size", DefaultMaxUploadSize)
	v.SetDefault("storage.max_multipart_memory", DefaultMaxMultipartMemory)
}
