package configs

import "github.com/spf13/viper"

// EventsType 事件总线实现类型.
type EventsType string

const (
	EventsTypeGoChannel EventsType = "gochannel" // 进程内事件总线
	EventsTypeNATS      EventsType = "nats"      // NATS / JetStream
	EventsTypeRedis     EventsType = "redis"     // Redis Pub/Sub

	DefaultEventsBuffer   = 64
	DefaultNATSURL        = "nats://localhost:4222"
	DefaultMaxReconnects  = 5 // 默认最大重连次数.
	DefaultReconnectWait  = 2 // 默认重连等待时间（秒）.
	DefaultNATSClientName = "flarecloud"
)

// EventsConfig 控制文件事件的发布（上传、删除、过期清理）.
type EventsConfig struct {
	Enabled  bool              `mapstructure:"enabled"` // 总开关
	Type     EventsType        `mapstructure:"type"     rule:"oneof=gochannel nats redis"`
	Buffer   int64             `mapstructure:"buffer"   rule:"min=0"`
	Producer string            `mapstructure:"producer"`
	NATS     EventsNATSConfig  `mapstructure:"nats"`
	Redis    EventsRedisConfig `mapstructure:"redis"`
}

// EventsRedisConfig Redis Pub/Sub 事件总线配置.
type EventsRedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" rule:"min=0,max=15"`
}

// EventsNATSConfig NATS 事件总线配置.
type EventsNATSConfig struct {
	URL                    string   `mapstructure:"url"`
	ClusterURLs            []string `mapstructure:"cluster_urls"`
	ClientName             string   `mapstructure:"client_name"`
	User                   string   `mapstructure:"user"`
	Password               string   `mapstructure:"password"`
	MaxReconnects          int      `mapstructure:"max_reconnects" rule:"min=-1,max=100"`
	ReconnectWait          int      `mapstructure:"reconnect_wait" rule:"min=0,max=300"`
	JetStreamEnabled       bool     `mapstructure:"jetstream_enabled"`
	JetStreamAutoProvision bool     `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool     `mapstructure:"jetstream_track_msg_id"`
	JetStreamDurablePrefix string   `mapstructure:"jetstream_durable_prefix"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用进程内事件总线
	v.SetDefault("events.enabled", true)
	v.SetDefault("events.type", EventsTypeGoChannel)
	v.SetDefault("events.buffer", DefaultEventsBuffer)
	v.SetDefault("events.producer", AppName)

	v.SetDefault("events.nats.url", DefaultNATSURL)
	v.SetDefault("events.nats.cluster_urls", []string{})
	v.SetDefault("events.nats.client_name", DefaultNATSClientName)
	v.SetDefault("events.nats.user", "")
	v.SetDefault("events.nats.password", "")
	v.SetDefault("events.nats.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("events.nats.reconnect_wait", DefaultReconnectWait)
	v.SetDefault("events.nats.jetstream_enabled", false)
	v.SetDefault("events.nats.jetstream_auto_provision", true)
	v.SetDefault("events.nats.jetstream_track_msg_id", true)
	v.SetDefault("events.nats.jetstream_durable_prefix", "flarecloud")

	v.SetDefault("events.redis.addr", "localhost:6379")
	v.SetDefault("events.redis.password", "")
	v.SetDefault("events.redis.db", 0)
}
