package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪 ID，来自请求的 span.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// DeleteReason 文件被删除的原因.
type DeleteReason string

const (
	DeleteReasonRequest   DeleteReason = "request"   // DELETE /files/:filename
	DeleteReasonRetention DeleteReason = "retention" // 过期清理
)

// FileRef 标识存储目录中的一个文件.
type FileRef struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// FileStoredPayload 上传完成.
type FileStoredPayload struct {
	File FileRef `json:"file"`
	// 客户端提交的原始文件名与类型，仅供下游参考.
	OriginalName string `json:"original_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
}

// FileDeletedPayload 文件被删除.
type FileDeletedPayload struct {
	File   FileRef      `json:"file"`
	Reason DeleteReason `json:"reason"`
}
