package queue

// 主题命名规范：fc.<域>.<动作>，尽量稳定且向后兼容.

const (
	// 文件领域.
	TopicFileStored  = "fc.file.stored"  // 上传完成，文件已落盘
	TopicFileDeleted = "fc.file.deleted" // 文件被删除（请求删除或过期清理）
)

// Topics 返回所有文件事件主题.
func Topics() []string {
	return []string{TopicFileStored, TopicFileDeleted}
}
