package filestore

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// nameSource 生成进程内单调递增的 ULID 作为存储文件名.
// ulid.Monotonic 返回的 entropy 不是并发安全的，由 mu 保护.
type nameSource struct {
	mu      sync.Mutex
	entropy io.Reader
}

func newNameSource() *nameSource {
	return &nameSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Next 返回一个新的文件名，同一毫秒内的名称按字典序递增.
func (n *nameSource) Next(now time.Time) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(now), n.entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}
