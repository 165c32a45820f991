// Package filestore 管理单一平铺目录中的文件：分配唯一名称写入、枚举、读取、查询元数据、删除，
// 以及按修改时间清理过期文件.
//
// 目录是唯一的共享资源，不加锁；并发正确性依赖文件系统对单次 create(O_EXCL)/stat/unlink 的原子性.
// 所有按名称的操作都先经过 Resolve，保证不会访问根目录之外的路径.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/djherbis/times"
	"github.com/rs/zerolog"

	"github.com/yeisme/flarecloud/pkg/rule"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640

	// maxNameAttempts 名称冲突时的最大重试次数.
	maxNameAttempts = 3
)

// FileInfo 存储文件的元数据，全部来自文件系统.
type FileInfo struct {
	Name       string
	Size       int64
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Store 对应一个存储根目录.
type Store struct {
	root   string
	names  *nameSource
	logger zerolog.Logger
	now    func() time.Time
	// readDir 清理时枚举根目录.
	readDir func(string) ([]fs.DirEntry, error)
}

// New 创建 Store，根目录不存在时自动创建.
func New(root string, logger zerolog.Logger) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %s: %w", root, err)
	}

	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", root, err)
	}

	return &Store{
		root:    abs,
		names:   newNameSource(),
		logger:  logger.With().Str("component", "filestore").Logger(),
		now:     time.Now,
		readDir: os.ReadDir,
	}, nil
}

// Root 返回存储根目录的绝对路径.
func (s *Store) Root() string {
	return s.root
}

// Resolve 将文件名解析为根目录下的路径，拒绝任何会逃逸根目录的名称.
func (s *Store) Resolve(name string) (string, error) {
	if !rule.IsFileName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	p := filepath.Join(s.root, name)
	if filepath.Dir(p) != s.root {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return p, nil
}

// Save 将 r 的全部内容写入一个新分配名称的文件.
// 写入失败时删除已写入的部分内容.
func (s *Store) Save(r io.Reader) (FileInfo, error) {
	f, name, err := s.create()
	if err != nil {
		return FileInfo{}, err
	}

	p := f.Name()

	size, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(p)

		return FileInfo{}, fmt.Errorf("write %s: %w", name, err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(p)

		return FileInfo{}, fmt.Errorf("sync %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return FileInfo{}, fmt.Errorf("close %s: %w", name, err)
	}

	info, err := s.Stat(name)
	if err != nil {
		// 写入后立即被删除（例如被并发的 Delete），仍返回已写入的大小
		now := s.now()
		return FileInfo{Name: name, Size: size, CreatedAt: now, ModifiedAt: now}, nil
	}

	s.logger.Debug().Str("file", name).Int64("size", size).Msg("file stored")

	return info, nil
}

// create 使用 O_EXCL 创建新文件，保证并发上传不会得到相同名称.
func (s *Store) create() (*os.File, string, error) {
	for range maxNameAttempts {
		name, err := s.names.Next(s.now())
		if err != nil {
			return nil, "", fmt.Errorf("generate file name: %w", err)
		}

		f, err := os.OpenFile(filepath.Join(s.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
		if err == nil {
			return f, name, nil
		}

		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create %s: %w", name, err)
		}
	}

	return nil, "", ErrNameExhausted
}

// List 返回根目录下所有条目的名称，顺序无业务含义.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read storage root: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names, nil
}

// Open 打开文件用于读取，调用方负责关闭.
func (s *Store) Open(name string) (*os.File, FileInfo, error) {
	p, err := s.Resolve(name)
	if err != nil {
		return nil, FileInfo{}, err
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, FileInfo{}, wrapNotFound(name, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, FileInfo{}, wrapNotFound(name, err)
	}

	if !fi.Mode().IsRegular() {
		_ = f.Close()
		return nil, FileInfo{}, fmt.Errorf("%w: %s is not a regular file", ErrNotFound, name)
	}

	return f, toFileInfo(name, fi), nil
}

// Stat 返回文件元数据.
func (s *Store) Stat(name string) (FileInfo, error) {
	p, err := s.Resolve(name)
	if err != nil {
		return FileInfo{}, err
	}

	fi, err := os.Stat(p)
	if err != nil {
		return FileInfo{}, wrapNotFound(name, err)
	}

	if !fi.Mode().IsRegular() {
		return FileInfo{}, fmt.Errorf("%w: %s is not a regular file", ErrNotFound, name)
	}

	return toFileInfo(name, fi), nil
}

// Delete 删除文件，文件不存在时返回 ErrNotFound.
func (s *Store) Delete(name string) error {
	p, err := s.Resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		return wrapNotFound(name, err)
	}

	return nil
}

// Ping 检查根目录是否仍然可用.
func (s *Store) Ping() error {
	fi, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("stat storage root: %w", err)
	}

	if !fi.IsDir() {
		return fmt.Errorf("storage root %s is not a directory", s.root)
	}

	return nil
}

// wrapNotFound 将不存在类错误统一为 ErrNotFound，其它错误原样包装.
func wrapNotFound(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return fmt.Errorf("%s: %w", name, err)
}

// toFileInfo 组装元数据；创建时间优先取 birth time，其次 ctime，最后退回 mtime.
func toFileInfo(name string, fi os.FileInfo) FileInfo {
	ts := times.Get(fi)

	created := fi.ModTime()

	switch {
	case ts.HasBirthTime():
		created = ts.BirthTime()
	case ts.HasChangeTime():
		created = ts.ChangeTime()
	}

	return FileInfo{
		Name:       name,
		Size:       fi.Size(),
		CreatedAt:  created,
		ModifiedAt: fi.ModTime(),
	}
}
