package filestore

import "errors"

var (
	// ErrNotFound 目标文件不存在、已被删除或不是普通文件.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName 文件名为空、包含路径分隔符或会解析到根目录之外.
	ErrInvalidName = errors.New("invalid file name")
	// ErrNameExhausted 多次生成的名称都已被占用.
	ErrNameExhausted = errors.New("could not allocate a unique file name")
)
