package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// SweepOptions 控制一次过期清理.
type SweepOptions struct {
	// MaxAge 修改时间早于 now-MaxAge 的文件会被删除.
	MaxAge time.Duration
	// Concurrency 并行处理的条目数，<=0 时为 1.
	Concurrency int
	// OnPurged 每删除一个文件后调用，可为 nil. 可能被并发调用.
	OnPurged func(FileInfo)
}

// SweepResult 一次清理的统计.
type SweepResult struct {
	Scanned  int           `json:"scanned"`
	Deleted  int           `json:"deleted"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration"`
}

// Sweep 删除根目录中所有超过 MaxAge 未修改的普通文件.
//
// 读取目录失败会中止本轮清理并返回错误；单个条目 stat 或删除失败只记录日志并计入 Errors.
// 在枚举之后被并发删除的条目直接跳过，不算错误.
func (s *Store) Sweep(ctx context.Context, opts SweepOptions) (SweepResult, error) {
	start := s.now()

	if opts.MaxAge <= 0 {
		return SweepResult{}, fmt.Errorf("sweep: max age must be positive, got %s", opts.MaxAge)
	}

	entries, err := s.readDir(s.root)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error reading upload directory for cleanup")
		return SweepResult{}, fmt.Errorf("read storage root: %w", err)
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = 1
	}

	var (
		deleted atomic.Int64
		failed  atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, e := range entries {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			switch s.sweepEntry(e, start, opts) {
			case sweepDeleted:
				deleted.Add(1)
			case sweepFailed:
				failed.Add(1)
			}

			return nil
		})
	}

	_ = g.Wait()

	res := SweepResult{
		Scanned:  len(entries),
		Deleted:  int(deleted.Load()),
		Errors:   int(failed.Load()),
		Duration: s.now().Sub(start),
	}

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("sweep interrupted: %w", err)
	}

	return res, nil
}

type sweepOutcome int

const (
	sweepKept sweepOutcome = iota
	sweepDeleted
	sweepFailed
)

func (s *Store) sweepEntry(e fs.DirEntry, now time.Time, opts SweepOptions) sweepOutcome {
	name := e.Name()

	info, err := e.Info()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sweepKept
		}

		s.logger.Error().Err(err).Str("file", name).Msg("Error getting file stats for cleanup")

		return sweepFailed
	}

	if !info.Mode().IsRegular() {
		return sweepKept
	}

	if now.Sub(info.ModTime()) <= opts.MaxAge {
		return sweepKept
	}

	if err := os.Remove(filepath.Join(s.root, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sweepKept
		}

		s.logger.Error().Err(err).Str("file", name).Msg("Error deleting old file")

		return sweepFailed
	}

	s.logger.Info().Str("file", name).Time("modified_at", info.ModTime()).Msg("Deleted old file")

	if opts.OnPurged != nil {
		opts.OnPurged(toFileInfo(name, info))
	}

	return sweepDeleted
}
