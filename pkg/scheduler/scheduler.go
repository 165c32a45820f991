// Package scheduler 提供定时任务调度功能，使用 gocron/v2 库.
//
// 每个任务按名称注册，调度器额外维护一份 JobInfo（状态、上次/下次运行时间、最近一次错误），
// 供 GET /scheduler/jobs 展示. 同一任务不会重叠执行，上一次未结束时本次触发被跳过.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JobStatus 表示任务的状态类型.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled" // 任务已调度
	StatusRunning   JobStatus = "running"   // 任务正在运行
	StatusStopped   JobStatus = "stopped"   // 调度器已停止
	StatusError     JobStatus = "error"     // 最近一次运行出错
)

// ErrJobNotFound 指定名称的任务不存在.
var ErrJobNotFound = errors.New("job not found")

// JobFunc 任务函数，ctx 在调度器停止或任务被移除时取消.
type JobFunc func(ctx context.Context) error

// JobInfo 表示定时任务的信息，用于可视化和监控.
type JobInfo struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Schedule     string        `json:"schedule"` // "every 1h0m0s" 或 cron 表达式
	NextRun      time.Time     `json:"next_run"`
	LastRun      time.Time     `json:"last_run"`
	LastSuccess  time.Time     `json:"last_success,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	Runs         int64         `json:"runs"`
	Status       JobStatus     `json:"status"`
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Scheduler 是定时任务调度器的实现.
type Scheduler struct {
	scheduler gocron.Scheduler
	jobs      map[string]gocron.Job // 以任务名称为键
	jobInfos  map[string]*JobInfo   // 以任务名称为键
	jobIDs    map[uuid.UUID]string  // 以任务ID为键，映射到名称
	mu        sync.RWMutex
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	stopped   bool
}

// NewScheduler 创建一个新的 Scheduler 实例，需要调用 Start 才会开始调度.
func NewScheduler(logger zerolog.Logger, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		scheduler: s,
		jobs:      make(map[string]gocron.Job),
		jobInfos:  make(map[string]*JobInfo),
		jobIDs:    make(map[uuid.UUID]string),
		logger:    logger.With().Str("component", "scheduler").Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// AddInterval 添加一个固定间隔执行的任务.
func (s *Scheduler) AddInterval(name string, interval time.Duration, job JobFunc, opts ...gocron.JobOption) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, interval)
	}

	return s.add(name, gocron.DurationJob(interval), "every "+interval.String(), job, opts...)
}

// AddCron 添加一个基于 cron 表达式的定时任务（5 段，不含秒）.
func (s *Scheduler) AddCron(name string, cronExpr string, job JobFunc, opts ...gocron.JobOption) error {
	return s.add(name, gocron.CronJob(cronExpr, false), cronExpr, job, opts...)
}

func (s *Scheduler) add(name string, def gocron.JobDefinition, schedule string, job JobFunc, opts ...gocron.JobOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job with name %s already exists", name)
	}

	opts = append([]gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithEventListeners(
			gocron.AfterJobRuns(func(_ uuid.UUID, jobName string) {
				s.refreshNextRun(jobName)
			}),
		),
	}, opts...)

	j, err := s.scheduler.NewJob(def, gocron.NewTask(s.wrap(name, job)), opts...)
	if err != nil {
		return err
	}

	now := time.Now()
	nextRun, _ := j.NextRun()

	s.jobs[name] = j
	s.jobIDs[j.ID()] = name
	s.jobInfos[name] = &JobInfo{
		ID:        j.ID().String(),
		Name:      name,
		Schedule:  schedule,
		NextRun:   nextRun,
		Status:    StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.logger.Info().Str("job", name).Str("schedule", schedule).Msg("Added job")

	return nil
}

// wrap 包装任务函数以记录执行状态，panic 被捕获并记为错误.
func (s *Scheduler) wrap(name string, job JobFunc) func() {
	return func() {
		ctx, cancel := context.WithCancel(s.ctx)
		defer cancel()

		start := time.Now()
		s.markRunning(name, start)

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic in job: %v", r)
				}
			}()

			return job(ctx)
		}()

		s.markDone(name, start, err)

		if err != nil {
			s.logger.Error().Err(err).Str("job", name).Msg("Job failed")
		}
	}
}

func (s *Scheduler) markRunning(name string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.jobInfos[name]; ok {
		info.Status = StatusRunning
		info.LastRun = at
		info.UpdatedAt = at
	}
}

func (s *Scheduler) markDone(name string, start time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.jobInfos[name]
	if !ok {
		return
	}

	now := time.Now()
	info.Runs++
	info.LastDuration = now.Sub(start)
	info.UpdatedAt = now

	switch {
	case err != nil:
		info.Status = StatusError
		info.Error = err.Error()
	default:
		info.Status = StatusScheduled
		info.Error = ""
		info.LastSuccess = now
	}

	if s.stopped {
		info.Status = StatusStopped
	}
}

func (s *Scheduler) refreshNextRun(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return
	}

	if next, err := j.NextRun(); err == nil {
		s.jobInfos[name].NextRun = next
	}
}

// RunNow 立即触发一次任务，不影响既有调度.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	return j.RunNow()
}

// RemoveJobByName 通过名称移除任务.
func (s *Scheduler) RemoveJobByName(name string) error {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	return s.RemoveJob(j.ID())
}

// RemoveJob 通过 ID 移除任务.
func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	if err := s.scheduler.RemoveJob(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if name, exists := s.jobIDs[id]; exists {
		delete(s.jobs, name)
		delete(s.jobInfos, name)
		delete(s.jobIDs, id)

		s.logger.Info().Str("job", name).Msg("Removed job")
	}

	return nil
}

// GetJobInfoByName 通过名称获取任务信息的副本.
func (s *Scheduler) GetJobInfoByName(name string) (JobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, exists := s.jobInfos[name]
	if !exists {
		return JobInfo{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	return *info, nil
}

// GetJobInfos 返回所有定时任务的信息，按名称排序.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]JobInfo, 0, len(s.jobInfos))
	for _, info := range s.jobInfos {
		jobs = append(jobs, *info)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })

	return jobs
}

// Start 启动调度器.
func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.GetJobInfos())).Msg("Starting scheduler")
	s.scheduler.Start()
}

// Shutdown 取消正在运行任务的 ctx，并等待它们返回. 可重复调用.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}

	s.stopped = true
	for _, info := range s.jobInfos {
		info.Status = StatusStopped
		info.UpdatedAt = time.Now()
	}
	s.mu.Unlock()

	s.logger.Info().Msg("Stopping scheduler")
	s.cancel()

	return s.scheduler.Shutdown()
}
