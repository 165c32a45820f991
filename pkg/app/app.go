// Package app 提供应用程序的初始化和配置功能.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/flarecloud/pkg/configs"
	"github.com/yeisme/flarecloud/pkg/internal/jobs"
	"github.com/yeisme/flarecloud/pkg/internal/router"
	"github.com/yeisme/flarecloud/pkg/internal/storage"
	"github.com/yeisme/flarecloud/pkg/log"
	"github.com/yeisme/flarecloud/pkg/metrics"
	"github.com/yeisme/flarecloud/pkg/middleware"
	"github.com/yeisme/flarecloud/pkg/scheduler"
	"github.com/yeisme/flarecloud/pkg/tracing"
)

// App 持有 HTTP 服务和后台任务.
type App struct {
	Engine    *gin.Engine
	Server    *http.Server
	Manager   *storage.Manager
	Scheduler *scheduler.Scheduler

	config *configs.AppConfig
	logger zerolog.Logger
	// stopEvents 停止事件日志订阅.
	stopEvents context.CancelFunc
}

// Setup 加载配置并初始化日志、追踪与监控. 命令行子命令共用.
func Setup(configPath string) (*configs.AppConfig, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, fmt.Errorf("initializing config: %w", err)
	}

	config := configs.GetConfig()

	log.Init(config.Log, config.Server.Debug)

	configs.OnReload(func(c *configs.AppConfig) {
		log.SetLevel(c.Log.Level)
		log.Logger().Info().Str("level", c.Log.Level).Msg("config reloaded")
	})

	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	metrics.InitMetrics(config.Metrics)

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	return config, nil
}

// NewApp 读取配置并组装应用.
func NewApp(configPath string) (*App, error) {
	config, err := Setup(configPath)
	if err != nil {
		return nil, err
	}

	return New(context.Background(), config, log.Component("app"))
}

// New 使用给定配置组装存储、调度器与路由，不启动任何监听.
func New(ctx context.Context, config *configs.AppConfig, logger zerolog.Logger) (*App, error) {
	manager, err := storage.New(ctx, config, log.Component("storage"))
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	sched, err := scheduler.NewScheduler(log.Component("scheduler"))
	if err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("initializing scheduler: %w", err)
	}

	if err := jobs.RegisterRetentionJob(sched, manager, config.Retention); err != nil {
		_ = sched.Shutdown()
		_ = manager.Close()

		return nil, fmt.Errorf("registering retention job: %w", err)
	}

	engine := NewEngine(config, manager, sched, logger)

	server := &http.Server{
		Addr:              net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port)),
		Handler:           engine,
		ReadHeaderTimeout: config.Server.GetTimeoutDuration(),
	}

	return &App{
		Engine:    engine,
		Server:    server,
		Manager:   manager,
		Scheduler: sched,
		config:    config,
		logger:    logger,
	}, nil
}

// NewEngine 创建 gin 引擎并挂载中间件与路由.
func NewEngine(config *configs.AppConfig, manager *storage.Manager, sched *scheduler.Scheduler, logger zerolog.Logger) *gin.Engine {
	engine := gin.New()
	engine.MaxMultipartMemory = config.Storage.MaxMultipartMemory

	engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.GinLoggerMiddleware(logger),
		middleware.CORSMiddleware(config.Server),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker, logger),
		middleware.StorageMiddleware(manager),
		middleware.SchedulerMiddleware(sched),
	)

	metrics.RegisterRoutes(engine, config.Metrics)
	router.Register(engine, config)

	return engine
}

// Start 启动调度器、事件日志和 HTTP 监听，监听失败通过返回的 channel 报告.
func (a *App) Start() <-chan error {
	a.Scheduler.Start()

	ctx, cancel := context.WithCancel(context.Background())
	a.stopEvents = cancel

	if err := logEvents(ctx, a.Manager, a.logger); err != nil {
		a.logger.Warn().Err(err).Msg("event log subscriber not started")
	}

	serveErr := make(chan error, 1)

	go func() {
		a.logger.Info().
			Str("addr", a.Server.Addr).
			Str("root", a.Manager.GetStore().Root()).
			Dur("retention", a.config.Retention.MaxAge).
			Msg("server listening")

		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}

		close(serveErr)
	}()

	return serveErr
}

// Shutdown 先等待 HTTP 请求处理完毕，再停止调度器、事件总线和追踪导出.
func (a *App) Shutdown(ctx context.Context) error {
	httpErr := a.Server.Shutdown(ctx)

	return errors.Join(httpErr, a.shutdownBackground(ctx))
}

func (a *App) shutdownBackground(ctx context.Context) error {
	if a.stopEvents != nil {
		a.stopEvents()
	}

	return errors.Join(
		a.Scheduler.Shutdown(),
		a.Manager.Close(),
		tracing.ShutdownTracer(ctx),
	)
}

// Run 启动服务并阻塞到收到 SIGINT/SIGTERM 或监听失败.
func (a *App) Run() error {
	serveErr := a.Start()

	timeout := a.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = configs.DefaultShutdownTimeout
	}

	shutdownCtx, forceShutdown := context.WithCancel(context.Background())
	defer forceShutdown()

	// 各 Operation 并发执行，顺序由 Shutdown 自己保证
	done := gfshutdown.GracefulShutdown(shutdownCtx, timeout, map[string]gfshutdown.Operation{
		"app": a.Shutdown,
	})

	select {
	case err, ok := <-serveErr:
		if !ok || err == nil {
			break
		}

		a.logger.Error().Err(err).Msg("server stopped unexpectedly")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = a.shutdownBackground(ctx)

		return fmt.Errorf("listen %s: %w", a.Server.Addr, err)
	case code := <-done:
		if code != 0 {
			return fmt.Errorf("shutdown completed with exit code %d", code)
		}

		a.logger.Info().Msg("shutdown completed")

		return nil
	}

	// ListenAndServe 正常返回只会发生在 Shutdown 之后
	if code := <-done; code != 0 {
		return fmt.Errorf("shutdown completed with exit code %d", code)
	}

	return nil
}
