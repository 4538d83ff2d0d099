// Package app 负责初始化配置、存储、服务与 HTTP 引擎，并管理进程生命周期.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/casefile/pkg/api"
	"github.com/yeisme/casefile/pkg/cache"
	"github.com/yeisme/casefile/pkg/configs"
	"github.com/yeisme/casefile/pkg/internal/handle"
	"github.com/yeisme/casefile/pkg/internal/jobs"
	"github.com/yeisme/casefile/pkg/internal/repository"
	"github.com/yeisme/casefile/pkg/internal/router"
	"github.com/yeisme/casefile/pkg/internal/service"
	"github.com/yeisme/casefile/pkg/internal/storage"
	"github.com/yeisme/casefile/pkg/log"
	"github.com/yeisme/casefile/pkg/metrics"
	"github.com/yeisme/casefile/pkg/middleware"
	"github.com/yeisme/casefile/pkg/queue"
	"github.com/yeisme/casefile/pkg/scheduler"
	"github.com/yeisme/casefile/pkg/tracing"
)

// App 已装配好的服务进程.
type App struct {
	Engine *gin.Engine

	config  *configs.AppConfig
	storage *storage.Manager
	sched   *scheduler.Scheduler
}

// NewApp 加载配置并装配全部依赖，失败时已打开的资源会被释放.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	config := configs.GetConfig()
	log.Init()

	if err := tracing.InitTracer(ctx, config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.Init(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &App{config: config, storage: manager}

	if err := a.build(ctx); err != nil {
		_ = manager.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.config
	db := a.storage.DB.DB

	if err := repository.AutoMigrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	svcCfg, err := service.ConfigFrom(&cfg.Documents)
	if err != nil {
		return err
	}

	documents := repository.NewDocuments(db)
	parties := repository.NewParties(db)

	deps := service.Deps{
		Documents: documents,
		Events:    repository.NewEvents(db),
		Skips:     repository.NewSkips(db),
		Blobs:     service.NewMinioBlobStore(a.storage.S3, cfg.CircuitBreaker),
		Directory: service.NewCachedDirectory(parties, cache.NewCache(a.storage.KV, "users"), cfg.Documents.DisplayNameCacheTTL),
	}

	if a.storage.MQ != nil {
		deps.Publisher = queue.NewDocumentPublisher(a.storage.MQ, cfg.Events)
	}

	svc := service.New(deps, svcCfg)

	if a.sched, err = scheduler.NewScheduler(); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	maintenance := service.NewMaintenance(documents, svc.Audit, service.SystemClock{})
	if err := jobs.RegisterCronJobs(ctx, a.sched, maintenance, cfg.Jobs); err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.Use(middleware.StorageMiddleware(a.storage))
	engine.Use(middleware.Global(cfg)...)

	api.RegisterGroup(engine, api.Handlers{
		Documents: handle.NewDocumentHandlers(svc, parties),
		Scheduler: handle.NewSchedulerHandlers(a.sched),
	})
	router.RegisterSwaggerRoute(engine, cfg.Server)

	if err := metrics.StartMetricsServer(cfg.Metrics, engine); err != nil {
		return err
	}

	a.Engine = engine

	return nil
}

// Run 启动调度器与 HTTP 服务，ctx 取消后优雅退出.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	a.sched.Start()

	errCh := make(chan error, 1)

	go func() {
		log.Logger().Info().Str("addr", srv.Addr).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	var runErr error

	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	return errors.Join(runErr, srv.Shutdown(shutdownCtx), a.close(shutdownCtx))
}

func (a *App) close(ctx context.Context) error {
	var errs []error

	if a.sched != nil {
		errs = append(errs, a.sched.Stop())
	}

	errs = append(errs, a.storage.Close(), tracing.ShutdownTracer(ctx))

	return errors.Join(errs...)
}
