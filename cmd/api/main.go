package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/folio-works/portfolio-backend/config"
	httpapi "github.com/folio-works/portfolio-backend/internal/api/http"
	"github.com/folio-works/portfolio-backend/internal/bootstrap"
	"github.com/folio-works/portfolio-backend/internal/cache"
	"github.com/folio-works/portfolio-backend/internal/catalog"
	"github.com/folio-works/portfolio-backend/internal/cronjob"
	"github.com/folio-works/portfolio-backend/internal/events"
	"github.com/folio-works/portfolio-backend/internal/logger"
	"github.com/folio-works/portfolio-backend/internal/media/ledger"
	"github.com/folio-works/portfolio-backend/internal/media/upload"
	projectshttp "github.com/folio-works/portfolio-backend/internal/projects/http"
	"github.com/folio-works/portfolio-backend/internal/projects/repository"
	"github.com/folio-works/portfolio-backend/internal/projects/service"
	"github.com/folio-works/portfolio-backend/internal/storage/postgres"
)

const serviceName = "portfolio-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		panic(err)
	}

	log, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting "+serviceName,
		zap.String("env", cfg.App.Environment),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("asset_host", cfg.AssetHost.Provider),
		zap.String("cache", cfg.Cache.Backend),
		zap.String("gallery_lock", cfg.Gallery.Lock),
	)

	checks := map[string]httpapi.Check{}

	// Redis
	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb, err = bootstrap.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// Stores
	var (
		projectRepo  service.Repository
		catalogStore catalog.Store
		sqlDB        *sql.DB
		pool         *pgxpool.Pool
	)
	switch cfg.Database.Driver {
	case "postgres":
		sqlDB, err = postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer sqlDB.Close()
		if err := postgres.EnsureSchema(ctx, sqlDB); err != nil {
			log.Fatal("failed to apply schema", zap.Error(err))
		}

		pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: postgres.DSN(&cfg.Database)})
		if err != nil {
			log.Fatal("failed to open pgx pool", zap.Error(err))
		}
		defer pool.Close()
		checks["db"] = pool.Ping

		projectRepo = repository.NewProjectRepository(sqlDB)
		catalogStore = catalog.NewRepo(pool)
	default:
		log.Warn("using in-memory storage, data is lost on restart")
		projectRepo = repository.NewMemoryRepository()
		catalogStore = catalog.NewMemoryStore()
	}

	// Cache, events, ledger and lock
	var (
		store       cache.Store
		bus         events.Bus
		assets      ledger.Ledger
		flushOnExit bool
	)
	if cfg.Cache.Backend == "redis" {
		store = cache.NewRedisStore(rdb, cfg.Cache.TTL)
		bus = events.NewRedisBus(rdb, log)
		assets = ledger.NewRedisLedger(rdb)
	} else {
		store = cache.NewMemoryStore(cfg.Cache.TTL)
		bus = events.NewMemoryBus(log)
		assets = ledger.NewMemoryLedger()
		flushOnExit = true
	}
	projection := cache.New(store, log)

	var locker service.Locker
	switch cfg.Gallery.Lock {
	case "redis":
		locker = service.NewRedisLocker(rdb, cfg.Gallery.LockTTL)
	case "none":
		locker = service.NoopLocker{}
	default:
		locker = service.NewLocalLocker()
	}

	// Asset host
	gateway, engine, err := bootstrap.AssetHost(ctx, cfg.AssetHost, log)
	if err != nil {
		log.Fatal("failed to configure asset host", zap.Error(err))
	}

	// Services
	uploader := upload.NewOrchestrator(gateway, assets, cfg.AssetHost.UploadTimeout, log)
	projects := service.NewProjectService(projectRepo, projection, bus)
	gallery := service.NewGalleryService(projectRepo, uploader, assets, locker, projection, bus,
		service.GalleryOptions{MaxAttempts: cfg.Gallery.MaxAttempts, Timeout: cfg.Gallery.MutationTimeout}, log)
	catalogSvc := catalog.NewService(catalogStore, projection, bus)

	adminAuth, err := bootstrap.AdminAuth(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to configure admin auth", zap.Error(err))
	}

	// Orphan audit
	scheduler := cronjob.NewScheduler(log, time.Minute)
	auditor := ledger.NewAuditor(assets, cfg.AssetHost.OrphanGrace, log)
	if err := scheduler.Add("orphan-audit", cfg.AssetHost.AuditSchedule, func(ctx context.Context) error {
		_, err := auditor.Run(ctx)
		return err
	}); err != nil {
		log.Fatal("failed to schedule orphan audit", zap.Error(err))
	}
	scheduler.Start()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
		HealthChecks:   checks,
		Projects:       projectshttp.New(projects, gallery, engine),
		Catalog:        catalog.NewHandler(catalogSvc),
		Events:         events.NewStreamHandler(bus),
		Cache:          projection,
		AdminAuth:      adminAuth,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)

	if flushOnExit {
		_ = projection.Flush(shutdownCtx)
	}

	log.Info("shutdown complete")
}
