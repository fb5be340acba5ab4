package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/shopadmin/api"
	"github.com/angelmondragon/shopadmin/api/controllers"
	"github.com/angelmondragon/shopadmin/api/routes"
	"github.com/angelmondragon/shopadmin/internal/auth"
	"github.com/angelmondragon/shopadmin/internal/backend"
	"github.com/angelmondragon/shopadmin/internal/catalog"
	"github.com/angelmondragon/shopadmin/internal/cron"
	"github.com/angelmondragon/shopadmin/pkg/config"
	"github.com/angelmondragon/shopadmin/pkg/db"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/metrics"
	"github.com/angelmondragon/shopadmin/pkg/migrate"
	"github.com/angelmondragon/shopadmin/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "mockapi"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.LoadServer()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "mockapi",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "mockapi stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ServerConfig, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		multierr.AppendInto(&err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	pingers := map[string]controllers.Pinger{"database": dbClient}

	var (
		resetCodes  auth.ResetCodeStore
		redisClient *redis.Client
	)
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		var redisErr error
		redisClient, redisErr = redis.New(ctx, cfg.Redis, logg)
		if redisErr != nil {
			return redisErr
		}
		defer func() {
			multierr.AppendInto(&err, redisClient.Close())
		}()
		resetCodes = auth.NewRedisResetCodes(redisClient)
		pingers["redis"] = redisClient
	}

	svcs, err := backend.New(backend.Params{
		DB:           dbClient.DB(),
		JWT:          cfg.JWT,
		Password:     cfg.Password,
		Images:       catalog.DiskImages{Dir: cfg.MockAPI.UploadDir, URLPrefix: routes.UploadsPrefix},
		ResetCodes:   resetCodes,
		ResetCodeTTL: cfg.MockAPI.ResetCodeTTL,
		Logger:       logg,
	})
	if err != nil {
		return err
	}

	created, err := svcs.Account.EnsureAdmin(ctx, cfg.MockAPI.SeedAdminEmail, cfg.MockAPI.SeedAdminPassword)
	if err != nil {
		return err
	}
	if created {
		logg.Info(logg.WithField(ctx, "email", cfg.MockAPI.SeedAdminEmail), "seeded admin user")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := routes.NewRouter(cfg, logg, svcs, routes.Options{Pingers: pingers, Registry: registry})
	srv := api.NewServer(cfg.MockAPI.Port, handler)

	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      srv.Addr,
		"base_path": cfg.MockAPI.BasePath,
		"driver":    dbClient.Driver(),
	}), "starting mock api server")

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return api.Serve(gctx, srv, logg)
	})
	if cfg.MockAPI.MaintenanceInterval > 0 {
		scheduler, err := newScheduler(cfg, logg, dbClient.DB(), redisClient, registry)
		if err != nil {
			return err
		}
		group.Go(func() error {
			return scheduler.Run(gctx)
		})
	}
	return group.Wait()
}

func newScheduler(cfg *config.ServerConfig, logg *logger.Logger, database *gorm.DB, redisClient *redis.Client, reg prometheus.Registerer) (*cron.Service, error) {
	purge, err := cron.NewResetPurgeJob(database, cfg.MockAPI.ResetCodeRetention, nil)
	if err != nil {
		return nil, err
	}
	sessions, err := cron.NewSessionCloseJob(database, time.Duration(cfg.JWT.ExpirationMinutes)*time.Minute, nil)
	if err != nil {
		return nil, err
	}

	var lock cron.Lock = &cron.LocalLock{}
	if redisClient != nil {
		lock, err = cron.NewRedisLock(redisClient, redisClient.LockKey("maintenance"), cfg.MockAPI.MaintenanceInterval)
		if err != nil {
			return nil, err
		}
	}

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(purge, sessions),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(reg),
		Interval: cfg.MockAPI.MaintenanceInterval,
	})
}
