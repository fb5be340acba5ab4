package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/internal/store"
	"github.com/angelmondragon/shopadmin/pkg/auth/session"
	"github.com/angelmondragon/shopadmin/pkg/config"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/redis"
	"github.com/angelmondragon/shopadmin/pkg/transport"
	"github.com/joho/godotenv"
)

func main() {
	// CLI output goes to stdout, so logs stay on stderr.
	logg := logger.New(logger.Options{ServiceName: "shopadmin", Output: os.Stderr})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "shopadmin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, closeFn, err := bootstrap(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to start", err)
		os.Exit(1)
	}
	defer closeFn()

	a := &app{st: st, out: os.Stdout, logg: logg}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if err != errUsage {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		closeFn()
		os.Exit(2)
	}
}

// bootstrap wires the token holder, transport and store from configuration.
func bootstrap(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*store.Store, func(), error) {
	closeFn := func() {}

	var redisClient *redis.Client
	if cfg.Session.Store == config.SessionStoreRedis {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, closeFn, err
		}
		redisClient = client
		closeFn = func() {
			if err := client.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}
	}

	tokens, err := session.Open(ctx, cfg.Session, redisClient)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}

	opts := []transport.Option{
		transport.WithLogger(logg),
		transport.WithBearerPrefix(cfg.API.BearerPrefix),
	}
	if cfg.API.Timeout > 0 {
		opts = append(opts, transport.WithTimeout(cfg.API.Timeout))
	}
	client, err := transport.NewClient(cfg.API.BaseURL, tokens, opts...)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}

	return store.New(resources.NewAPIs(client), tokens, logg), closeFn, nil
}
