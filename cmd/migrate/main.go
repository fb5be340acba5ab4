package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/angelmondragon/shopadmin/pkg/config"
	"github.com/angelmondragon/shopadmin/pkg/db"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/migrate"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migration root with one folder per driver (create, validate)")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	if err := run(context.Background(), opts, os.Stdout, logg); err != nil {
		logg.Error(context.Background(), "migrate failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer, logg *logger.Logger) (err error) {
	// create and validate work on the source tree only.
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name for create")
		}
		paths, err := migrate.CreateSQLMigration(opts.dir, opts.name, time.Now())
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		for _, p := range paths {
			fmt.Fprintln(out, "created migration:", p)
		}
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return fmt.Errorf("validate migrations: %w", err)
		}
		fmt.Fprintln(out, "migration validation passed")
		return nil
	}

	cfg, err := config.LoadServer()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"cmd":    opts.cmd,
		"driver": cfg.DB.Driver,
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		multierr.AppendInto(&err, client.Close())
	}()
	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	driver := client.Driver()

	switch opts.cmd {
	case "up":
		applied, err := migrate.Up(ctx, sqlDB, driver)
		if err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		fmt.Fprintf(out, "applied %d migration(s)\n", applied)
	case "down":
		if err := migrate.Down(ctx, sqlDB, driver); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
	case "status":
		lines, err := migrate.Status(ctx, sqlDB, driver)
		if err != nil {
			return fmt.Errorf("goose status: %w", err)
		}
		for _, line := range lines {
			state := "pending"
			if line.Applied {
				state = "applied"
			}
			fmt.Fprintf(out, "%-8s %d %s\n", state, line.Version, line.Source)
		}
	case "version":
		if opts.version == "" {
			return errors.New("missing -version for version command")
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, driver, opts.version); err != nil {
			return fmt.Errorf("goose to version %s: %w", opts.version, err)
		}
	default:
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}
	logg.Info(ctx, "migrate done")
	return nil
}
