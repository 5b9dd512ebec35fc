package main

import (
	"context"
	"flag"
	"os"

	"pizzeria-storefront/internal/config"
	"pizzeria-storefront/internal/db"
	"pizzeria-storefront/internal/logging"
	"pizzeria-storefront/internal/migrate"
)

func main() {
	flag.Usage = func() {
		_, _ = os.Stderr.WriteString("usage: migrate [up|down|version]\n")
	}
	flag.Parse()
	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	cfg, err := config.FromEnv()
	logger := logging.New(logging.Options{Service: "migrate", Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	switch cmd {
	case "up":
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
		logger.Info().Msg("migrations applied")
	case "down":
		if err := migrate.Rollback(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("rollback migration")
		}
		logger.Info().Msg("last migration rolled back")
	case "version":
		version, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			logger.Fatal().Err(err).Msg("read migration version")
		}
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
	default:
		flag.Usage()
		os.Exit(2)
	}
}
