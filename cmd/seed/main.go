package main

import (
	"context"

	"pizzeria-storefront/internal/config"
	"pizzeria-storefront/internal/db"
	"pizzeria-storefront/internal/logging"
	categoryrepo "pizzeria-storefront/internal/repository/category"
	productrepo "pizzeria-storefront/internal/repository/product"
	"pizzeria-storefront/internal/seed"
)

func main() {
	cfg, err := config.FromEnv()
	logger := logging.New(logging.Options{Service: "seed", Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if err := seed.Apply(ctx, productrepo.NewPostgres(pool, &logger), categoryrepo.NewPostgres(pool)); err != nil {
		logger.Fatal().Err(err).Msg("seed apply")
	}

	logger.Info().Int("products", len(seed.Menu())).Msg("seed applied")
}
