package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"pizzeria-storefront/internal/config"
	"pizzeria-storefront/internal/db"
	"pizzeria-storefront/internal/domain"
	"pizzeria-storefront/internal/importer"
	"pizzeria-storefront/internal/logging"
	categoryrepo "pizzeria-storefront/internal/repository/category"
	productrepo "pizzeria-storefront/internal/repository/product"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a menu or category CSV file")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	logger := logging.New(logging.Options{Service: "importer", Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	products := productrepo.NewPostgres(pool, &logger)
	existing, err := products.List(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("load existing menu")
	}

	catalog := domain.NewCatalog(existing)

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open file")
	}
	defer f.Close()

	kind, err := importer.DetectKind(f)
	if err != nil {
		logger.Fatal().Err(err).Msg("read csv header")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		logger.Fatal().Err(err).Msg("rewind file")
	}
	logger.Info().Str("file", filePath).Str("kind", string(kind)).Int("existing_products", catalog.Len()).Msg("import starting")

	imp := importer.NewCSVImporter(f, products, categoryrepo.NewPostgres(pool), importer.Options{
		Existing: catalog,
		Currency: cfg.Checkout.Currency,
		Logger:   &logger,
	})

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Int("imported", count).Msg("import failed")
	}

	logger.Info().Int("imported", count).Str("file", filePath).Dur("took", time.Since(start).Truncate(time.Millisecond)).Msg("import finished")
}
