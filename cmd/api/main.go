package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pizzeria-storefront/internal/config"
	"pizzeria-storefront/internal/db"
	"pizzeria-storefront/internal/httpserver"
	"pizzeria-storefront/internal/idempotency"
	"pizzeria-storefront/internal/logging"
	"pizzeria-storefront/internal/metrics"
	"pizzeria-storefront/internal/payments"
	"pizzeria-storefront/internal/recommend"
	"pizzeria-storefront/internal/redisx"
	addressrepo "pizzeria-storefront/internal/repository/address"
	cartrepo "pizzeria-storefront/internal/repository/cart"
	categoryrepo "pizzeria-storefront/internal/repository/category"
	customerrepo "pizzeria-storefront/internal/repository/customer"
	favoriterepo "pizzeria-storefront/internal/repository/favorite"
	orderrepo "pizzeria-storefront/internal/repository/order"
	productrepo "pizzeria-storefront/internal/repository/product"
	tokenrepo "pizzeria-storefront/internal/repository/token"
	addresssvc "pizzeria-storefront/internal/service/address"
	anonymoussvc "pizzeria-storefront/internal/service/anonymous"
	cartsvc "pizzeria-storefront/internal/service/cart"
	categorysvc "pizzeria-storefront/internal/service/category"
	checkoutsvc "pizzeria-storefront/internal/service/checkout"
	customersvc "pizzeria-storefront/internal/service/customer"
	favoritesvc "pizzeria-storefront/internal/service/favorite"
	ordersvc "pizzeria-storefront/internal/service/order"
	productsvc "pizzeria-storefront/internal/service/product"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		boot := logging.New(logging.Options{Service: "api"})
		boot.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(logging.Options{Service: "api", Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer dbpool.Close()

	rdb, err := redisx.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.New(registry)

	productRepo := productrepo.NewPostgres(dbpool, &logger)
	productService := productsvc.New(productRepo, cfg.CatalogTTL)
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool))
	cartService := cartsvc.New(cartrepo.NewRedis(rdb, cfg.Cart.TTL, &logger), productService, storefrontMetrics)
	cartSessions := anonymoussvc.New(rdb, cfg.Cart.TTL)
	customerService := customersvc.New(customerrepo.NewPostgres(dbpool, &logger), tokenrepo.NewPostgres(dbpool, &logger), customersvc.Options{
		Secret:    cfg.JWT.Secret,
		Issuer:    cfg.JWT.Issuer,
		AccessTTL: cfg.JWT.AccessTTL,
	})
	addressService := addresssvc.New(addressrepo.NewPostgres(dbpool, &logger), &logger)
	favoriteService := favoritesvc.New(favoriterepo.NewPostgres(dbpool, &logger), productService, &logger)

	stripeClient, err := payments.NewClient(cfg.Stripe, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init stripe client")
	}

	checkoutLock, err := idempotency.NewLock(rdb, cfg.Checkout.LockTTL, "checkout")
	if err != nil {
		logger.Fatal().Err(err).Msg("init checkout lock")
	}
	webhookGuard, err := idempotency.NewGuard(rdb, cfg.WebhookIdempotencyTTL, "stripe-webhook")
	if err != nil {
		logger.Fatal().Err(err).Msg("init webhook guard")
	}

	pricing := checkoutsvc.Pricing{TaxRate: cfg.Checkout.TaxRate, DeliveryFee: cfg.Checkout.DeliveryFee}
	checkoutService, err := checkoutsvc.New(checkoutsvc.Params{
		Provider:      stripeClient,
		Catalog:       productService,
		Addresses:     addressService,
		Lock:          checkoutLock,
		Pricing:       pricing,
		StorefrontURL: cfg.StorefrontURL,
		Metrics:       storefrontMetrics,
		Logger:        &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init checkout service")
	}

	orderService, err := ordersvc.New(ordersvc.Params{
		Orders:    orderrepo.NewPostgres(dbpool, &logger),
		Addresses: addressService,
		Carts:     cartService,
		Pricing:   pricing,
		Metrics:   storefrontMetrics,
		Logger:    &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init order service")
	}

	var recommender *recommend.Client
	if cfg.Recommender.URL != "" {
		recommender, err = recommend.NewClient(cfg.Recommender.URL, cfg.Recommender.Timeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("init recommender client")
		}
	}
	recommendService := recommend.New(recommender, orderService, &logger)

	srv, err := httpserver.New(cfg.HTTPAddr, &logger, httpserver.Deps{
		ProductSvc:   productService,
		CategorySvc:  categoryService,
		CartSvc:      cartService,
		CartSessions: cartSessions,
		CustomerSvc:  customerService,
		AddressSvc:   addressService,
		FavoriteSvc:  favoriteService,
		CheckoutSvc:  checkoutService,
		OrderSvc:     orderService,
		RecommendSvc: recommendService,
		WebhookGuard: webhookGuard,
		Stripe:       stripeClient,
		Readiness: []httpserver.Check{
			{Name: "postgres", Ping: dbpool.Ping},
			{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("stripe_env", stripeClient.Environment()).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}
