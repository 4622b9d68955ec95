package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shamanicca/storefront/internal/cart"
	"github.com/shamanicca/storefront/internal/catalog"
	"github.com/shamanicca/storefront/internal/checkout"
	"github.com/shamanicca/storefront/internal/cms"
	"github.com/shamanicca/storefront/internal/format"
	"github.com/shamanicca/storefront/internal/handlers"
	"github.com/shamanicca/storefront/internal/nav"
	"github.com/shamanicca/storefront/internal/platform/config"
	pfirestore "github.com/shamanicca/storefront/internal/platform/firestore"
	"github.com/shamanicca/storefront/internal/platform/observability"
	"github.com/shamanicca/storefront/internal/platform/pagination"
	"github.com/shamanicca/storefront/internal/platform/session"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	pageOpts := pagination.Options{
		DefaultPageSize: cfg.Listing.PageSize,
		MaxPageSize:     cfg.Listing.MaxPageSize,
	}

	prices, err := format.NewPriceFormatter(cfg.Stripe.Currency)
	if err != nil {
		logger.Fatal("failed to initialise price formatter", zap.Error(err))
	}

	navigation := nav.NewService(nil)

	catalogService := buildCatalogService(logger, cfg, pageOpts)
	contentService := buildContentService(logger, cfg)

	cartFactory, firestoreProvider, err := buildCartStorageFactory(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("failed to initialise cart storage", zap.Error(err))
	}
	if firestoreProvider != nil {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := firestoreProvider.Close(closeCtx); err != nil {
				logger.Warn("firestore close error", zap.Error(err))
			}
		}()
	}

	carts, err := cart.NewManager(cart.ManagerDeps{
		StorageFactory: cartFactory,
		Logger:         logger.Named("cart"),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart manager", zap.Error(err))
	}

	var checkoutService *checkout.Service
	if strings.TrimSpace(cfg.Stripe.APIKey) != "" {
		checkoutService, err = checkout.NewService(checkout.ServiceDeps{
			APIKey:     cfg.Stripe.APIKey,
			Currency:   cfg.Stripe.Currency,
			SuccessURL: cfg.Stripe.SuccessURL,
			CancelURL:  cfg.Stripe.CancelURL,
			Logger:     logger.Named("checkout"),
		})
		if err != nil {
			logger.Fatal("failed to initialise checkout service", zap.Error(err))
		}
	} else {
		logger.Warn("stripe api key not set; checkout routes disabled")
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithReadinessChecks(readinessChecks(cfg, firestoreProvider)...),
	)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger),
		observability.TraceMiddleware(),
		observability.RequestLoggerMiddleware(),
		observability.RecoveryMiddleware(logger),
		session.Middleware(),
	}

	opts := []handlers.Option{
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithNavRoutes(handlers.NewNavHandlers(navigation).Routes),
		handlers.WithCartRoutes(handlers.NewCartHandlers(carts, prices).Routes),
	}
	if catalogService != nil {
		opts = append(opts, handlers.WithShopRoutes(handlers.NewShopHandlers(catalogService, navigation, prices, pageOpts).Routes))
	}
	if contentService != nil {
		opts = append(opts, handlers.WithBlogRoutes(handlers.NewBlogHandlers(contentService, pageOpts).Routes))
	}
	if checkoutService != nil {
		opts = append(opts, handlers.WithCheckoutRoutes(handlers.NewCheckoutHandlers(checkoutService, carts).Routes))
	}

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("storefront api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	// Waits for in-flight cart writes before the storage backends go away.
	carts.Flush()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildCatalogService(logger *zap.Logger, cfg config.Config, pageOpts pagination.Options) *catalog.Service {
	if strings.TrimSpace(cfg.Commerce.StoreURL) == "" {
		logger.Warn("commerce store url not set; shop routes disabled")
		return nil
	}

	httpClient := &http.Client{Timeout: cfg.Commerce.Timeout}

	woo, err := catalog.NewWooClient(catalog.WooClientDeps{
		BaseURL:        cfg.Commerce.StoreURL,
		ConsumerKey:    cfg.Commerce.ConsumerKey,
		ConsumerSecret: cfg.Commerce.ConsumerSecret,
		HTTPClient:     httpClient,
	})
	if err != nil {
		logger.Fatal("failed to initialise commerce client", zap.Error(err))
	}

	deps := catalog.ServiceDeps{
		Rest:       woo,
		Pagination: pageOpts,
	}

	if endpoint := strings.TrimSpace(cfg.Commerce.GraphQLURL); endpoint != "" {
		gql, err := catalog.NewGraphQLClient(catalog.GraphQLClientDeps{
			Endpoint:   endpoint,
			HTTPClient: httpClient,
		})
		if err != nil {
			logger.Fatal("failed to initialise graphql client", zap.Error(err))
		}
		deps.Categories = gql
	}

	if apiKey := strings.TrimSpace(cfg.Printful.APIKey); apiKey != "" {
		printful, err := catalog.NewPrintfulClient(catalog.PrintfulClientDeps{
			APIKey:     apiKey,
			HTTPClient: httpClient,
		})
		if err != nil {
			logger.Fatal("failed to initialise printful client", zap.Error(err))
		}
		deps.Fulfilment = printful
	}

	service, err := catalog.NewService(deps)
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}
	return service
}

func buildContentService(logger *zap.Logger, cfg config.Config) *cms.Service {
	deps := cms.ServiceDeps{Logger: logger.Named("cms")}

	if endpoint := strings.TrimSpace(cfg.CMS.BaseURL); endpoint != "" {
		remote, err := cms.NewRemoteClient(cms.RemoteClientDeps{
			Endpoint:   endpoint,
			HTTPClient: &http.Client{Timeout: cfg.CMS.Timeout},
		})
		if err != nil {
			logger.Fatal("failed to initialise remote cms client", zap.Error(err))
		}
		deps.Remote = remote
	}

	if dir := strings.TrimSpace(cfg.CMS.ContentDir); dir != "" {
		local, err := cms.NewLocalStore(dir)
		if err != nil {
			logger.Fatal("failed to initialise local content store", zap.Error(err))
		}
		deps.Local = local
	}

	if deps.Remote == nil && deps.Local == nil {
		logger.Warn("no content source configured; blog routes disabled")
		return nil
	}

	service, err := cms.NewService(deps)
	if err != nil {
		logger.Fatal("failed to initialise content service", zap.Error(err))
	}
	return service
}

func buildCartStorageFactory(ctx context.Context, logger *zap.Logger, cfg config.Config) (cart.StorageFactory, *pfirestore.Provider, error) {
	switch cfg.Cart.Backend {
	case config.CartBackendFirestore:
		provider := pfirestore.NewProvider(cfg.Firestore)
		// Dial eagerly so a misconfigured backend fails at startup instead of
		// on the first cart request.
		client, err := provider.Client(ctx)
		if err != nil {
			return nil, nil, err
		}
		factory := func(sessionID string) (cart.Storage, error) {
			return cart.NewFirestoreStorage(client, storageKey(cfg.Cart.Namespace, sessionID))
		}
		return factory, provider, nil

	case config.CartBackendFile, "":
		if err := os.MkdirAll(cfg.Cart.StateDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create cart state dir: %w", err)
		}
		logger.Info("cart state persisted to disk", zap.String("dir", cfg.Cart.StateDir))
		factory := func(sessionID string) (cart.Storage, error) {
			return cart.NewFileStorage(cfg.Cart.StateDir, storageKey(cfg.Cart.Namespace, sessionID))
		}
		return factory, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown cart backend %q", cfg.Cart.Backend)
	}
}

func storageKey(namespace, sessionID string) string {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return sessionID
	}
	return namespace + "-" + sessionID
}

func readinessChecks(cfg config.Config, provider *pfirestore.Provider) []handlers.ReadinessCheck {
	checks := []handlers.ReadinessCheck{}

	if provider != nil {
		checks = append(checks, handlers.ReadinessCheck{
			Name: "firestore",
			Probe: func(ctx context.Context) error {
				_, err := provider.Client(ctx)
				return err
			},
		})
	}

	if cfg.Cart.Backend == config.CartBackendFile || cfg.Cart.Backend == "" {
		checks = append(checks, handlers.ReadinessCheck{
			Name: "cart-state-dir",
			Probe: func(ctx context.Context) error {
				info, err := os.Stat(cfg.Cart.StateDir)
				if err != nil {
					return err
				}
				if !info.IsDir() {
					return fmt.Errorf("%s is not a directory", cfg.Cart.StateDir)
				}
				return nil
			},
		})
	}

	return checks
}
