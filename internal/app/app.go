// Package app wires the storefront API server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/catalog"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/handler"
	"github.com/xenking/storefront/internal/storage/memory"
	"github.com/xenking/storefront/internal/storage/postgres"
	"github.com/xenking/storefront/internal/storefront"
	"github.com/xenking/storefront/pkg/health"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// stores are the repositories selected by configuration.
type stores struct {
	products product.Repository
	orders   order.Repository
	pool     *pgxpool.Pool
}

func (s *stores) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// openStores uses PostgreSQL when a database URL is configured and keeps
// everything in memory otherwise.
func openStores(ctx context.Context, lg *zap.Logger, cfg *Config) (*stores, error) {
	if cfg.DatabaseURL == "" {
		products, err := loadCatalog(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		lg.Info("Using in-memory storage", zap.Int("products", len(products)))
		return &stores{
			products: catalog.NewMemory(products),
			orders:   memory.NewOrderRepository(),
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "create db pool")
	}
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	lg.Info("Using PostgreSQL storage")
	return &stores{
		products: postgres.NewProductRepository(pool),
		orders:   postgres.NewOrderRepository(pool),
		pool:     pool,
	}, nil
}

func loadCatalog(path string) ([]product.Product, error) {
	if path == "" {
		return catalog.Default()
	}
	products, err := catalog.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load catalog %q", path)
	}
	return products, nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	st, err := openStores(ctx, lg, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	orderService := order.NewService(st.orders)

	var registry *storefront.Registry
	metrics, err := storefront.NewMetrics(m.MeterProvider().Meter("storefront"), func() int {
		return registry.Len()
	})
	if err != nil {
		return errors.Wrap(err, "create metrics")
	}
	registry = storefront.NewRegistry(storefront.Options{
		Config:   cfg.Storefront(),
		Products: st.products,
		Orders:   orderService,
		Logger:   lg,
		Metrics:  metrics,
	}, cfg.Registry())

	// Health check service.
	healthSvc := health.New(nil, lg.Named("health"))
	for _, c := range livenessChecks(cfg.Health) {
		healthSvc.AddLiveness(c)
	}
	healthSvc.AddReadiness(health.Check{
		Name:             "sessions",
		Timeout:          time.Second,
		Func:             registry.Headroom,
		FailureThreshold: 1,
	})
	if st.pool != nil {
		healthSvc.AddReadiness(health.Check{
			Name:    "postgres",
			Timeout: 5 * time.Second,
			Func:    health.PingCheck(st.pool),
		})
	}
	healthSvc.Start(ctx, cfg.Health.Interval)
	defer healthSvc.Stop()
	healthSvc.SetReady(true)

	limiter := httpmiddleware.NewRateLimiter(httpmiddleware.RateLimitConfig{
		Max:     cfg.RateLimit.Max,
		Window:  cfg.RateLimit.Window,
		KeyFunc: httpmiddleware.SessionOrIP(handler.SessionCookie, handler.SessionHeader),
	})

	api := handler.New(handler.Config{
		ImageBaseURL: cfg.ImageBaseURL,
		TestHelpers:  cfg.TestHelpers,
		SecureCookie: cfg.SecureCookie,
	}, registry, st.products, orderService).Router()
	api.Get("/livez", healthSvc.LiveEndpoint)
	api.Get("/readyz", healthSvc.ReadyEndpoint)

	routeFinder := httpmiddleware.MakeRouteFinder(api)
	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(api,
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", handler.SessionHeader, httpmiddleware.RequestIDHeader},
				ExposeHeaders:    []string{handler.SessionHeader, httpmiddleware.RequestIDHeader},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			limiter.Middleware(),
			httpmiddleware.RequestID(),
			httpmiddleware.Instrument("storefront-api", routeFinder, m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(routeFinder),
		),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return registry.Run(gctx)
	})
	g.Go(func() error {
		return limiter.Run(gctx)
	})
	g.Go(func() error {
		// Graceful shutdown: stop advertising readiness, drain, then stop.
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		if ctx.Err() != nil {
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	return g.Wait()
}

func livenessChecks(cfg HealthConfig) []health.Check {
	return []health.Check{
		{
			Name:    "goroutines",
			Timeout: time.Second,
			Func:    health.GoroutineCountCheck(cfg.MaxGoroutines),
		},
		{
			Name:    "gc_pause",
			Timeout: time.Second,
			Func:    health.GCMaxPauseCheck(cfg.MaxGCPause),
		},
	}
}
