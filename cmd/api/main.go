package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/qualclamps/storefront/internal/admin"
	"github.com/qualclamps/storefront/internal/cart"
	"github.com/qualclamps/storefront/internal/catalog"
	"github.com/qualclamps/storefront/internal/checkout"
	"github.com/qualclamps/storefront/internal/common"
	"github.com/qualclamps/storefront/internal/config"
	"github.com/qualclamps/storefront/internal/events"
	"github.com/qualclamps/storefront/internal/health"
	"github.com/qualclamps/storefront/internal/lock"
	"github.com/qualclamps/storefront/internal/notify"
	"github.com/qualclamps/storefront/internal/obs"
	"github.com/qualclamps/storefront/internal/order"
	"github.com/qualclamps/storefront/internal/payment"
	"github.com/qualclamps/storefront/internal/ratelimit"
	"github.com/qualclamps/storefront/internal/resilience"
	"github.com/qualclamps/storefront/internal/security"
	"github.com/qualclamps/storefront/internal/shipping"
	"github.com/qualclamps/storefront/internal/storage/jsonstore"
)

func main() {
	cfg := config.MustLoad()

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "storefront-api",
			Endpoint:      cfg.TracingEndpoint,
			Exporter:      "otlp",
			SamplingRatio: cfg.TracingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis metrics")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	store, err := jsonstore.New(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("open data directory")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("create upload directory")
	}

	validate := validator.New()

	var mailer common.EmailSender = common.NopEmailSender{}
	if cfg.SMTPHost != "" {
		mailer = common.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}
	}
	emailNotifier := &notify.EmailNotifier{
		Mail:       mailer,
		Enabled:    cfg.EmailEnabled,
		SalesEmail: cfg.SalesEmail,
		Currency:   cfg.CurrencyCode,
		Log:        &logger,
		Failures:   obs.EmailFailuresTotal,
	}
	bus := &events.Bus{Notifiers: []events.Notifier{emailNotifier}, Logger: &logger}

	catalogSvc := &catalog.Service{
		Categories: store.Categories(),
		Products:   store.Products(),
	}
	catalogHandler := catalog.Handlers{
		Svc: catalogSvc,
		Samples: func(weightKg float64) any {
			return shipping.SampleQuotes(weightKg, cfg.CurrencyCode)
		},
	}
	catalogAdmin := catalog.AdminHandlers{Svc: catalogSvc, UploadDir: cfg.UploadDir, Validate: validate}

	cartSvc := &cart.Service{
		Store:    &cart.RedisStore{Client: redisClient, TTL: cfg.CartTTL},
		Products: store.Products(),
	}
	cartHandler := cart.Handlers{Svc: cartSvc, Ops: obs.CartOperationsTotal}
	session := cart.SessionCookie{
		Name:     cfg.SessionCookieName,
		TTL:      cfg.CartTTL,
		Secure:   cfg.SessionSecure,
		SameSite: cfg.SessionSameSite,
	}

	paypalBreaker := resilience.NewBreaker(5, 0.5, 30*time.Second).
		WithTarget("paypal").
		WithLogger(logger)
	paypal := payment.PayPal{
		ClientID: cfg.PayPalClientID,
		Secret:   cfg.PayPalSecret,
		BaseURL:  cfg.PayPalBaseURL,
		Sandbox:  cfg.PayPalMode != "live",
		Transport: resilience.HTTPClient{
			Client:      &http.Client{Timeout: 30 * time.Second},
			Breaker:     paypalBreaker,
			MaxAttempts: 3,
			BaseBackoff: 200 * time.Millisecond,
			Jitter:      0.2,
		},
	}

	checkoutSvc := &checkout.Service{
		Cart:      cartSvc,
		Orders:    store.Orders(),
		Payments:  paypal,
		Pending:   &checkout.RedisPendingStore{Client: redisClient, TTL: cfg.PendingOrderTTL},
		Bus:       bus,
		Validate:  validate,
		Locks:     &lock.Locker{R: redisClient},
		Currency:  cfg.CurrencyCode,
		ReturnURL: cfg.CheckoutReturnURL,
		CancelURL: cfg.CheckoutCancelURL,
	}
	checkoutHandler := checkout.Handlers{Svc: checkoutSvc, OrdersPlaced: obs.OrdersPlacedTotal}

	orderHandler := order.Handlers{Repo: store.Orders()}
	orderAdmin := order.AdminHandlers{Repo: store.Orders(), Bus: bus}

	shippingHandler := shipping.Handlers{Currency: cfg.CurrencyCode, QuotesServed: obs.ShippingQuotesTotal}
	contactHandler := notify.Handlers{Bus: bus, Validate: validate}

	adminHandler := admin.Handlers{Auth: admin.Auth{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		Secret:       []byte(cfg.JWTSecret),
		TokenTTL:     cfg.AdminTokenTTL,
	}}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}
	limited := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitEnabled {
		limited = ratelimit.Handler{
			Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:"},
			Config:  ratelimit.PerIP(cfg.RateLimitWindow, cfg.RateLimitMax),
			OnError: func(err error) {
				logger.Warn().Err(err).Msg("rate limiter unavailable")
			},
		}.Middleware
	}

	buckets := obs.ParseBucketsCSV(cfg.MetricsBucketsCSV)
	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, buckets, nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if cfg.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.IsProduction()}.Middleware)
	r.Use(security.BodyLimit{Max: 10 << 20}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	healthHandler := health.Handler{
		Checker:      health.Probe{Redis: redisClient, DataDir: cfg.DataDir},
		RedisTimeout: 300 * time.Millisecond,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/categories", catalogHandler.ListCategories)
		v.Get("/categories/{folder}", catalogHandler.GetCategory)
		v.Get("/categories/{folder}/products/{slug}", catalogHandler.GetProduct)

		v.Get("/shipping-info/{country}", shippingHandler.Info)
		v.Get("/shipping-policy", shippingHandler.Policy)

		v.With(limited).Post("/contact", contactHandler.Contact)

		v.Route("/cart", func(c chi.Router) {
			c.Use(session.Middleware)
			c.Get("/", cartHandler.View)
			c.Group(func(g chi.Router) {
				g.Use(limited)
				g.Post("/items", cartHandler.Add)
				g.Post("/items/update", cartHandler.UpdateQuantity)
				g.Post("/items/remove", cartHandler.Remove)
				g.Post("/clear", cartHandler.Clear)
			})
		})

		v.Route("/checkout", func(c chi.Router) {
			c.Use(session.Middleware)
			c.With(limited, idem.Middleware).Post("/", checkoutHandler.PlaceOrder)
			c.Get("/paypal/confirm", checkoutHandler.ConfirmPayPal)
			c.Get("/paypal/cancel", checkoutHandler.CancelPayPal)
		})

		v.Get("/orders/{id}", orderHandler.Get)

		v.Route("/admin", func(a chi.Router) {
			a.With(limited).Post("/login", adminHandler.Login)

			a.Group(func(g chi.Router) {
				g.Use(adminHandler.RequireAdmin)
				g.Post("/categories", catalogAdmin.CreateCategory)
				g.Delete("/categories/{folder}", catalogAdmin.DeleteCategory)
				g.Post("/categories/{folder}/products", catalogAdmin.CreateProduct)
				g.Put("/categories/{folder}/products/{slug}", catalogAdmin.UpdateProduct)
				g.Delete("/categories/{folder}/products/{slug}", catalogAdmin.DeleteProduct)
				g.Post("/uploads", catalogAdmin.UploadImage)

				g.Get("/orders", orderAdmin.List)
				g.Get("/orders/{id}", orderAdmin.Get)
				g.Patch("/orders/{id}", orderAdmin.UpdateStatus)
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	stop, stopCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopCancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-stop.Done():
		logger.Info().Msg("shutdown signal received")
		health.SetReady(false)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}
}
