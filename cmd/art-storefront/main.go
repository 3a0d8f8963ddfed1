package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aaravmahajanofficial/art-storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/art-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/art-storefront/internal/cache"
	"github.com/aaravmahajanofficial/art-storefront/internal/cart"
	"github.com/aaravmahajanofficial/art-storefront/internal/config"
	"github.com/aaravmahajanofficial/art-storefront/internal/health"
	"github.com/aaravmahajanofficial/art-storefront/internal/messaging"
	"github.com/aaravmahajanofficial/art-storefront/internal/messaging/kafka"
	"github.com/aaravmahajanofficial/art-storefront/internal/metrics"
	repository "github.com/aaravmahajanofficial/art-storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/art-storefront/internal/services"
	"github.com/aaravmahajanofficial/art-storefront/internal/telemetry"
	"github.com/aaravmahajanofficial/art-storefront/pkg/bring"
	"github.com/aaravmahajanofficial/art-storefront/pkg/sendGrid"
	"github.com/aaravmahajanofficial/art-storefront/pkg/stripe"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const version = "1.0.0"

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	shutdownTracing, err := telemetry.InitTracerProvider(context.Background(), &cfg.Otel)
	if err != nil {
		slog.Error("❌ Error initializing tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	defer func() {
		if err := redisCache.Close(); err != nil {
			slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
		}
	}()

	// Event publishing
	var publisher messaging.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = kafka.NewKafkaPublisher(cfg.Kafka.Brokers)
		slog.Info("Publishing order events to Kafka", slog.Any("brokers", cfg.Kafka.Brokers))
	} else {
		publisher = messaging.NewNopPublisher()
		slog.Warn("No Kafka brokers configured, order events are dropped")
	}

	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("⚠️ Error closing event publisher", slog.String("error", err.Error()))
		}
	}()

	// Session carts
	snapshots := cart.NewSnapshotStore(redisCache, cfg.Cart.SnapshotVersion, cfg.Cart.SnapshotMaxAge)
	cartManager := cart.NewManager(snapshots, cart.Options{
		SweepInterval:  cfg.Cart.SweepInterval,
		PersistTimeout: cfg.Cart.PersistTimeout,
	}, cfg.Cart.IdleTimeout)

	// External clients
	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey)
	sendGridClient := sendGrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	carrier := bring.NewClient(bring.Config{
		BaseURL:        cfg.Shipping.BaseURL,
		APIUID:         cfg.Shipping.APIUID,
		APIKey:         cfg.Shipping.APIKey,
		CustomerNumber: cfg.Shipping.CustomerNumber,
		FromPostalCode: cfg.Shipping.FromPostalCode,
		Products:       cfg.Shipping.Products,
		Timeout:        cfg.Shipping.Timeout,
	}, nil)

	// Services
	reservations := repository.NewReservationRepo(redisClient)
	discountService := service.NewDiscountService(repos.Discounts)
	shippingService := service.NewShippingService(carrier, redisCache, cfg.Shipping.CacheTTL)
	cartService := service.NewCartService(cartManager, repos.Products, reservations, discountService, cfg.Cart.ReservationTTL)
	notificationService := service.NewNotificationService(publisher, sendGridClient, cfg.Kafka.OrderPlacedTopic)
	orderService := service.NewOrderService(repos.Products, repos.Orders, reservations, discountService, shippingService, stripeClient,
		notificationService, cartService, service.OrderOptions{
			Tolerance: cfg.Pricing.Tolerance,
			Currency:  cfg.Stripe.Currency,
		})

	// Handlers
	discountLimit := middleware.RateLimit(repository.NewRateLimiter(redisClient, "discount_attempts",
		cfg.RateLimit.MaxAttempts, cfg.RateLimit.WindowSize))
	sessions := middleware.NewSessionMiddleware([]byte(cfg.Security.JWTKey), cfg.Security.SessionTokenTTL)
	sessionHandler := handlers.NewSessionHandler(sessions, cartService)
	cartHandler := handlers.NewCartHandler(cartService)
	discountHandler := handlers.NewDiscountHandler(discountService)
	shippingHandler := handlers.NewShippingHandler(shippingService)
	orderHandler := handlers.NewOrderHandler(orderService)

	healthChecker, err := health.NewHealthHandler(cfg, &health.Endpoints{StripeClient: stripeClient})
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", version))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.Handle("GET /health", healthChecker.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.HandleFunc("POST /api/v1/sessions", sessionHandler.CreateSession())
	routerMux.HandleFunc("DELETE /api/v1/sessions", sessions.Require(sessionHandler.EndSession()))
	routerMux.HandleFunc("GET /api/v1/cart", sessions.Require(cartHandler.GetCart()))
	routerMux.HandleFunc("DELETE /api/v1/cart", sessions.Require(cartHandler.ClearCart()))
	routerMux.HandleFunc("POST /api/v1/cart/items", sessions.Require(cartHandler.AddItem()))
	routerMux.HandleFunc("PATCH /api/v1/cart/items", sessions.Require(cartHandler.UpdateQuantity()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items", sessions.Require(cartHandler.RemoveItem()))
	routerMux.HandleFunc("POST /api/v1/cart/discount", sessions.Require(discountLimit(cartHandler.ApplyDiscount())))
	routerMux.HandleFunc("DELETE /api/v1/cart/discount", sessions.Require(cartHandler.ClearDiscount()))
	routerMux.HandleFunc("POST /api/v1/discounts/validate", discountLimit(discountHandler.ValidateDiscount()))
	routerMux.HandleFunc("POST /api/v1/shipping/options", shippingHandler.GetShippingOptions())
	routerMux.HandleFunc("POST /api/v1/orders", sessions.Require(orderHandler.CreateOrder()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", sessions.Require(orderHandler.GetOrder()))

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = metrics.Middleware(routerMux)(handler)
	handler = otelhttp.NewHandler(handler, "http.server")

	// Setup http server
	server := http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.String("error", err.Error()))
			done <- syscall.SIGTERM
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	// stop every cart store so queued snapshots are written before Redis closes
	cartManager.Close()
	slog.Info("✅ Cart stores stopped", slog.Int("remaining", cartManager.Len()))

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
	}
}
