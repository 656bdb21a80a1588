package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/cache"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/coupon"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/logging"
	"github.com/example/storefront/internal/payment/paystack"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	accessTokenExpiry  = 15 * time.Minute
	refreshTokenExpiry = 7 * 24 * time.Hour
	gatewayTimeout     = 15 * time.Second
	shutdownTimeout    = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateAPI(); err != nil {
		return err
	}

	logger, err := logging.New("api", cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("connected to postgres")

	var c cache.Cache = cache.NewMemoryCache()
	if cfg.RedisAddr != "" {
		rc, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, using in-process cache", zap.Error(err))
		} else {
			defer rc.Close()
			c = rc
			logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
		logger.Info("publishing events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	productRepo := store.NewProductRepository(db)
	productSvc := product.NewService(productRepo, c, logger)
	cartSvc := cart.NewService(store.NewCartRepository(db), productRepo, c, logger)
	couponSvc := coupon.NewService(store.NewCouponRepository(db), publisher, logger)
	orderSvc := order.NewService(store.NewOrderRepository(db), c, publisher, logger)
	userSvc := user.NewService(store.NewUserRepository(db), logger)

	gateway := paystack.NewClient(cfg.PaystackSecretKey, cfg.PaystackBaseURL, gatewayTimeout)
	checkoutSvc := checkout.NewService(gateway, orderSvc, couponSvc, cartSvc, productRepo, checkout.Config{
		Currency:    cfg.Currency,
		CallbackURL: cfg.CallbackURL(),
	}, logger)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		admin, err := userSvc.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
		logger.Info("admin account ready", zap.String("user_id", admin.ID))
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, accessTokenExpiry, refreshTokenExpiry)
	handlers := api.NewHandlers(api.Services{
		Products: productSvc,
		Carts:    cartSvc,
		Coupons:  couponSvc,
		Orders:   orderSvc,
		Checkout: checkoutSvc,
		Users:    userSvc,
		JWT:      jwtService,
		Sessions: auth.NewSessionStore(c),
	}, cfg.IsProduction(), logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handlers, jwtService, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
