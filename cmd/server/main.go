package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/internal/auth"
	"github.com/lkhn/wealth-backend/internal/config"
	"github.com/lkhn/wealth-backend/internal/database"
	"github.com/lkhn/wealth-backend/internal/handlers"
	"github.com/lkhn/wealth-backend/internal/logging"
	"github.com/lkhn/wealth-backend/internal/metrics"
	"github.com/lkhn/wealth-backend/internal/mfa"
	"github.com/lkhn/wealth-backend/internal/middleware"
	"github.com/lkhn/wealth-backend/internal/notify"
	"github.com/lkhn/wealth-backend/internal/routes"
	"github.com/lkhn/wealth-backend/internal/services"
	"github.com/lkhn/wealth-backend/pkg/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Init("info")
		zap.S().Fatalw("invalid configuration", "error", err)
	}

	logger := logging.Init(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		zap.S().Fatalw("server stopped", "error", err)
	}
}

type backends struct {
	mongo    *mongo.Client
	mongoDB  *mongo.Database
	postgres *sql.DB
	redis    *redis.Client
}

func (b *backends) Close() error {
	var err error
	if b.mongo != nil {
		err = multierr.Append(err, database.Disconnect(b.mongo))
	}
	if b.postgres != nil {
		err = multierr.Append(err, b.postgres.Close())
	}
	if b.redis != nil {
		err = multierr.Append(err, b.redis.Close())
	}
	return err
}

func connect(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{}
	var err error

	b.mongo, b.mongoDB, err = database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	if b.postgres, err = database.ConnectPostgres(ctx, cfg.PostgresURI); err != nil {
		return nil, multierr.Append(err, b.Close())
	}
	if b.redis, err = database.ConnectRedis(ctx, cfg.RedisURI); err != nil {
		return nil, multierr.Append(err, b.Close())
	}
	return b, nil
}

func ensureSchema(ctx context.Context, b *backends) error {
	return multierr.Combine(
		database.InitPostgresTables(ctx, b.postgres),
		services.EnsureFeedbackIndexes(ctx, b.mongoDB),
		services.EnsurePresenceIndexes(ctx, b.mongoDB),
		services.EnsureForumIndexes(ctx, b.mongoDB),
	)
}

func newMailer(cfg *config.Config) (notify.Mailer, error) {
	if cfg.Mail.Host == "" {
		zap.S().Warn("SMTP_HOST not set; notification emails are logged instead of sent")
		return notify.LogMailer{}, nil
	}
	return notify.NewSMTPMailer(cfg.Mail)
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			zap.S().Errorw("closing backends", "error", err)
		}
	}()

	if err := ensureSchema(ctx, b); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	mailer, err := newMailer(cfg)
	if err != nil {
		return err
	}
	dispatcher, err := notify.NewDispatcher(mailer, notify.Options{
		AdminEmail:        cfg.AdminEmail,
		FeedbackRecipient: cfg.FeedbackRecipient,
		Metrics:           m,
	})
	if err != nil {
		return err
	}

	var encryptionKey []byte
	if cfg.EncryptionKey != "" {
		if encryptionKey, err = utils.ParseEncryptionKey(cfg.EncryptionKey); err != nil {
			return err
		}
	} else {
		zap.S().Warn("ENCRYPTION_KEY not set; admin MFA is unavailable")
	}

	admins := services.NewAdminStore(b.postgres)
	h := &handlers.Handler{
		Feedback:          services.NewFeedbackStore(b.mongoDB),
		Waitlist:          services.NewWaitlistStore(b.postgres),
		Presence:          services.NewPresenceStore(b.mongoDB),
		Forum:             services.NewForumService(services.NewForumStore(b.mongoDB), services.NewCacheService(b.redis, services.DefaultCacheTTL)),
		Notifier:          dispatcher,
		Admins:            admins,
		MFA:               mfa.NewService(admins, encryptionKey),
		Tokens:            auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Denylist:          auth.NewDenylist(b.redis),
		Metrics:           m,
		FeedbackRecipient: cfg.FeedbackRecipient,
		NotifyOnFeedback:  cfg.NotifyOnFeedback,
	}

	if cfg.CloudinaryEnabled() {
		uploader, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			zap.S().Warnw("cloudinary unavailable; uploads disabled", "error", err)
		} else {
			h.Uploader = uploader
		}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer, middleware.RequestLogger)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.IsProduction() {
		r.Use(middleware.ProductionSecurity()...)
	}

	routes.SetupRoutes(r, h, routes.Options{
		WriteLimit: middleware.RedisRateLimit(b.redis, middleware.RateLimitMaxRequests, middleware.RateLimitWindow),
		Metrics:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.S().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
