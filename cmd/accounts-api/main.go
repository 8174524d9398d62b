// Command accounts-api serves the CultureCart account, authentication and
// artisan profile endpoints.
//
// @title                       CultureCart Accounts API
// @version                     1.0
// @description                 Account, authentication and artisan profile service of the CultureCart marketplace.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/culturecart/accounts-api/internal/api"
	"github.com/culturecart/accounts-api/internal/api/handler"
	"github.com/culturecart/accounts-api/internal/core/ports"
	"github.com/culturecart/accounts-api/internal/core/service"
	"github.com/culturecart/accounts-api/internal/infrastructure/config"
	"github.com/culturecart/accounts-api/internal/infrastructure/db/mongo"
	"github.com/culturecart/accounts-api/internal/infrastructure/db/redis"
	"github.com/culturecart/accounts-api/internal/infrastructure/queue"
	"github.com/culturecart/accounts-api/internal/infrastructure/storage"
	"github.com/culturecart/accounts-api/internal/pkg/password"
	"github.com/culturecart/accounts-api/internal/pkg/token"
	"github.com/culturecart/accounts-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("accounts-api stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "accounts-api"})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Local(),
		Service: "accounts-api",
		Env:     cfg.Env,
	})
	if cfg.UsesInsecureSecret() {
		log.Warn().Str("env", cfg.Env).Msg("JWT_SECRET not set, signing with the insecure development secret")
	}
	if cfg.UsesInsecureAdminPassword() {
		log.Warn().Str("env", cfg.Env).Msg("ADMIN_PASSWORD not set, seeding the default admin with the development password")
	}

	// --- MongoDB ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     "accounts-api",
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	checks := map[string]handler.HealthCheck{
		"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	// --- Redis (login throttle) ---
	var throttle ports.LoginThrottle = ports.NopThrottle{}
	if cfg.Redis.Enabled {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, login throttling disabled")
		} else {
			defer rdb.Close()
			throttle = redis.NewLoginThrottle(rdb, cfg.Throttle.MaxFailures, cfg.Throttle.Window,
				redis.WithEmailLimit(cfg.Throttle.MaxFailuresPerEmail))
			checks["redis"] = func(ctx context.Context) error { return pingRedis(ctx, rdb) }
		}
	}

	// --- Upload storage ---
	var (
		store     ports.ObjectStorage
		uploadDir string
	)
	switch cfg.Uploads.Backend {
	case "minio":
		store, err = storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
			PublicURL: cfg.Minio.PublicURL,
		})
	default:
		var disk *storage.Disk
		disk, err = storage.NewDisk(cfg.Uploads.Dir)
		if disk != nil {
			store, uploadDir = disk, disk.Dir()
		}
	}
	if err != nil {
		return err
	}

	// --- Core ---
	users := mongo.NewUserRepository(db)
	sessions := mongo.NewSessionRepository(db)
	hasher := password.NewHasher(password.DefaultCost, 0)
	tokens := token.NewJWT(cfg.JWTSecret)

	recorder := queue.NewSessionRecorder(sessions, cfg.Audit.Workers, cfg.Audit.QueueSize, log)
	recorder.Start(ctx)

	authSvc := service.NewAuthService(users, hasher, tokens, recorder, throttle, log)
	profileSvc := service.NewProfileService(users, store, cfg.Uploads.MaxFiles, log)
	adminSvc := service.NewAdminService(users, sessions, hasher, log)

	if created, err := adminSvc.EnsureDefaultAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Error().Err(err).Msg("default admin bootstrap failed")
	} else if created {
		log.Info().Str("email", cfg.Admin.Email).Msg("default admin created")
	}

	e := api.NewRouter(api.Dependencies{
		Auth:           authSvc,
		Profiles:       profileSvc,
		Admin:          adminSvc,
		Tokens:         tokens,
		Users:          users,
		HealthChecks:   checks,
		UploadDir:      uploadDir,
		MaxUploadMB:    cfg.Uploads.MaxMB,
		TrustedProxies: cfg.TrustedProxies,
		Logger:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	return shutdown(e.Shutdown, recorder, log)
}

func shutdown(stopHTTP func(context.Context) error, recorder *queue.SessionRecorder, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := stopHTTP(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := recorder.Stop(ctx); err != nil {
		log.Warn().Err(err).Msg("session recorder did not drain before deadline")
	}
	log.Info().Msg("accounts-api stopped")
	return errors.Join(errs...)
}

func pingRedis(ctx context.Context, rdb *goredis.Client) error {
	return rdb.Ping(ctx).Err()
}
