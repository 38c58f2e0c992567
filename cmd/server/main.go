package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/inkwell/backend/internal/auth"
	"github.com/ayush/inkwell/backend/internal/category"
	"github.com/ayush/inkwell/backend/internal/config"
	"github.com/ayush/inkwell/backend/internal/logger"
	"github.com/ayush/inkwell/backend/internal/middleware"
	"github.com/ayush/inkwell/backend/internal/posts"
	"github.com/ayush/inkwell/backend/internal/router"
	"github.com/ayush/inkwell/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.IsDev())
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect")
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("postgres migrate")
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect")
	}
	defer mongoClient.Disconnect(ctx)
	mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes")
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect")
	}
	defer rdb.Close()
	locker := store.NewRedisLocker(rdb, cfg.LockTTL, cfg.LockWait)

	// ── MinIO ────────────────────────────────────────────────
	minioStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("minio connect")
	}

	// ── Services & handlers ──────────────────────────────────
	tokens := auth.NewTokenManager(auth.StaticKey(cfg.JWTSecret))
	authSvc := auth.NewService(pgStore, tokens)
	postSvc := posts.NewService(mongoStore, pgStore, locker, minioStore)

	handler := router.New(router.Deps{
		Auth:        auth.NewHandler(authSvc, middleware.IdentityFrom),
		Categories:  category.NewHandler(pgStore),
		Posts:       posts.NewHandler(postSvc, cfg.MaxUploadBytes),
		Verifier:    authSvc,
		APIPrefix:   cfg.APIPrefix,
		CORSOrigins: cfg.CORSOrigins,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
