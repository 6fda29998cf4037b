package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civicsync-be/config"
	"civicsync-be/logger"
	"civicsync-be/middlewares"
	"civicsync-be/routes"
	"civicsync-be/session"
	"civicsync-be/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg := config.Load()
	l := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if cfg.JWTSecret == "" {
		l.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, client, err := openStore(ctx, cfg, l)
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to open store")
	}
	if client != nil {
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				l.Error().Err(err).Msg("MongoDB disconnect")
			}
		}()
	}
	defer s.Close()

	deps := routes.Deps{
		Store:         s,
		Sessions:      session.NewMockProvider(cfg.AdminEmail, cfg.SessionLatency, l),
		JWTSecret:     cfg.JWTSecret,
		Domain:        cfg.Domain,
		Production:    cfg.Production(),
		LimiterPrefix: cfg.IssueLimitPrefix,
		IssueLimit:    cfg.IssueLimitPerDay,
	}

	if cfg.RedisAddress != "" {
		rdb, err := config.ConnectRedis(ctx, cfg.RedisAddress, cfg.RedisPassword)
		if err != nil {
			l.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		deps.IssueLimiter = middlewares.RedisCounter{Client: rdb}
		l.Info().Str("addr", cfg.RedisAddress).Msg("Redis connection established successfully!")
	} else {
		l.Warn().Msg("REDIS_ADDRESS not set, issue reports are not rate limited")
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(l), middlewares.MetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.Setup(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	l.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("Server shutdown")
	}
}

// openStore builds the store, seeded from MongoDB when configured. An empty
// database gets the demo data written to it. The returned client is nil when
// running in memory.
func openStore(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*store.Store, *mongo.Client, error) {
	if cfg.MongoURI == "" {
		l.Warn().Msg("MONGODB_URI not set, running in memory")
		s := store.New(store.WithLogger(l))
		return s, nil, s.Restore(store.DefaultSeed(time.Now()))
	}

	db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}
	l.Info().Str("database", cfg.MongoDatabase).Msg("MongoDB connection established successfully!")

	fail := func(err error) (*store.Store, *mongo.Client, error) {
		_ = db.Client().Disconnect(context.Background())
		return nil, nil, err
	}

	mirror, err := store.NewMongoMirror(ctx, db)
	if err != nil {
		return fail(err)
	}

	snap, err := mirror.Load(ctx)
	if err != nil {
		return fail(err)
	}
	if snap.Empty() {
		snap = store.DefaultSeed(time.Now())
		if err := mirror.SaveSnapshot(ctx, snap); err != nil {
			return fail(err)
		}
		l.Info().Msg("Seeded empty database")
	}

	s := store.New(store.WithLogger(l), store.WithMirror(mirror))
	if err := s.Restore(snap); err != nil {
		return fail(err)
	}
	return s, db.Client(), nil
}
