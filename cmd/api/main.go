package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/staysocial/staysocial-backend/internal/analytics"
	"github.com/staysocial/staysocial-backend/internal/api"
	"github.com/staysocial/staysocial-backend/internal/approvals"
	"github.com/staysocial/staysocial-backend/internal/config"
	gdb "github.com/staysocial/staysocial-backend/internal/db"
	"github.com/staysocial/staysocial-backend/internal/generator"
	"github.com/staysocial/staysocial-backend/internal/jobs"
	"github.com/staysocial/staysocial-backend/internal/log"
	"github.com/staysocial/staysocial-backend/internal/media"
	"github.com/staysocial/staysocial-backend/internal/metrics"
	"github.com/staysocial/staysocial-backend/internal/platforms"
	"github.com/staysocial/staysocial-backend/internal/posts"
	"github.com/staysocial/staysocial-backend/internal/store"
	"github.com/staysocial/staysocial-backend/internal/ws"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting StaySocial API server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"timezone", cfg.Calendar.Location.String(),
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("staysocial-api")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	// Business data lives in memory for the process lifetime
	db, err := gdb.NewDatabase(&gdb.Config{Type: "memory"}, logger)
	if err != nil {
		logger.Fatalw("Failed to create database", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gdb.ConnectAndMigrate(ctx, db, gdb.AllSchemas()); err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	logger.Infow("Database initialized")

	// Redis when reachable, otherwise in-process cache and pubsub
	cache, err := store.NewCache(cfg.Cache.RedisAddr, logger, metricsObj)
	if err != nil {
		logger.Fatalw("Failed to setup cache", "error", err)
	}
	defer cache.Close()

	if err := cache.Ping(ctx); err != nil {
		logger.Fatalw("Cache ping failed", "error", err)
	}
	logger.Infow("Cache ready", "in_memory", cache.IsInMemoryMode())

	// Object storage for uploads, placeholder URLs otherwise
	var uploader media.Uploader = media.PlaceholderUploader{}
	if cfg.Storage.Enabled() {
		s3Uploader, err := media.NewS3Uploader(
			cfg.Storage.Endpoint,
			cfg.Storage.Region,
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			cfg.Storage.Bucket,
			cfg.Storage.PublicURL,
		)
		if err != nil {
			logger.Fatalw("Failed to setup object storage", "error", err)
		}
		if s3Uploader != nil {
			uploader = s3Uploader
			logger.Infow("Uploads go to object storage", "bucket", cfg.Storage.Bucket)
		}
	}

	// Setup services
	catalog := platforms.NewService()
	postsSvc := posts.NewService(db, cache, metricsObj, logger)
	approvalsSvc := approvals.NewService(db, postsSvc, cache, metricsObj, logger)

	generateRunner := jobs.NewRunner(jobs.Config{
		Kind:      "generate",
		Retention: cfg.Tasks.Retention,
		Channel:   store.ChannelTasks,
	}, logger, metricsObj, cache)
	defer generateRunner.Close()

	uploadRunner := jobs.NewRunner(jobs.Config{
		Kind:      "upload",
		Retention: cfg.Tasks.Retention,
		Channel:   store.ChannelTasks,
	}, logger, metricsObj, cache)
	defer uploadRunner.Close()

	generatorSvc := generator.NewService(generator.NewTemplateProvider(catalog), generateRunner, cache, cfg.Tasks.GeneratorDelay, logger)
	library := media.NewLibrary(db, uploader, uploadRunner, cache, cfg.Tasks.UploadDelay, metricsObj, logger)
	analyticsSvc := analytics.NewService(postsSvc, approvalsSvc, cache, cfg.Analytics.TTL, cfg.Calendar.Location, logger)

	if cfg.Seed.Fixtures {
		seedFixtures(ctx, cfg, postsSvc, approvalsSvc, library, logger)
	}

	// Create context for background services
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	go analyticsSvc.Watch(bgCtx)

	// Setup WebSocket hub and SSE handler
	origins := cfg.Security.CORSAllowedOrigins
	if cfg.PublicURL != "" {
		origins = append([]string{cfg.PublicURL}, origins...)
	}
	wsHub := ws.NewHub(cache, origins, logger, metricsObj)
	sseHandler := ws.NewSSEHandler(cache, 0, logger, metricsObj)
	go wsHub.Run(bgCtx)

	// Setup API handler and middleware
	handler := api.NewHandler(api.Deps{
		Posts:     postsSvc,
		Approvals: approvalsSvc,
		Generator: generatorSvc,
		Library:   library,
		Analytics: analyticsSvc,
		Platforms: catalog,
		Hub:       wsHub,
		SSE:       sseHandler,
		Database:  db,
		Cache:     cache,
		Location:  cfg.Calendar.Location,
	}, logger)
	middleware := api.NewMiddleware(logger, metricsObj)

	router := handler.Routes(middleware, api.RouterConfig{
		CORSOrigins:    origins,
		RateLimitRPM:   cfg.Security.RateLimitRPM,
		RequestTimeout: 15 * time.Second,
		MetricsHandler: metricsHandler,
	})
	logger.Infow("CORS configured", "allowed_origins", origins)

	// Setup HTTP server; no WriteTimeout so /v1/stream and /v1/ws stay open
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		// Streams never finish on their own; stop them before draining requests
		bgCancel()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}

func seedFixtures(
	ctx context.Context,
	cfg *config.Config,
	postsSvc *posts.Service,
	approvalsSvc *approvals.Service,
	library *media.Library,
	logger *zap.SugaredLogger,
) {
	now := time.Now().In(cfg.Calendar.Location)

	n, err := postsSvc.Seed(ctx, posts.NewSeeder(cfg.Seed.Random).Drafts(now, 14))
	if err != nil {
		logger.Fatalw("Failed to seed posts", "error", err)
	}
	logger.Infow("Seeded demo posts", "count", n, "seed", cfg.Seed.Random)

	if n, err = approvalsSvc.Seed(ctx, approvals.Fixtures(now)); err != nil {
		logger.Fatalw("Failed to seed approvals", "error", err)
	}
	logger.Infow("Seeded approval queue", "count", n)

	if n, err = library.Seed(ctx, media.Fixtures()); err != nil {
		logger.Fatalw("Failed to seed asset library", "error", err)
	}
	logger.Infow("Seeded asset library", "count", n)
}
