package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"together-backend/internal/config"
	"together-backend/internal/entity"
	"together-backend/internal/handlers"
	"together-backend/internal/integrations"
	"together-backend/internal/middleware"
	"together-backend/internal/repository"
	"together-backend/internal/services"
	"together-backend/internal/store"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Open the document store
	docStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer docStore.Close()

	if err := docStore.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping document store")
	}
	log.Info().Str("driver", cfg.Storage.Driver).Msg("Document store ready")

	// Entity registry over the store
	registry := entity.NewRegistry(docStore)

	// Repositories
	userRepo := repository.NewUserRepository(registry)
	pairRepo := repository.NewPairRepository(registry)

	// Integration adapters
	uploader, err := buildUploader(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build upload chain")
	}
	invoker, err := buildInvoker(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build LLM chain")
	}
	musicSearch := integrations.NewMusicSearch()

	// Services
	userService := services.NewUserService(userRepo, cfg.JWT.Secret)
	pairService := services.NewPairService(pairRepo, userRepo)
	presenceService := services.NewPresenceService(registry)
	sessionService := services.NewSessionService(registry)
	checkInService := services.NewCheckInService(registry)
	relationshipService := services.NewRelationshipService(registry)
	insightService := services.NewInsightService(registry, invoker)
	pushService, err := services.NewPushService(cfg.Push, userRepo, pairService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push service")
	}
	if pushService.Enabled() {
		log.Info().Str("topic", cfg.Push.Topic).Msg("Push notifications enabled")
	}

	wsHub := services.NewWSHub(pairService)
	registry.SetPublisher(wsHub)

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	pairHandler := handlers.NewPairHandler(pairService, wsHub)
	entityHandler := handlers.NewEntityHandler(registry, pushService)
	uploadHandler := handlers.NewUploadHandler(uploader)
	llmHandler := handlers.NewLLMHandler(invoker)
	musicHandler := handlers.NewMusicHandler(musicSearch)
	presenceHandler := handlers.NewPresenceHandler(presenceService)
	sessionHandler := handlers.NewSessionHandler(sessionService, pushService)
	checkInHandler := handlers.NewCheckInHandler(checkInService)
	relationshipHandler := handlers.NewRelationshipHandler(relationshipService)
	insightHandler := handlers.NewInsightHandler(insightService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService, pairService, presenceService)

	// The catalog search fans out to a third-party API with its own quota.
	searchLimiter := middleware.NewLimiterStore(30, 10, 5*time.Minute)
	defer searchLimiter.Stop()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.CreateUser)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Get("/me", userHandler.Me)
			r.Post("/users/push-token", userHandler.RegisterPushToken)

			r.Post("/pairs", pairHandler.CreatePair)
			r.Delete("/pairs/{pair_id}", pairHandler.DeletePair)

			r.Get("/entities/{collection}", entityHandler.List)
			r.Post("/entities/{collection}", entityHandler.Create)
			r.Patch("/entities/{collection}/{id}", entityHandler.Update)
			r.Delete("/entities/{collection}/{id}", entityHandler.Delete)

			r.Post("/uploads", uploadHandler.Upload)
			r.Post("/llm", llmHandler.Invoke)

			r.With(middleware.RateLimit(searchLimiter)).
				Get("/music/search", musicHandler.Search)

			r.Post("/presence/heartbeat", presenceHandler.Heartbeat)
			r.Get("/presence", presenceHandler.List)

			r.Post("/sessions/start", sessionHandler.Start)
			r.Post("/sessions/{id}/stop", sessionHandler.Stop)
			r.Get("/sessions/active", sessionHandler.Active)

			r.Post("/checkins", checkInHandler.Submit)
			r.Get("/checkins/today", checkInHandler.Today)

			r.Get("/relationship", relationshipHandler.Get)
			r.Patch("/relationship", relationshipHandler.Update)

			r.Post("/insights/generate", insightHandler.Generate)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStore selects the document store backend from configuration.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.Storage.Postgres.DSN())
	case "mongo":
		return store.NewMongoStore(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database)
	case "memory", "":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// buildUploader assembles the upload provider chain: Cloudinary first, the
// S3 bucket as fallback. Unconfigured providers skip themselves.
func buildUploader(ctx context.Context, cfg *config.Config) (*integrations.Uploader, error) {
	s3Provider, err := integrations.NewS3Provider(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}
	return integrations.NewUploader(
		integrations.NewCloudinaryProvider(cfg.Cloudinary),
		s3Provider,
	), nil
}

// buildInvoker assembles the LLM provider chain; the deterministic mock is
// always appended so local development works with no keys at all.
func buildInvoker(ctx context.Context, cfg *config.Config) (*integrations.Invoker, error) {
	gemini, err := integrations.NewGeminiProvider(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	return integrations.NewInvoker(
		integrations.NewOpenAIProvider(cfg.LLM),
		gemini,
	), nil
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
