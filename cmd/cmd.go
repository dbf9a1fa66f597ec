package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"twinflame-backend/internal/cache"
	"twinflame-backend/internal/config"
	"twinflame-backend/internal/database"
	"twinflame-backend/internal/handlers"
	"twinflame-backend/internal/metrics"
	"twinflame-backend/internal/middleware"
	"twinflame-backend/internal/repository"
	"twinflame-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
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

	// Connect to database and apply migrations
	db, err := database.Connect(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if err := database.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Optional user cache
	var userCache *cache.UserCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without user cache")
		} else {
			userCache = cache.NewUserCache(client)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("User cache enabled")
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	photoRepo := repository.NewPhotoRepository(db)

	// Initialize services
	verifier := services.NewJWTVerifier(cfg.Auth.JWTSecret)
	userService := services.NewUserService(userRepo, userCache)
	pairService := services.NewPairService(userRepo, userService)
	taskService := services.NewTaskService(taskRepo, completionRepo)
	truthDareService := services.NewTruthDareService(questionRepo, userRepo, userService)
	mediaService, err := services.NewMediaService(photoRepo, cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create media service")
	}
	pushService, err := services.NewPushService(cfg.Push)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push service")
	}
	hub := services.NewHub()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(registry)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	profileHandler := handlers.NewProfileHandler(userService)
	pairHandler := handlers.NewPairHandler(pairService, userService, hub, pushService, collector)
	taskHandler := handlers.NewTaskHandler(taskService, userService, hub, pushService, collector)
	truthDareHandler := handlers.NewTruthDareHandler(truthDareService, userService, hub, pushService, collector)
	galleryHandler := handlers.NewGalleryHandler(mediaService, userService)
	photoHandler := handlers.NewPhotoHandler(mediaService, userService)
	healthHandler := handlers.NewHealthHandler(db, userCache)
	wsHandler := handlers.NewWebSocketHandler(verifier, userService, hub)

	rateLimiter := middleware.NewRateLimiter(10, 20)
	defer rateLimiter.Stop()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(collector.Middleware)

	// Public routes
	r.Get("/api/health", healthHandler.Check)
	r.Handle("/metrics", metrics.Handler(registry))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(verifier))
		r.Use(rateLimiter.Middleware)

		r.Post("/api/auth/firebase", authHandler.Exchange)
		r.Get("/api/auth/me", authHandler.Me)
		r.Post("/api/auth/logout", authHandler.Logout)

		r.Get("/api/profile", profileHandler.Get)
		r.Put("/api/profile", profileHandler.Update)
		r.Put("/api/profile/push-token", profileHandler.UpdatePushToken)

		r.Get("/api/user/code", pairHandler.GetCode)
		r.Post("/api/user/link", pairHandler.Link)

		r.Get("/api/tasks/today", taskHandler.Today)
		r.Post("/api/tasks/complete", taskHandler.Complete)
		r.Post("/api/tasks/seed", taskHandler.Seed)
		r.Get("/api/tasks/history", taskHandler.History)
		r.Get("/api/tasks/completions", taskHandler.Completions)
		r.Delete("/api/tasks/completions/{id}", taskHandler.DeleteCompletion)
		r.Put("/api/tasks/{id}", taskHandler.Update)
		r.Delete("/api/tasks/{id}", taskHandler.Delete)

		r.Get("/api/truthdare/random", truthDareHandler.Random)
		r.Get("/api/truthdare/status", truthDareHandler.Status)
		r.Post("/api/truthdare/complete", truthDareHandler.CompleteTurn)
		r.Get("/api/truthdare/questions", truthDareHandler.Questions)
		r.Put("/api/truthdare/questions/{id}", truthDareHandler.UpdateQuestion)
		r.Delete("/api/truthdare/questions/{id}", truthDareHandler.DeleteQuestion)
		r.Post("/api/truthdare/seed", truthDareHandler.Seed)

		r.Get("/api/gallery/media", galleryHandler.Media)

		r.Post("/api/photos/upload-url", photoHandler.UploadURL)
		r.Post("/api/photos", photoHandler.Create)
		r.Get("/api/photos", photoHandler.List)
		r.Delete("/api/photos/{id}", photoHandler.Delete)
	})

	// WebSocket route
	r.Get("/ws", wsHandler.Serve)

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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
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
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
