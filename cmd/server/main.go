package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"killrvideo-backend/internal/config"
	"killrvideo-backend/internal/database"
	"killrvideo-backend/internal/handlers"
	"killrvideo-backend/internal/middleware"
	"killrvideo-backend/internal/repository"
	"killrvideo-backend/internal/router"
	"killrvideo-backend/internal/services"
	"killrvideo-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting KillrVideo Discovery Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	videoRepo := repository.NewVideoRepo(pool)
	ratingRepo := repository.NewRatingRepo(pool)
	commentRepo := repository.NewCommentRepo(pool)
	flagRepo := repository.NewFlagRepo(pool)

	// ──── Step 5: Initialize Embedding Client ────
	embedder, err := services.NewGeminiEmbedder(
		cfg.GeminiAPIKey,
		cfg.EmbeddingModel,
		cfg.EmbeddingDim,
		cfg.GeminiConcurrentReqs,
	)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer embedder.Close()
	log.Println("✓ Gemini embedding client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)

	var metadata services.MetadataLookup
	if cfg.YouTubeLookupEnabled {
		metadata = services.NewYouTubeService()
		log.Println("✓ YouTube metadata lookup enabled")
	}

	queue := worker.NewQueue(redisClient)
	aggregator := services.NewRatingAggregator(ratingRepo)
	tagIndex := services.NewTagIndex(videoRepo)
	similarity := services.NewSimilaritySearch(videoRepo)
	trending := services.NewTrendingRanker(videoRepo)
	engine := services.NewDiscoveryEngine(videoRepo, embedder, metadata, similarity, trending, tagIndex, queue)

	// ──── Initialize Handlers ────
	videoHandler := handlers.NewVideoHandler(engine)
	searchHandler := handlers.NewSearchHandler(engine)
	ratingHandler := handlers.NewRatingHandler(aggregator, engine)
	commentHandler := handlers.NewCommentHandler(commentRepo, engine)
	moderationHandler := handlers.NewModerationHandler(flagRepo)

	// ──── Step 6: Start Embedding Backfill Workers ────
	workerPool := worker.NewPool(redisClient, videoRepo, embedder, cfg.MaxEmbeddingRetries, cfg.WorkerCount)
	workerPool.Start()

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		videoHandler,
		searchHandler,
		ratingHandler,
		commentHandler,
		moderationHandler,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Discovery backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
