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

	"github.com/redis/go-redis/v9"

	"nutriboard-backend/internal/config"
	"nutriboard-backend/internal/database"
	"nutriboard-backend/internal/handlers"
	"nutriboard-backend/internal/middleware"
	"nutriboard-backend/internal/repository"
	"nutriboard-backend/internal/router"
	"nutriboard-backend/internal/services"
	"nutriboard-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting NutriBoard Backend...")
	ctx := context.Background()

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Profile Storage ────
	var store services.ProfileStore
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		if err := database.RunMigrations(ctx, pool, "migrations"); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")

		store = repository.NewProfileRepo(pool)
	} else {
		store = repository.NewSeededMemoryProfileRepo()
		log.Println("✓ Using in-memory profile store (DATABASE_URL not set)")
	}

	// ──── Step 3: Redis Cache and Pub/Sub ────
	var cache services.ProfileCache
	var pubsub *redis.Client
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()
		cache = repository.NewProfileCache(redisClients.Cache)
		pubsub = redisClients.PubSub
		log.Println("✓ Redis connected")
	} else {
		log.Println("✓ Redis disabled (REDIS_URL not set)")
	}

	// ──── Step 4: Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, cfg.DefaultUserID)
	userData := services.NewUserDataWebhook(cfg.UserDataWebhookURL, nil)
	profileService := services.NewProfileService(
		store,
		cache,
		userData,
		cfg.DefaultUserID,
		time.Duration(cfg.ProfileCacheTTLMinutes)*time.Minute,
	)

	devProxy := services.DevProxy{Enabled: cfg.IsDevelopment(), Prefix: cfg.ProxyPrefix}
	resolver := services.NewChatResolver(
		profileService,
		services.WithDevProxy(devProxy),
		services.WithBaseURL(cfg.PublicBaseURL),
	)
	if cfg.ChatbotWebhookURL == "" {
		log.Println("⚠ N8N_CHATBOT_WEBHOOK not set, chat uses canned replies")
	}

	var webhookProxy http.Handler
	if devProxy.Enabled && cfg.ChatbotWebhookURL != "" {
		p, err := handlers.NewWebhookProxy(cfg.ChatbotWebhookURL, cfg.ProxyPrefix)
		if err != nil {
			log.Printf("⚠ Dev webhook proxy disabled: %v", err)
		} else {
			webhookProxy = p
			log.Printf("✓ Dev webhook proxy mounted at %s", cfg.ProxyPrefix)
		}
	}

	// ──── Step 5: Initialize Handlers ────
	dashboardHandler := handlers.NewDashboardHandler(profileService)
	chatHandler := handlers.NewChatHandler(resolver, cfg.ChatbotWebhookURL)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(pubsub, jwtAuth, resolver, cfg.ChatbotWebhookURL)
	if pubsub == nil {
		profileService.OnProfileUpdated(wsHub.NotifyProfileUpdated)
	}
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start Profile Refresher ────
	refresher := services.NewProfileRefresher(profileService, cfg.DefaultUserID, cfg.ProfileRefreshSchedule)
	if err := refresher.Start(); err != nil {
		log.Fatalf("✗ Profile refresher failed: %v", err)
	}

	// ──── Step 8: Start HTTP Server ────
	chatLimiter := middleware.NewRateLimiter(cfg.ChatRateLimitPerMinute, time.Minute)
	r := router.New(
		jwtAuth,
		chatLimiter,
		dashboardHandler,
		chatHandler,
		wsHub,
		webhookProxy,
		cfg.ProxyPrefix,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		refresher.Stop()
		chatLimiter.Stop()
		wsHub.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ NutriBoard Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/chat/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
