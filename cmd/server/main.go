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

	"nlvx-chat/internal/config"
	"nlvx-chat/internal/database"
	"nlvx-chat/internal/events"
	"nlvx-chat/internal/handlers"
	"nlvx-chat/internal/llm"
	"nlvx-chat/internal/router"
	"nlvx-chat/internal/services"
)

func main() {
	log.Println("🚀 Starting NLVX chat relay...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Relay Events (optional Redis) ────
	var publisher events.Publisher = events.Noop{}
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("✗ Redis connection failed, relay events disabled: %v", err)
		} else {
			defer redisClient.Close()
			publisher = events.NewRedisPublisher(redisClient, events.DefaultChannel)
			log.Printf("✓ Redis connected, relay events on %q", events.DefaultChannel)
		}
	}

	// ──── Step 3: Initialize Upstream Provider ────
	// A missing key is not fatal: each chat request answers with a
	// configuration error until the key is set.
	var provider llm.Provider
	switch {
	case cfg.ProviderAPIKey() == "":
		log.Printf("✗ No API key for provider %q, chat requests will fail", cfg.LLMProvider)
	case cfg.LLMProvider == config.ProviderGemini:
		gemini, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("✗ Gemini client initialization failed: %v", err)
			break
		}
		defer gemini.Close()
		provider = gemini
		log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)
	default:
		provider = llm.NewGroqClient(llm.GroqConfig{
			APIKey:      cfg.GroqAPIKey,
			BaseURL:     cfg.GroqBaseURL,
			Model:       cfg.GroqModel,
			VisionModel: cfg.GroqVisionModel,
		})
		log.Printf("✓ Groq client initialized (%s)", cfg.GroqModel)
	}

	// ──── Step 4: Initialize Services & Handlers ────
	chatService := services.NewChatService(
		provider,
		services.NewPersonaSet(),
		services.NewInterceptor(),
		services.NewRetrier(cfg.MaxAttempts, cfg.RetryBaseDelay),
	)
	chatHandler := handlers.NewChatHandler(chatService, publisher, cfg.RequestTimeout, cfg.MaxBodyBytes, cfg.FrontendURL)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(chatHandler, cfg.FrontendURL)

	// No WriteTimeout: replies stream for as long as the model talks. Each
	// chat request carries its own deadline instead.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
		chatHandler.Drain()
	}()

	log.Printf("✓ NLVX chat relay ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/chat", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/chat/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	<-shutdownDone
}
