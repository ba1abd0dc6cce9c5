package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"trading-chat-be/internal/bootstrap"
	"trading-chat-be/internal/config"
	"trading-chat-be/internal/server"
	"trading-chat-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to bootstrap: %v", err)
	}
	defer container.Close()

	// Tracer goes in before the server so otelfiber sees the provider
	shutdownTracer := tracer.InitTracer("trading-chat-backend", cfg.Tracing, container.Logger)
	defer shutdownTracer(context.Background())

	// 3. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.StartBackground(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	// 4. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 5. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
