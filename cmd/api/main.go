package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salondesk/internal/api"
	"salondesk/internal/config"
	"salondesk/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.Bootstrap(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer appContainer.Close()

	httpServer := &http.Server{
		Addr:              ":" + appConfig.Server.APIPort,
		Handler:           api.NewRouter(appContainer.APIServices()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// event streams only end when the hub closes
	httpServer.RegisterOnShutdown(appContainer.Events.Close)

	go func() {
		log.Printf("Starting API server on :%s", appConfig.Server.APIPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: API server shutdown: %v", err)
	}
}
