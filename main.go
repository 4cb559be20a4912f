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

	"salondesk/internal/config"
	"salondesk/internal/container"
	"salondesk/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
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

	if err := appContainer.Scheduler.Start(ctx); err != nil {
		log.Printf("Warning: reconcile scheduler did not start: %v", err)
	}

	server, err := ui.NewServer(appContainer.APIServices(), ui.Options{
		Sheets:          appConfig.CRM.Sheets,
		Agents:          appConfig.CRM.Agents,
		ManagerPassword: appConfig.Auth.ManagerPassword,
		MaintenanceNote: appConfig.CRM.MaintenanceNote,
		GinMode:         appConfig.Server.GinMode,
	})
	if err != nil {
		log.Fatalf("Failed to initialize UI: %v", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// event streams only end when the hub closes
	httpServer.RegisterOnShutdown(appContainer.Events.Close)

	go func() {
		log.Printf("Starting CRM UI on http://localhost:%s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("UI server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: UI server shutdown: %v", err)
	}
}
