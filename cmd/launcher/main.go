package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"salondesk/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	target := chooseURL(context.Background(), cfg.Launcher)
	log.Printf("[Launcher] opening %s", target)

	if err := open(target); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
