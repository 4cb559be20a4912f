package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"salondesk/internal/config"
	"salondesk/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:          "crmctl",
		Short:        "Maintenance commands for the salon support CRM",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newMigrateCmd(),
		newImportSpecialCmd(),
		newBuildHistoryCmd(),
		newAnalyzeCmd(),
		newReconcileCmd(),
		newScrapeCmd(),
		newSeedCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withContainer loads config, builds the container and closes it after fn
func withContainer(ctx context.Context, fn func(c *container.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	c, err := container.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
