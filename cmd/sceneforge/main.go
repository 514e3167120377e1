package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sceneforge/internal/interfaces/cli/migrate"
	"sceneforge/internal/interfaces/cli/server"
)

func main() {
	// Missing .env is fine; configuration falls back to files and defaults.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "sceneforge",
		Short: "SceneForge entitlement and payment settlement service",
		Long:  `SceneForge manages per-user entitlements, quota accounting and payment settlement for the content generation platform.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
