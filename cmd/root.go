package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "remember-me",
	Short: "Photo roster service with facial analysis",
	Long: `Remember Me is the backend for a photo-based people roster. It stores
captured photos with per-person metadata, reconciles them into profiles,
and relays face analysis requests to a pluggable analysis engine
(local subprocess, OpenAI, or Gemini).`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
