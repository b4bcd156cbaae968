// Package main provides the resume_coach command line: the HTTP shell, batch analysis,
// terminal chat and the analysis worker.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-coach/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "resume_coach",
	Short:         "Resume analyzer and persona chat",
	Long:          "Resume Coach scores resumes for ATS compatibility against a job role, suggests improvements and hosts a persona-driven LLM chat.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
}

// loadConfig reads the configuration named by --config, overridden by the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
