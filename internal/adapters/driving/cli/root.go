// Package cli provides the urbanbot command line.
package cli

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Runtime is the wired application the commands drive.
type Runtime interface {
	Assistant() driving.Assistant
	Dashboard() driving.DashboardService
	MetricsHandler() http.Handler
	Rules() []domain.TopicRule
	WatchPrompts(ctx context.Context) error
	Close() error
}

// RuntimeFactory builds a Runtime from the current settings.
type RuntimeFactory func(ctx context.Context) (Runtime, error)

var (
	settingsService driving.SettingsService
	runtimeFactory  RuntimeFactory
)

var rootCmd = &cobra.Command{
	Use:   "urbanbot",
	Short: "Smart city assistant",
	Long: `UrbanBot answers questions about accidents, traffic, air quality,
road damage, crowds and citizen complaints using the city event database
and a generative language model.

Configuration is read from ~/.urbanbot/config.toml, a .env file in the
working directory and the process environment, in increasing priority.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvironment,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file to load")
}

// SetSettingsService sets the settings service used by config commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetRuntimeFactory sets how commands obtain a wired Runtime.
func SetRuntimeFactory(f RuntimeFactory) {
	runtimeFactory = f
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadEnvironment(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger.SetVerbose(verbose)

	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile == "" {
		return nil
	}
	// Existing environment variables win over the file.
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	logger.Debug("loaded environment from %s", envFile)
	return nil
}

func openRuntime(ctx context.Context) (Runtime, error) {
	if runtimeFactory == nil {
		return nil, errors.New("runtime not configured")
	}
	return runtimeFactory(ctx)
}
