package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/urbanbot/internal/adapters/driven/ai"
	"github.com/custodia-labs/urbanbot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/cli"
	"github.com/custodia-labs/urbanbot/internal/app"
	"github.com/custodia-labs/urbanbot/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configDir, err := file.DefaultConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return err
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	cli.SetSettingsService(settingsService)
	cli.SetRuntimeFactory(func(ctx context.Context) (cli.Runtime, error) {
		rt, err := app.New(ctx, settingsService, app.Options{})
		if err != nil {
			return nil, err
		}
		return rt, nil
	})

	// cobra prints the error itself.
	return cli.ExecuteContext(ctx)
}
