package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	httpapi "github.com/custodia-labs/urbanbot/internal/adapters/driving/http"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

// defaultServeAddr is loopback only: /api/v1/ask and /api/v1/chat can send
// e-mail and spend LLM quota.
const defaultServeAddr = "127.0.0.1:8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON API server.

Routes:
  POST /api/v1/ask      {"question": "..."}
  GET  /api/v1/summary  dashboard counters
  GET  /api/v1/chat     websocket: {"type":"ask","question":"..."}
  GET  /healthz         liveness
  GET  /metrics         Prometheus metrics

The server listens on 127.0.0.1:8080 unless --addr says otherwise.
Prompt templates under ~/.urbanbot/prompts are reloaded when edited.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", defaultServeAddr, "Listen address; use :8080 to accept remote clients")
	serveCmd.Flags().Bool("no-metrics", false, "Do not expose /metrics")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	noMetrics, err := cmd.Flags().GetBool("no-metrics")
	if err != nil {
		return fmt.Errorf("getting no-metrics flag: %w", err)
	}

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	ports := &httpapi.Ports{
		Assistant: rt.Assistant(),
		Dashboard: rt.Dashboard(),
	}
	if !noMetrics {
		ports.Metrics = rt.MetricsHandler()
	}

	server, err := httpapi.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		if err := rt.WatchPrompts(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("prompt reload disabled: %v", err)
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "UrbanBot API listening on %s\n", addr)
	return server.Run(ctx, addr)
}
