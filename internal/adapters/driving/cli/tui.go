package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/messages"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Open the terminal UI on its menu: Chat, Dashboard, Settings and Help.

Chat answers questions the same way "urbanbot ask" does and keeps the
transcript on screen. Dashboard shows the KPI counts and city breakdowns.
Settings lists the resolved configuration.

Keys:
  up/k, down/j   move in lists
  enter          select, or send in chat
  pgup/pgdn      scroll the transcript
  ctrl+l         clear the conversation
  r              refresh dashboard or settings
  esc            back to the menu
  ctrl+c         quit`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTUI(cmd, messages.ViewMenu)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, start messages.ViewType) (err error) {
	// Covers runtime setup and view construction; the program loop has
	// its own recovery.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "urbanbot tui: panic: %v\n%s\n", r, debug.Stack())
			err = fmt.Errorf("tui panic: %v", r)
		}
	}()

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	app, err := tui.NewApp(tui.NewPorts(rt.Assistant(), rt.Dashboard(), settingsService), start)
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
