package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a conversation",
	Long: `Start a conversation with UrbanBot.

On a terminal this opens the chat view of the TUI. When input is piped,
each line is asked as a separate question and answers are printed in
order. Type "exit" or "quit" to leave the line mode.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if stdinIsTerminal() {
		return runTUI(cmd, messages.ViewChat)
	}
	return runChatLines(cmd)
}

// runChatLines answers one question per input line.
// Generation failures are shown and the loop continues.
func runChatLines(cmd *cobra.Command) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	var history []domain.Turn
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		history = append(history, domain.Turn{Role: domain.RoleUser, Content: line})
		fmt.Fprintf(cmd.OutOrStdout(), "you> %s\n", line)

		answer, err := rt.Assistant().Ask(cmd.Context(), line)
		if err != nil && !errors.Is(err, domain.ErrGenerationFailed) {
			return err
		}
		history = append(history, domain.Turn{Role: domain.RoleAssistant, Content: answer.Text})
		fmt.Fprintf(cmd.OutOrStdout(), "bot> %s\n", answer.Text)
		fmt.Fprintln(cmd.OutOrStdout())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d questions answered.\n", len(history)/2)
	return nil
}
