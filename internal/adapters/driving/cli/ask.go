package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// stdinIsTerminal reports whether standard input is interactive.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask a single question",
	Long: `Ask UrbanBot one question and print the answer.

The question is taken from the arguments, or from standard input when no
arguments are given and input is piped. Mention "email" or "send" to have
the report e-mailed to the configured receiver.

Examples:
  urbanbot ask "how many accidents happened today?"
  echo "air quality in Pune" | urbanbot ask
  urbanbot ask --json "latest traffic jams"`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "Print the answer envelope as JSON")
	rootCmd.AddCommand(askCmd)
}

// answerJSON is the --json rendering of an Answer.
type answerJSON struct {
	RequestID string   `json:"request_id"`
	Topic     string   `json:"topic"`
	Text      string   `json:"text"`
	State     string   `json:"state"`
	Trail     []string `json:"trail"`
	Rows      int      `json:"rows"`
	Delivery  string   `json:"delivery"`
}

func newAnswerJSON(a domain.Answer) answerJSON {
	trail := make([]string, len(a.Trail))
	for i, s := range a.Trail {
		trail[i] = s.String()
	}
	return answerJSON{
		RequestID: a.RequestID,
		Topic:     a.Topic.String(),
		Text:      a.Text,
		State:     a.State.String(),
		Trail:     trail,
		Rows:      a.Rows,
		Delivery:  a.Delivery.String(),
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}

	question := strings.Join(args, " ")
	if strings.TrimSpace(question) == "" && !stdinIsTerminal() {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading question: %w", err)
		}
		question = string(data)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return errors.New("a question is required")
	}

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	answer, askErr := rt.Assistant().Ask(cmd.Context(), question)

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(newAnswerJSON(answer)); err != nil {
			return fmt.Errorf("encoding answer: %w", err)
		}
		return askErr
	}

	// Text already carries the delivery status line.
	if answer.Text != "" {
		fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
	}
	return askErr
}
