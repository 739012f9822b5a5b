package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change settings",
	Long: `View and change UrbanBot settings.

Credentials (database password, API keys, SMTP password and OAuth
secrets) are read from the environment only and cannot be stored with
'config set'.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved settings and their source",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting in the config file",
	Example: `  urbanbot config set llm.model llama-3.1-8b-instant
  urbanbot config set timeouts.generation 45s`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check required settings and reach the LLM provider",
	RunE:  runConfigValidate,
}

func init() {
	configValidateCmd.Flags().Bool("offline", false, "Skip the LLM provider check")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	entries, err := settingsService.Entries()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
	for _, e := range entries {
		value := e.DisplayValue()
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, value, e.Source)
	}
	return w.Flush()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	offline, err := cmd.Flags().GetBool("offline")
	if err != nil {
		return fmt.Errorf("getting offline flag: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Required settings present.")

	if !settings.Email.IsConfigured() {
		fmt.Fprintln(cmd.OutOrStdout(), "E-mail delivery not configured; report requests will be answered without sending.")
	}

	if offline {
		return nil
	}
	if err := settingsService.ValidateLLMConfig(cmd.Context()); err != nil {
		return fmt.Errorf("LLM provider check failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "LLM provider %s reachable.\n", settings.LLM.Provider.Description())
	return nil
}
