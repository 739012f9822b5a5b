package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/urbanbot/internal/adapters/driven/notify/smtp"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/oauth"
)

// authFlowRunner is replaced in tests.
var authFlowRunner = func(cmd *cobra.Command, flow *oauth.Flow) (*oauth2.Token, error) {
	return flow.Run(cmd.Context(), func(url string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorise UrbanBot:\n\n  %s\n\n", url)
	})
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Obtain credentials for external services",
}

var authGmailCmd = &cobra.Command{
	Use:   "gmail",
	Short: "Authorise report delivery through Gmail with OAuth",
	Long: `Run the browser consent flow for the Gmail SMTP scope and print a
refresh token for XOAUTH2 delivery.

EMAIL_OAUTH_CLIENT_ID and EMAIL_OAUTH_CLIENT_SECRET must be set to a
Google OAuth client of type "Desktop app". Store the printed token in
EMAIL_OAUTH_REFRESH_TOKEN and set EMAIL_AUTH=xoauth2.`,
	RunE: runAuthGmail,
}

func init() {
	authCmd.AddCommand(authGmailCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthGmail(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	email := settings.Email
	if email.OAuthClientID == "" || email.OAuthClientSecret == "" {
		return errors.New("EMAIL_OAUTH_CLIENT_ID and EMAIL_OAUTH_CLIENT_SECRET must be set")
	}

	flow := &oauth.Flow{Config: oauth2.Config{
		ClientID:     email.OAuthClientID,
		ClientSecret: email.OAuthClientSecret,
		Endpoint:     smtp.GoogleEndpoint,
		Scopes:       []string{smtp.GmailScope},
	}}
	token, err := authFlowRunner(cmd, flow)
	if err != nil {
		return fmt.Errorf("gmail authorisation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Authorisation complete. Add these to your environment or .env file:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  EMAIL_AUTH=xoauth2")
	fmt.Fprintf(out, "  EMAIL_OAUTH_REFRESH_TOKEN=%s\n", token.RefreshToken)
	return nil
}
