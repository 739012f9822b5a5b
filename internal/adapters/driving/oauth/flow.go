package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoRefreshToken is returned when the provider issues no refresh token.
var ErrNoRefreshToken = errors.New("provider did not return a refresh token")

// Flow runs a PKCE authorization-code flow through a loopback redirect.
type Flow struct {
	// Config holds client credentials, endpoint and scopes.
	// RedirectURL is overwritten with the callback server address.
	Config oauth2.Config

	// Browse opens the authorization URL. Defaults to OpenBrowser.
	Browse func(url string) error

	// Timeout bounds the wait for the redirect (default: 5m).
	Timeout time.Duration

	// PortStart and PortEnd bound the callback port (default: 8085-8185).
	PortStart, PortEnd int
}

// Run obtains an offline token. announce receives the authorization URL
// before the browser is opened, so users can copy it by hand.
func (f *Flow) Run(ctx context.Context, announce func(url string)) (*oauth2.Token, error) {
	if f.Config.ClientID == "" || f.Config.ClientSecret == "" {
		return nil, errors.New("oauth client id and secret are required")
	}
	browse := f.Browse
	if browse == nil {
		browse = OpenBrowser
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	start, end := f.PortStart, f.PortEnd
	if start == 0 {
		start, end = 8085, 8185
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	server := NewCallbackServer(0, state)
	if err := server.StartInRange(start, end); err != nil {
		return nil, err
	}
	defer server.Stop() //nolint:errcheck

	cfg := f.Config
	cfg.RedirectURL = server.RedirectURI()
	verifier := oauth2.GenerateVerifier()
	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	if announce != nil {
		announce(authURL)
	}
	// The URL has been announced; a missing browser is not fatal.
	_ = browse(authURL)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	code, err := server.WaitForCode(waitCtx)
	if err != nil {
		return nil, err
	}

	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	return token, nil
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
