// Package smtp provides an e-mail Notifier over SMTP submission using go-mail.
// Report bodies are sent as text and as HTML rendered with goldmark.
package smtp

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

// Ensure Notifier implements the interface.
var _ driven.Notifier = (*Notifier)(nil)

// Default configuration values.
const (
	DefaultHost    = "smtp.gmail.com"
	DefaultPort    = 587
	DefaultTimeout = 15 * time.Second
)

// GmailScope grants SMTP access with XOAUTH2.
const GmailScope = "https://mail.google.com/"

// GoogleEndpoint is the token endpoint used to refresh XOAUTH2 credentials.
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// Config holds configuration for the SMTP notifier.
type Config struct {
	// Host is the submission server (default: smtp.gmail.com).
	Host string

	// Port is the submission port (default: 587).
	Port int

	// User is the sender address and login.
	User string

	// Password is the app password for PLAIN auth.
	Password string

	// Receiver is the fixed report recipient.
	Receiver string

	// Auth selects PLAIN or XOAUTH2 (default: PLAIN).
	Auth domain.EmailAuth

	// TokenSource supplies access tokens for XOAUTH2.
	TokenSource oauth2.TokenSource

	// AllowPlaintext disables STARTTLS. Only for local test servers.
	AllowPlaintext bool

	// Timeout bounds the dial and each SMTP command (default: 15s).
	Timeout time.Duration
}

// Notifier sends reports to a single receiver as plain text with an HTML
// alternative.
// A new SMTP session is opened per message so the value is safe for
// concurrent use.
type Notifier struct {
	cfg Config
}

// NewNotifier validates cfg and returns a notifier.
func NewNotifier(cfg Config) (*Notifier, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Auth == "" {
		cfg.Auth = domain.EmailAuthPlain
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.User == "" || cfg.Receiver == "" {
		return nil, fmt.Errorf("%w: smtp: EMAIL_USER and EMAIL_RECEIVER are required", domain.ErrMissingConfig)
	}

	switch cfg.Auth {
	case domain.EmailAuthPlain:
		if cfg.Password == "" {
			return nil, fmt.Errorf("%w: smtp: EMAIL_PASSWORD", domain.ErrMissingConfig)
		}
	case domain.EmailAuthXOAuth2:
		if cfg.TokenSource == nil {
			return nil, fmt.Errorf("%w: smtp: xoauth2 needs a token source", domain.ErrMissingConfig)
		}
	default:
		return nil, fmt.Errorf("%w: smtp auth %q", domain.ErrUnsupportedProvider, cfg.Auth)
	}

	return &Notifier{cfg: cfg}, nil
}

// NewFromSettings builds a notifier from resolved settings. For XOAUTH2 the
// refresh token is exchanged against endpoint; pass GoogleEndpoint for Gmail.
func NewFromSettings(ctx context.Context, s domain.EmailSettings, endpoint oauth2.Endpoint) (*Notifier, error) {
	cfg := Config{
		Host:     s.Host,
		Port:     s.Port,
		User:     s.User,
		Password: s.Password,
		Receiver: s.Receiver,
		Auth:     s.Auth,
	}
	if s.Auth == domain.EmailAuthXOAuth2 {
		cfg.TokenSource = RefreshTokenSource(ctx, s, endpoint)
	}
	return NewNotifier(cfg)
}

// RefreshTokenSource returns a caching token source that refreshes the
// access token from the stored refresh token.
func RefreshTokenSource(ctx context.Context, s domain.EmailSettings, endpoint oauth2.Endpoint) oauth2.TokenSource {
	oc := &oauth2.Config{
		ClientID:     s.OAuthClientID,
		ClientSecret: s.OAuthClientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{GmailScope},
	}
	return oc.TokenSource(ctx, &oauth2.Token{RefreshToken: s.OAuthRefreshToken})
}

// Send delivers msg to the configured receiver.
func (n *Notifier) Send(ctx context.Context, msg driven.Message) error {
	m, err := n.buildMessage(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDispatchFailed, err)
	}

	opts, err := n.clientOptions()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDispatchFailed, err)
	}

	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("%w: smtp client: %w", domain.ErrDispatchFailed, err)
	}

	logger.Debug("Sending %q to %s via %s:%d", msg.Subject, n.cfg.Receiver, n.cfg.Host, n.cfg.Port)
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: smtp send: %w", domain.ErrDispatchFailed, err)
	}
	return nil
}

// Close releases resources.
func (n *Notifier) Close() error {
	return nil
}

func (n *Notifier) buildMessage(msg driven.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(n.cfg.User); err != nil {
		return nil, fmt.Errorf("sender address: %w", err)
	}
	if err := m.To(n.cfg.Receiver); err != nil {
		return nil, fmt.Errorf("receiver address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	htmlBody, err := renderHTML(msg.Subject, msg.Body)
	if err != nil {
		logger.Warn("sending %q as plain text only: %v", msg.Subject, err)
		return m, nil
	}
	m.AddAlternativeString(mail.TypeTextHTML, htmlBody)
	return m, nil
}

func (n *Notifier) clientOptions() ([]mail.Option, error) {
	policy := mail.TLSMandatory
	if n.cfg.AllowPlaintext {
		policy = mail.NoTLS
	}

	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTLSPolicy(policy),
		mail.WithTimeout(n.cfg.Timeout),
		mail.WithUsername(n.cfg.User),
	}

	switch n.cfg.Auth {
	case domain.EmailAuthXOAuth2:
		tok, err := n.cfg.TokenSource.Token()
		if err != nil {
			return nil, fmt.Errorf("refresh oauth2 token: %w", err)
		}
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthXOAUTH2),
			mail.WithPassword(tok.AccessToken),
		)
	default:
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithPassword(n.cfg.Password),
		)
	}
	return opts, nil
}
