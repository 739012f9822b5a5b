package smtp

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

func validConfig() Config {
	return Config{
		User:     "urbanbot@example.com",
		Password: "app-password",
		Receiver: "ops@example.com",
	}
}

func TestNewNotifier_Defaults(t *testing.T) {
	n, err := NewNotifier(validConfig())

	require.NoError(t, err)
	assert.Equal(t, DefaultHost, n.cfg.Host)
	assert.Equal(t, DefaultPort, n.cfg.Port)
	assert.Equal(t, domain.EmailAuthPlain, n.cfg.Auth)
	assert.Equal(t, DefaultTimeout, n.cfg.Timeout)
	assert.NoError(t, n.Close())
}

func TestNewNotifier_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing user", func(c *Config) { c.User = "" }, domain.ErrMissingConfig},
		{"missing receiver", func(c *Config) { c.Receiver = "" }, domain.ErrMissingConfig},
		{"missing password", func(c *Config) { c.Password = "" }, domain.ErrMissingConfig},
		{"xoauth2 without token source", func(c *Config) { c.Auth = domain.EmailAuthXOAuth2 }, domain.ErrMissingConfig},
		{"unknown auth", func(c *Config) { c.Auth = "cram-md5" }, domain.ErrUnsupportedProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			_, err := NewNotifier(cfg)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNotifier_BuildMessage(t *testing.T) {
	n, err := NewNotifier(validConfig())
	require.NoError(t, err)

	m, err := n.buildMessage(driven.Message{
		Subject: "UrbanBot Accident Report",
		Body:    "Two minor accidents in Pune today.",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: UrbanBot Accident Report")
	assert.Contains(t, raw, "ops@example.com")
	assert.Contains(t, raw, "urbanbot@example.com")
	assert.Contains(t, raw, "Two minor accidents in Pune today.")
}

func TestNotifier_BuildMessage_HTMLAlternative(t *testing.T) {
	n, err := NewNotifier(validConfig())
	require.NoError(t, err)

	m, err := n.buildMessage(driven.Message{
		Subject: "UrbanBot Accident Report",
		Body:    "**Severe** crash in Pune\n\n- NH48\n- FC Road",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "<strong>Severe</strong>")
	assert.Contains(t, raw, "<li>NH48</li>")
}

func TestRenderHTML(t *testing.T) {
	out, err := renderHTML("Crowd <Alert>", "Heading\n=======\n\nline one\nline two\n\n<script>alert(1)</script>")

	require.NoError(t, err)
	assert.Contains(t, out, "<title>Crowd &lt;Alert&gt;</title>")
	assert.Contains(t, out, "<h1>Heading</h1>")
	assert.Contains(t, out, "line one<br>")
	assert.NotContains(t, out, "<script>")
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}

func TestNotifier_BuildMessage_BadAddress(t *testing.T) {
	cfg := validConfig()
	cfg.Receiver = "not an address"
	n, err := NewNotifier(cfg)
	require.NoError(t, err)

	_, err = n.buildMessage(driven.Message{Subject: "s", Body: "b"})

	assert.Error(t, err)
}

func TestNotifier_Send_ConnectionRefused(t *testing.T) {
	// Grab a free port, then close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := validConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.Timeout = 2 * time.Second
	n, err := NewNotifier(cfg)
	require.NoError(t, err)

	err = n.Send(context.Background(), driven.Message{Subject: "UrbanBot Traffic Report", Body: "body"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDispatchFailed)
}

func TestNotifier_Send_BadAddressIsDispatchFailure(t *testing.T) {
	cfg := validConfig()
	cfg.User = "bad address"
	n, err := NewNotifier(cfg)
	require.NoError(t, err)

	err = n.Send(context.Background(), driven.Message{Subject: "s", Body: "b"})

	assert.ErrorIs(t, err, domain.ErrDispatchFailed)
}

func TestNotifier_XOAuth2_TokenRefresh(t *testing.T) {
	var hits int
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "stored-refresh", r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-access","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	settings := domain.EmailSettings{
		Host:              "smtp.example.com",
		Port:              587,
		User:              "urbanbot@example.com",
		Receiver:          "ops@example.com",
		Auth:              domain.EmailAuthXOAuth2,
		OAuthClientID:     "client",
		OAuthClientSecret: "secret",
		OAuthRefreshToken: "stored-refresh",
	}
	n, err := NewFromSettings(context.Background(), settings, oauth2.Endpoint{TokenURL: tokenServer.URL})
	require.NoError(t, err)

	opts, err := n.clientOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts)

	// The token is cached until expiry.
	_, err = n.clientOptions()
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestNotifier_XOAuth2_TokenFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer tokenServer.Close()

	settings := domain.EmailSettings{
		Host:              "127.0.0.1",
		Port:              1,
		User:              "urbanbot@example.com",
		Receiver:          "ops@example.com",
		Auth:              domain.EmailAuthXOAuth2,
		OAuthClientID:     "client",
		OAuthClientSecret: "secret",
		OAuthRefreshToken: "revoked",
	}
	n, err := NewFromSettings(context.Background(), settings, oauth2.Endpoint{TokenURL: tokenServer.URL})
	require.NoError(t, err)

	err = n.Send(context.Background(), driven.Message{Subject: "s", Body: "b"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDispatchFailed)
	assert.Contains(t, err.Error(), "refresh oauth2 token")
}

func TestNewFromSettings_Plain(t *testing.T) {
	n, err := NewFromSettings(context.Background(), domain.EmailSettings{
		Host:     "smtp.gmail.com",
		Port:     587,
		User:     "urbanbot@example.com",
		Password: "pw",
		Receiver: "ops@example.com",
		Auth:     domain.EmailAuthPlain,
	}, GoogleEndpoint)

	require.NoError(t, err)
	assert.Nil(t, n.cfg.TokenSource)
	assert.Equal(t, "smtp.gmail.com:"+strconv.Itoa(587), n.cfg.Host+":"+strconv.Itoa(n.cfg.Port))
}
