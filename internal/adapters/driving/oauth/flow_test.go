//nolint:noctx // Tests use http.Get for brevity.
package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// tokenServer mimics a provider token endpoint.
func tokenServer(t *testing.T, refreshToken string, got *url.Values) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		*got = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": refreshToken,
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// redirectingBrowser follows the authorization URL straight back to the
// callback, as a consenting user would.
func redirectingBrowser(t *testing.T) func(string) error {
	return func(raw string) error {
		u, err := url.Parse(raw)
		if err != nil {
			return err
		}
		q := u.Query()
		go func() {
			resp, err := http.Get(q.Get("redirect_uri") + "?code=the-code&state=" + url.QueryEscape(q.Get("state")))
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
}

func testFlow(tokenURL string, browse func(string) error) *Flow {
	return &Flow{
		Config: oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://auth.example.com/authorize",
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{"https://mail.google.com/"},
		},
		Browse:    browse,
		Timeout:   2 * time.Second,
		PortStart: 21000,
		PortEnd:   21100,
	}
}

func TestFlow_Run(t *testing.T) {
	var form url.Values
	srv := tokenServer(t, "refresh-1", &form)

	var announced string
	token, err := testFlow(srv.URL, redirectingBrowser(t)).Run(context.Background(), func(u string) { announced = u })

	require.NoError(t, err)
	assert.Equal(t, "refresh-1", token.RefreshToken)
	assert.Equal(t, "the-code", form.Get("code"))
	assert.NotEmpty(t, form.Get("code_verifier"))

	u, err := url.Parse(announced)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "client", q.Get("client_id"))
}

func TestFlow_NoRefreshToken(t *testing.T) {
	var form url.Values
	srv := tokenServer(t, "", &form)

	_, err := testFlow(srv.URL, redirectingBrowser(t)).Run(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestFlow_RequiresClientCredentials(t *testing.T) {
	f := testFlow("http://unused", nil)
	f.Config.ClientSecret = ""

	_, err := f.Run(context.Background(), nil)

	assert.Error(t, err)
}

func TestFlow_TimesOutWithoutRedirect(t *testing.T) {
	f := testFlow("http://unused", func(string) error { return nil })
	f.Timeout = 50 * time.Millisecond

	_, err := f.Run(context.Background(), nil)

	assert.ErrorIs(t, err, ErrCallbackTimeout)
}
