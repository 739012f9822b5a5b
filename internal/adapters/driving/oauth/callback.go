// Package oauth runs the browser authorization-code flow used to obtain
// long-lived credentials, such as the Gmail refresh token for XOAUTH2
// report delivery.
package oauth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"
)

var (
	// ErrCallbackTimeout is returned when no redirect arrives in time.
	ErrCallbackTimeout = errors.New("timeout waiting for authorization callback")

	errStateMismatch = errors.New("state mismatch in authorization callback")
	errNoCode        = errors.New("no authorization code received")
)

// ProviderError is an error the provider reported on the redirect,
// typically access_denied when the user declines.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("oauth error: %s - %s", e.Code, e.Description)
}

type callbackResult struct {
	code string
	err  error
}

// CallbackServer receives one provider redirect on a loopback port.
// Only the first outcome is kept; later redirects get a page but are
// otherwise ignored.
type CallbackServer struct {
	state  string
	result chan callbackResult

	mu     sync.Mutex
	port   int
	server *http.Server
}

// NewCallbackServer accepts redirects carrying the given state. A zero
// port lets Start pick a free one.
func NewCallbackServer(port int, state string) *CallbackServer {
	return &CallbackServer{
		port:   port,
		state:  state,
		result: make(chan callbackResult, 1),
	}
}

// Start listens on 127.0.0.1 at the configured port.
func (s *CallbackServer) Start() error {
	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(s.port)))
	if err != nil {
		return fmt.Errorf("listen for oauth callback: %w", err)
	}
	s.serve(l)
	return nil
}

// StartInRange binds the first free port in [first, last].
func (s *CallbackServer) StartInRange(first, last int) error {
	if first > last {
		return fmt.Errorf("invalid callback port range %d-%d", first, last)
	}
	for p := first; p <= last; p++ {
		l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(p)))
		if err == nil {
			s.serve(l)
			return nil
		}
	}
	return fmt.Errorf("no available port in range %d-%d", first, last)
}

func (s *CallbackServer) serve(l net.Listener) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", s.handleCallback)
	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.port = l.Addr().(*net.TCPAddr).Port
	s.server = srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.deliver(callbackResult{err: err})
		}
	}()
}

// deliver records the first outcome and drops the rest.
func (s *CallbackServer) deliver(r callbackResult) {
	select {
	case s.result <- r:
	default:
	}
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var res callbackResult
	switch {
	case q.Get("error") != "":
		res.err = &ProviderError{Code: q.Get("error"), Description: q.Get("error_description")}
	case q.Get("state") != s.state:
		res.err = errStateMismatch
	case q.Get("code") == "":
		res.err = errNoCode
	default:
		res.code = q.Get("code")
	}
	s.deliver(res)

	page := resultPage{Title: "Authorization successful", Message: "You can close this window and return to UrbanBot."}
	if res.err != nil {
		page = resultPage{Title: "Authorization failed", Message: failureMessage(res.err)}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page.render()))
}

func failureMessage(err error) string {
	var pe *ProviderError
	switch {
	case errors.As(err, &pe):
		return pe.Description
	case errors.Is(err, errStateMismatch):
		return "Invalid state parameter."
	default:
		return "No code received."
	}
}

// WaitForCode blocks until the redirect arrives or ctx is done. A
// deadline surfaces as ErrCallbackTimeout.
func (s *CallbackServer) WaitForCode(ctx context.Context) (string, error) {
	select {
	case r := <-s.result:
		return r.code, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrCallbackTimeout
		}
		return "", ctx.Err()
	}
}

// Stop shuts the server down. It is safe to call more than once, or
// before Start.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// RedirectURI is the address to register with the provider.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/callback", s.Port())
}

var pageTemplate = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head>
<title>UrbanBot - Authorization</title>
<style>
body { font-family: sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #F4F7F6; }
.card { text-align: center; background: white; padding: 48px 64px; border-radius: 12px; border: 1px solid #C7D1CC; }
h1 { color: #0F766E; margin: 0 0 8px 0; font-size: 24px; }
p { color: #5B6770; margin: 0; }
</style>
</head>
<body><div class="card"><h1>{{.Title}}</h1><p>{{.Message}}</p></div></body>
</html>`))

type resultPage struct {
	Title   string
	Message string
}

func (p resultPage) render() string {
	var b bytes.Buffer
	if err := pageTemplate.Execute(&b, p); err != nil {
		return template.HTMLEscapeString(p.Title)
	}
	return b.String()
}

// OpenBrowser opens url in the default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
