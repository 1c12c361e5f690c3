package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/gcalctl/internal/logging"
)

// Grant is the outcome of a completed consent flow.
type Grant struct {
	// Code is the one-time authorization code to exchange for tokens.
	Code string

	// RedirectURL is the redirect URL the code was issued for. The token
	// exchange must present the same URL.
	RedirectURL string
}

// Consent obtains an authorization code through the browser-delegated
// OAuth2 consent flow. Implementations block until the user completes or
// declines consent, or ctx is done.
type Consent interface {
	Authorize(ctx context.Context, conf *oauth2.Config, state string) (Grant, error)
}

// LocalConsent runs the consent flow with a short-lived localhost callback
// listener: it prints the authorization URL (optionally opening a browser),
// then waits for the authorization server to redirect the user's browser
// back with a code.
type LocalConsent struct {
	// ListenAddr is the local address for the callback listener.
	// Defaults to 127.0.0.1:0 (a free port).
	ListenAddr string

	// Timeout bounds the wait for the user. Zero means no bound beyond ctx.
	Timeout time.Duration

	// OpenBrowser controls whether the URL is opened automatically.
	OpenBrowser bool

	// Out receives the user-facing instructions. Defaults to discard.
	Out io.Writer

	Logger *slog.Logger
}

// Compile-time check to ensure LocalConsent implements Consent
var _ Consent = (*LocalConsent)(nil)

type callbackResult struct {
	code string
	err  error
}

// Authorize blocks until the user grants or declines consent.
// Context cancellation resolves deterministically: a deadline maps to a
// Timeout failure, an explicit cancel (e.g. Ctrl-C) to UserDeclined.
func (l *LocalConsent) Authorize(ctx context.Context, conf *oauth2.Config, state string) (Grant, error) {
	addr := l.ListenAddr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return Grant{}, failuref(NetworkError, "starting OAuth callback listener on %s: %v", addr, err)
	}
	defer func() { _ = ln.Close() }()

	redirectURL := fmt.Sprintf("http://%s/callback", ln.Addr().String())

	authConf := *conf
	authConf.RedirectURL = redirectURL
	// Offline access and forced approval so a refresh token is issued even
	// when the user has granted this client before.
	authURL := authConf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		// A request carrying the wrong state is not part of this flow
		// (stray local traffic or a replayed redirect). Reject it and keep
		// waiting for the real one.
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid authorization response.", http.StatusBadRequest)
			return
		}
		res := handleCallback(r)
		if res.err != nil {
			http.Error(w, "Authorization failed. You can close this tab and return to the terminal.", http.StatusBadRequest)
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, "<html><body><p>Authorization complete. You can close this tab and return to the terminal.</p></body></html>")
		}
		select {
		case results <- res:
		default:
			// A result is already pending; ignore duplicate callbacks.
		}
	})

	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	defer func() { _ = srv.Close() }()

	if l.Out != nil {
		fmt.Fprintln(l.Out, "Authorization required. Open the following URL in your browser and grant access:")
		fmt.Fprintln(l.Out)
		fmt.Fprintf(l.Out, "  %s\n", authURL)
		fmt.Fprintln(l.Out)
	}
	if l.OpenBrowser {
		if err := openBrowser(authURL); err != nil && l.Logger != nil {
			l.Logger.Debug("could not open browser", logging.Err(err))
		}
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	select {
	case res := <-results:
		if res.err != nil {
			return Grant{}, res.err
		}
		return Grant{Code: res.code, RedirectURL: redirectURL}, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Grant{}, failuref(Timeout, "timed out waiting for browser consent")
		}
		return Grant{}, failuref(UserDeclined, "authorization canceled")
	}
}

// handleCallback interprets a state-verified OAuth redirect request.
func handleCallback(r *http.Request) callbackResult {
	q := r.URL.Query()

	if errCode := q.Get("error"); errCode != "" {
		if errCode == "access_denied" {
			return callbackResult{err: failuref(UserDeclined, "user declined authorization")}
		}
		return callbackResult{err: failuref(InvalidGrant, "authorization server returned %q", errCode)}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: failuref(InvalidGrant, "authorization response contained no code")}
	}
	return callbackResult{code: code}
}

// openBrowser opens the URL in the user's default browser.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
