// Package gateway is the console's single outbound path to the Nola API.
//
// Every call goes through do: the bearer credential is read from the
// session store at send time, the response envelope is unwrapped, and
// failures are classified. A session-expired envelope clears the session
// store, triggers navigation back to the login route, and emits at most
// one visible notice per cooldown window — while every affected call
// still fails with ErrSessionExpired.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/luodachuixg/nola-console/internal/idgen"
	"github.com/luodachuixg/nola-console/internal/model"
	"github.com/luodachuixg/nola-console/internal/notice"
	"github.com/luodachuixg/nola-console/internal/session"
)

// ErrSessionExpired is returned by every call that fails with the
// platform's session-expired code. The visible notice is deduplicated;
// this error is not — each caller sees its own failure.
var ErrSessionExpired = errors.New("session expired, please log in again")

// DefaultLoginRoute is where the user is sent when the session expires.
const DefaultLoginRoute = "/console"

// Navigator is the navigation primitive invoked on session expiry.
type Navigator interface {
	NavigateTo(path string, replace bool) error
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string, replace bool) error

func (f NavigatorFunc) NavigateTo(path string, replace bool) error { return f(path, replace) }

// APIError is a non-expiry application-level rejection: the server
// understood the request and answered with an envelope error.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// TransportError wraps a failure that never produced a valid envelope.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "request failed: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// Options tunes a Client. The zero value is usable in tests.
type Options struct {
	// HTTPClient defaults to a client with a 10s timeout, mirroring
	// the original console's request timeout.
	HTTPClient *http.Client

	// Notifier surfaces user-visible failure notices. Nil disables
	// notices (errors are still returned).
	Notifier notice.Notifier

	// Navigator is invoked with LoginRoute on session expiry.
	Navigator Navigator

	// Gate deduplicates the session-expired notice. Nil means every
	// expiry is announced.
	Gate *notice.Gate

	// LoginRoute defaults to DefaultLoginRoute.
	LoginRoute string
}

// Client performs authenticated JSON calls against the Nola API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sess       *session.Store
	notifier   notice.Notifier
	navigator  Navigator
	gate       *notice.Gate
	loginRoute string
}

// New creates a Client targeting the given base URL. The session store
// supplies the bearer credential and is cleared when the server reports
// an expired session.
func New(baseURL string, sess *session.Store, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	loginRoute := opts.LoginRoute
	if loginRoute == "" {
		loginRoute = DefaultLoginRoute
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		sess:       sess,
		notifier:   opts.Notifier,
		navigator:  opts.Navigator,
		gate:       opts.Gate,
		loginRoute: loginRoute,
	}
}

// do performs an HTTP request with optional JSON body, unwraps the
// response envelope, and decodes its data into result. If result is nil
// the payload is discarded.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Attach the credential as of this moment; concurrent logouts must
	// not resurrect an older token.
	if sess := c.sess.Current(); sess.IsLogin {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	reqID, err := idgen.Generate()
	if err == nil {
		req.Header.Set("X-Request-ID", reqID)
	}
	slog.Debug("gateway: request", "id", reqID, "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportFailure(reqID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportFailure(reqID, fmt.Errorf("reading response: %w", err))
	}

	var env model.Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return c.transportFailure(reqID, fmt.Errorf("decoding envelope (HTTP %d): %w", resp.StatusCode, err))
	}

	switch {
	case env.Code == model.CodeSessionExpired:
		return c.sessionExpired(reqID)
	case env.Code != model.CodeOK:
		msg := env.Message()
		if msg == "" {
			msg = fmt.Sprintf("request rejected (code %d)", env.Code)
		}
		slog.Debug("gateway: application error", "id", reqID, "code", env.Code, "message", msg)
		// Independent per-call failure: always surfaced, never deduplicated.
		c.notify(notice.Error, msg)
		return &APIError{Code: env.Code, Message: msg}
	}

	if result != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}

// sessionExpired handles the one failure mode that fans out across all
// in-flight authenticated calls: clear the session, head back to the
// login route, and announce it once per cooldown window.
func (c *Client) sessionExpired(reqID string) error {
	slog.Info("gateway: session expired", "id", reqID)

	if err := c.sess.SetUser(nil); err != nil {
		slog.Warn("gateway: clearing expired session", "error", err)
	}
	if c.navigator != nil {
		if err := c.navigator.NavigateTo(c.loginRoute, true); err != nil {
			slog.Warn("gateway: navigating to login", "error", err)
		}
	}
	if c.gate == nil || c.gate.ShouldNotify() {
		c.notify(notice.Error, ErrSessionExpired.Error())
	}
	return ErrSessionExpired
}

func (c *Client) transportFailure(reqID string, err error) error {
	slog.Debug("gateway: transport failure", "id", reqID, "error", err)
	terr := &TransportError{Err: err}
	c.notify(notice.Error, terr.Error())
	return terr
}

func (c *Client) notify(kind notice.Kind, text string) {
	if c.notifier != nil {
		c.notifier.Notify(kind, text)
	}
}
