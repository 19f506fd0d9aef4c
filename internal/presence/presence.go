// Package presence maintains the live viewer count stream.
//
// The Client is a small state machine (disconnected, open, closed)
// gated on a single variable: the current bearer token. Every
// transition funnels through apply — a token appearing opens the
// stream, a token vanishing closes it and resets the counts, a token
// changing value swaps the stream — so no stream for an older token can
// outlive one for a newer token. There is no autonomous reconnect: a
// dropped stream stays down until the gating token is re-applied.
package presence

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/luodachuixg/nola-console/internal/session"
)

// Unknown is the sentinel for counts and timestamps not yet observed.
const Unknown = -1

// StreamPath is the platform's online-count SSE endpoint.
const StreamPath = "/admin/overview/online"

// heartbeat is the server's keep-alive frame; it carries no data.
const heartbeat = "ping"

// State is the observable presence snapshot.
type State struct {
	LastCount       int64
	LastUpdateMs    int64
	StreamSupported bool
}

// Options tunes a Client.
type Options struct {
	// HTTPClient performs the streaming request. It must not have a
	// request timeout, or the stream would be cut mid-flight. Nil means
	// streaming is unsupported.
	HTTPClient *http.Client

	// OnUpdate is called after every accepted count update and after a
	// reset to Unknown. Optional.
	OnUpdate func(State)
}

// Client consumes the online-count stream for whichever token is
// currently applied.
type Client struct {
	endpoint  string
	http      *http.Client
	supported bool
	onUpdate  func(State)

	mu           sync.Mutex
	closed       bool
	token        string
	gen          uint64 // bumped on every open; stale readers check it
	cancel       context.CancelFunc
	body         io.ReadCloser
	lastCount    int64
	lastUpdateMs int64
}

// New creates a Client for the given API base URL. Stream support is
// feature-detected once, here: an unsupported configuration never dials
// and reports counts as permanently unknown.
func New(baseURL string, opts Options) *Client {
	endpoint := strings.TrimRight(baseURL, "/") + StreamPath
	c := &Client{
		endpoint:     endpoint,
		http:         opts.HTTPClient,
		supported:    detectStreamSupport(endpoint, opts.HTTPClient),
		onUpdate:     opts.OnUpdate,
		lastCount:    Unknown,
		lastUpdateMs: Unknown,
	}
	if !c.supported {
		slog.Warn("presence: streaming unsupported, live viewer count unavailable", "endpoint", endpoint)
	}
	return c
}

func detectStreamSupport(endpoint string, client *http.Client) bool {
	if client == nil {
		return false
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Bind subscribes the client to the session store's token and applies
// the current one. The returned cancel detaches from the store; it does
// not close an open stream — call Close for teardown.
func (c *Client) Bind(sess *session.Store) (cancel func()) {
	unsub := sess.Subscribe(func(s session.Session) {
		c.apply(s.Token, false)
	})
	c.apply(sess.Current().Token, false)
	return unsub
}

// Apply re-evaluates the gate for the given token.
func (c *Client) Apply(token string) { c.apply(token, false) }

// Refresh closes and reopens the stream for the current token. This is
// the explicit nudge for recovering from a transport drop; the client
// never retries on its own.
func (c *Client) Refresh() {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	c.apply(token, true)
}

// Snapshot returns the current presence state.
func (c *Client) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Close tears the client down, synchronously closing any open stream.
// Invoked on console shutdown; the client cannot be reused afterwards.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.closeStreamLocked()
}

func (c *Client) apply(token string, force bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if token == c.token && !force {
		c.mu.Unlock()
		return
	}

	// Close the old stream before anything else so an older token's
	// stream can never outlive a newer one.
	c.closeStreamLocked()
	c.token = token

	var notify *State
	if token == "" {
		c.lastCount = Unknown
		c.lastUpdateMs = Unknown
		st := c.stateLocked()
		notify = &st
	} else if c.supported {
		c.openLocked(token)
	}
	cb := c.onUpdate
	c.mu.Unlock()

	if notify != nil && cb != nil {
		cb(*notify)
	}
}

func (c *Client) openLocked(token string) {
	c.gen++
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.stream(ctx, c.gen, token)
}

func (c *Client) closeStreamLocked() {
	// Invalidate any in-flight reader so a frame racing with the close
	// cannot land after a reset.
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.body != nil {
		_ = c.body.Close()
		c.body = nil
	}
}

// stream dials the SSE endpoint and consumes frames until the stream
// ends or the connection is superseded.
func (c *Client) stream(ctx context.Context, gen uint64, token string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		slog.Warn("presence: building stream request", "error", err)
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	// The credential travels as a header, never in the URL, so it
	// cannot end up in access logs.
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("presence: stream connect failed", "error", err)
		}
		return
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		slog.Warn("presence: stream rejected", "status", resp.StatusCode)
		return
	}
	if !c.install(gen, resp.Body) {
		resp.Body.Close()
		return
	}
	defer c.uninstall(gen)

	slog.Debug("presence: stream open", "endpoint", c.endpoint)

	scanner := bufio.NewScanner(resp.Body)
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			// Blank line ends an event.
			c.handleFrame(gen, strings.Join(data, "\n"))
			data = data[:0]
		case strings.HasPrefix(line, ":"):
			// Comment (server keepalive), ignored.
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// id:/event:/retry: fields carry nothing we use.
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		// Report but do not resurrect; reconnection is driven purely by
		// the gating token (see Refresh).
		slog.Warn("presence: stream error", "error", err)
	}
}

// install records the stream body for synchronous teardown. It fails if
// the connection was superseded or the client closed while dialing.
func (c *Client) install(gen uint64, body io.ReadCloser) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return false
	}
	c.body = body
	return true
}

func (c *Client) uninstall(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.gen && c.body != nil {
		_ = c.body.Close()
		c.body = nil
	}
}

// handleFrame parses one SSE payload. Heartbeats and anything that does
// not carry two numeric-coercible fields are discarded silently.
func (c *Client) handleFrame(gen uint64, payload string) {
	if payload == "" || payload == heartbeat {
		return
	}

	var msg struct {
		Count     flexInt `json:"count"`
		Timestamp flexInt `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return
	}
	if !msg.Count.ok || !msg.Timestamp.ok {
		return
	}

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.lastCount = msg.Count.val
	c.lastUpdateMs = msg.Timestamp.val
	st := c.stateLocked()
	cb := c.onUpdate
	c.mu.Unlock()

	if cb != nil {
		cb(st)
	}
}

func (c *Client) stateLocked() State {
	return State{
		LastCount:       c.lastCount,
		LastUpdateMs:    c.lastUpdateMs,
		StreamSupported: c.supported,
	}
}

// flexInt accepts a JSON number or a numeric string; anything else
// leaves ok false. It never reports an unmarshal error — malformed
// payloads are dropped, not surfaced.
type flexInt struct {
	val int64
	ok  bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		f.val, f.ok = int64(v), true
	case string:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			f.val, f.ok = int64(n), true
		}
	}
	return nil
}
