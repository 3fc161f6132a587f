package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/articulink/admin-dashboard/sessions"
)

const defaultTimeout = 15 * time.Second

// Client is the single outbound pipeline to the ArticuLink REST backend.
// Every request goes through authTransport, so callers never deal with 401 or
// 403 themselves; they get an *InvalidatedError and the session is already
// cleared.
type Client struct {
	baseURL *url.URL
	store   sessions.Store
	base    http.RoundTripper
	timeout time.Duration
	http    *http.Client
	bus     *listenerBus
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the underlying transport (default http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a client for baseURL that reads and clears credentials in store.
func New(baseURL string, store sessions.Store, options ...Option) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("[apiclient New] session store is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("[apiclient New] invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("[apiclient New] base URL %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		store:   store,
		base:    http.DefaultTransport,
		timeout: defaultTimeout,
		bus:     newListenerBus(),
	}
	for _, opt := range options {
		opt(c)
	}
	c.http = c.newHTTPClient(store)
	return c, nil
}

func (c *Client) newHTTPClient(store sessions.Store) *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		Transport: &authTransport{
			base:  c.base,
			store: store,
			bus:   c.bus,
		},
	}
}

// WithStore returns a client bound to another session store. Listeners are
// shared with the parent so one subscription sees every browser session.
func (c *Client) WithStore(store sessions.Store) *Client {
	clone := *c
	clone.store = store
	clone.http = c.newHTTPClient(store)
	return &clone
}

// Store returns the session store this client reads from.
func (c *Client) Store() sessions.Store {
	return c.store
}

// OnInvalidated subscribes to session invalidations. Call the returned
// function to unsubscribe.
func (c *Client) OnInvalidated(l Listener) func() {
	return c.bus.subscribe(l)
}

func (c *Client) Auth() AuthAPI {
	return AuthAPI{c: c}
}

func (c *Client) Users() UsersAPI {
	return UsersAPI{c: c}
}

func (c *Client) Dashboard() DashboardAPI {
	return DashboardAPI{c: c}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do sends req through the pipeline and decodes a 2xx JSON body into out
// (which may be nil). Non 2xx responses become *APIError or *InvalidatedError,
// transport failures *NetworkError.
func (c *Client) Do(req *http.Request, out any) error {
	ctx, ex := withExchange(req.Context())
	req = req.WithContext(ctx)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if ex.invalidation != nil {
		return &InvalidatedError{Invalidation: *ex.invalidation}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Wrapf(apperrors.ErrDecoding, "%s %s: %v", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.Do(req, out)
}
