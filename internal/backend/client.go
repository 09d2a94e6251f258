package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"pkt.systems/pslog"
)

// Searcher is the read-only surface the TUI needs from the backend.
type Searcher interface {
	SearchMembers(ctx context.Context, query string, limit int) ([]Member, error)
	SearchTiers(ctx context.Context, query string, limit int) ([]Tier, error)
	SearchAll(ctx context.Context, query string, limit int) ([]Group, error)
	Ping(ctx context.Context) error
}

// Ensure Client implements Searcher at compile time.
var _ Searcher = (*Client)(nil)

const (
	defaultAPIBase   = "http://127.0.0.1:8080"
	defaultUserAgent = "shulpick/0.1"
	defaultTimeout   = 10 * time.Second
	defaultLimit     = 20
	maxBodyBytes     = 4 << 20
)

// Endpoints are the paths of the search and health endpoints relative to the
// API base.
type Endpoints struct {
	Members string
	Tiers   string
	Global  string
	Health  string
}

// DefaultEndpoints returns the stock backend routes.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Members: "/api/members/search",
		Tiers:   "/api/tiers/search",
		Global:  "/api/search",
		Health:  "/health",
	}
}

// StatusError reports a non-2xx answer.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// Client talks to the backend's HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	endpoints Endpoints
	userAgent string
	token     string
	limit     int
	logger    pslog.Logger
	flight    singleflight.Group
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its transport is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithToken sends the token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithLogger sets the logger. nil means no logging.
func WithLogger(l pslog.Logger) Option {
	return func(c *Client) {
		if l == nil {
			l = pslog.NoopLogger()
		}
		c.logger = l
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithEndpoints overrides the endpoint paths. Empty fields keep the default.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		if e.Members != "" {
			c.endpoints.Members = e.Members
		}
		if e.Tiers != "" {
			c.endpoints.Tiers = e.Tiers
		}
		if e.Global != "" {
			c.endpoints.Global = e.Global
		}
		if e.Health != "" {
			c.endpoints.Health = e.Health
		}
	}
}

// WithLimit sets the limit sent when a call passes limit <= 0.
func WithLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
	}
}

// NewClient builds a Client for apiBase, a URL or bare host:port.
func NewClient(apiBase string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		endpoints: DefaultEndpoints(),
		userAgent: defaultUserAgent,
		limit:     defaultLimit,
		logger:    pslog.NoopLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the normalised API base.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// SearchMembers queries the member endpoint.
func (c *Client) SearchMembers(ctx context.Context, query string, limit int) ([]Member, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, err := c.search(ctx, c.endpoints.Members, query, limit)
	if err != nil {
		return nil, err
	}
	var members []Member
	if err := decodeList(body, &members); err != nil {
		return nil, err
	}
	for i, m := range members {
		if m.ID == "" {
			return nil, fmt.Errorf("decode response: member %d has no id", i)
		}
	}
	return members, nil
}

// SearchTiers queries the membership tier endpoint.
func (c *Client) SearchTiers(ctx context.Context, query string, limit int) ([]Tier, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, err := c.search(ctx, c.endpoints.Tiers, query, limit)
	if err != nil {
		return nil, err
	}
	var tiers []Tier
	if err := decodeList(body, &tiers); err != nil {
		return nil, err
	}
	for i, t := range tiers {
		if t.ID == "" {
			return nil, fmt.Errorf("decode response: tier %d has no id", i)
		}
	}
	return tiers, nil
}

// SearchAll queries the global endpoint. A flat array answer is returned as
// a single group named "results".
func (c *Client) SearchAll(ctx context.Context, query string, limit int) ([]Group, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, err := c.search(ctx, c.endpoints.Global, query, limit)
	if err != nil {
		return nil, err
	}
	return decodeGroups(body)
}

// Ping checks that the backend answers. Any status below 500 counts as
// reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: c.endpoints.Health}
	resp, err := c.send(ctx, rel)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode >= 500 {
		return &StatusError{Path: rel.Path, Code: resp.StatusCode}
	}
	return nil
}

func (c *Client) search(ctx context.Context, path, query string, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = c.limit
	}
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(limit))
	rel := &url.URL{Path: path, RawQuery: values.Encode()}

	ch := c.flight.DoChan(rel.String(), func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		return c.get(context.WithoutCancel(ctx), rel)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) get(ctx context.Context, rel *url.URL) ([]byte, error) {
	start := time.Now()
	resp, err := c.send(ctx, rel)
	if err != nil {
		c.logger.Debug("backend.request.failed", "path", rel.Path, "error", err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("backend.request",
		"path", rel.Path,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Path: rel.Path, Code: resp.StatusCode}
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, rel *url.URL) (*http.Response, error) {
	reqURL := *c.baseURL
	reqURL.Path = c.baseURL.Path + "/" + strings.TrimLeft(rel.Path, "/")
	reqURL.RawQuery = rel.RawQuery
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

func decodeList(body []byte, dest any) error {
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeGroups(body []byte) ([]Group, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("decode response: empty body")
	}

	if trimmed[0] == '[' {
		var records []Record
		if err := decodeList(trimmed, &records); err != nil {
			return nil, err
		}
		group := Group{Name: "results", Records: records}
		if err := group.validate(); err != nil {
			return nil, err
		}
		return []Group{group}, nil
	}
	if trimmed[0] != '{' {
		return nil, errors.New("decode response: expected an array or object")
	}

	raw := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(trimmed, raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	var groups []Group
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		value := bytes.TrimSpace(pair.Value)
		// Scalars such as "total" counts ride along with the groups.
		if len(value) == 0 || value[0] != '[' {
			continue
		}
		var records []Record
		if err := decodeList(value, &records); err != nil {
			return nil, fmt.Errorf("decode response: group %q: %w", pair.Key, err)
		}
		group := Group{Name: pair.Key, Records: records}
		if err := group.validate(); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (g *Group) validate() error {
	for i := range g.Records {
		if g.Records[i].ID == "" {
			return fmt.Errorf("decode response: %s record %d has no id", g.Name, i)
		}
		g.Records[i].Kind = g.Name
	}
	return nil
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_base %q: missing host", apiBase)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
