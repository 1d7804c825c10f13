// Package github is the upstream client for GitHub's REST API together with
// the per-user refresh that persists repositories and commit activity.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is GitHub's public REST endpoint
	DefaultBaseURL = "https://api.github.com/"

	// DefaultUserAgent identifies the dashboard to GitHub
	DefaultUserAgent = "GitHub-Dashboard-App"

	// DefaultTimeout bounds a single upstream call
	DefaultTimeout = 30 * time.Second

	// MaxPerPage is the largest page size GitHub accepts
	MaxPerPage = 100

	headerRateReset = "X-RateLimit-Reset"
)

// API is the set of typed GitHub calls used by the refresh
type API interface {
	GetUser(ctx context.Context) (*gh.User, error)
	GetRepositories(ctx context.Context, page, perPage int) ([]*gh.Repository, error)
	GetCommits(ctx context.Context, owner, repo string, since *time.Time) ([]*gh.RepositoryCommit, error)
	GetEvents(ctx context.Context, username string, page int) ([]*gh.Event, error)
}

// Client issues bearer-authenticated calls against the GitHub REST API
type Client struct {
	gh *gh.Client
}

var _ API = (*Client)(nil)

type clientConfig struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper
}

// ClientOption configures a Client
type ClientOption func(*clientConfig)

// WithBaseURL points the client at a different API root, such as GitHub Enterprise or a test server
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithTimeout sets the per-request HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithTransport sets the base transport beneath the OAuth2 token transport
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *clientConfig) {
		c.transport = rt
	}
}

// NewClient creates a client authenticated with the given access token
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("access token is required")
	}

	cfg := &clientConfig{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	base, err := url.Parse(cfg.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	httpClient := &http.Client{
		Timeout: cfg.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   cfg.transport,
		},
	}

	client := gh.NewClient(httpClient)
	client.BaseURL = base
	client.UserAgent = cfg.userAgent

	return &Client{gh: client}, nil
}

// request performs one call and decodes the JSON body into T.
// Non-2xx responses come back as *RateLimitedError or *UpstreamError.
func request[T any](ctx context.Context, c *Client, method, path string) (T, error) {
	var out T

	req, err := c.gh.NewRequest(method, path, nil)
	if err != nil {
		return out, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.gh.Do(ctx, req, &out)
	if err != nil {
		return out, classify(resp, err)
	}
	return out, nil
}

// GetUser returns the authenticated user
func (c *Client) GetUser(ctx context.Context) (*gh.User, error) {
	return request[*gh.User](ctx, c, http.MethodGet, "user")
}

// GetRepositories returns one page of the authenticated user's repositories, most recently updated first
func (c *Client) GetRepositories(ctx context.Context, page, perPage int) ([]*gh.Repository, error) {
	if perPage <= 0 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	q := url.Values{}
	q.Set("page", fmt.Sprint(max(page, 1)))
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("sort", "updated")
	return request[[]*gh.Repository](ctx, c, http.MethodGet, "user/repos?"+q.Encode())
}

// GetCommits returns the first page of commits of owner/repo, optionally since a point in time
func (c *Client) GetCommits(ctx context.Context, owner, repo string, since *time.Time) ([]*gh.RepositoryCommit, error) {
	path := fmt.Sprintf("repos/%s/%s/commits", url.PathEscape(owner), url.PathEscape(repo))
	if since != nil {
		path += "?since=" + url.QueryEscape(since.UTC().Format(time.RFC3339))
	}
	return request[[]*gh.RepositoryCommit](ctx, c, http.MethodGet, path)
}

// GetEvents returns one page of a user's public and private events
func (c *Client) GetEvents(ctx context.Context, username string, page int) ([]*gh.Event, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprint(max(page, 1)))
	q.Set("per_page", fmt.Sprint(MaxPerPage))
	return request[[]*gh.Event](ctx, c, http.MethodGet, fmt.Sprintf("users/%s/events?%s", url.PathEscape(username), q.Encode()))
}

// ClientFactory builds an API client for a user's access token
type ClientFactory func(token string) (API, error)

// NewClientFactory returns a factory that applies opts to every client it builds
func NewClientFactory(opts ...ClientOption) ClientFactory {
	return func(token string) (API, error) {
		return NewClient(token, opts...)
	}
}
