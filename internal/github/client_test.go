package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewUnstartedServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	server.Start()
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient("test-token", WithBaseURL(server.URL), WithTimeout(5*time.Second))
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresToken(t *testing.T) {
	t.Parallel()

	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient("t", WithBaseURL("://bad"))
	assert.Error(t, err)
}

func TestClient_SendsAuthAndHeaders(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Contains(t, r.Header.Get("Accept"), "application/vnd.github.v3+json")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"octocat","id":1}`))
	}))

	user, err := newTestClient(t, server).GetUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", user.GetLogin())
	assert.Equal(t, int64(1), user.GetID())
}

func TestClient_TypedWrappers(t *testing.T) {
	t.Parallel()

	since := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/user/repos":
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "50", r.URL.Query().Get("per_page"))
			assert.Equal(t, "updated", r.URL.Query().Get("sort"))
			_, _ = w.Write([]byte(`[{"id":10,"name":"hello","full_name":"octo/hello"}]`))
		case "/repos/octo/hello/commits":
			assert.Equal(t, since.Format(time.RFC3339), r.URL.Query().Get("since"))
			_, _ = w.Write([]byte(`[{"sha":"abc"}]`))
		case "/users/octo/events":
			assert.Equal(t, "1", r.URL.Query().Get("page"))
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			_, _ = w.Write([]byte(`[{"id":"1","type":"PushEvent"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	client := newTestClient(t, server)
	ctx := context.Background()

	repos, err := client.GetRepositories(ctx, 2, 50)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "octo/hello", repos[0].GetFullName())

	commits, err := client.GetCommits(ctx, "octo", "hello", &since)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "abc", commits[0].GetSHA())

	events, err := client.GetEvents(ctx, "octo", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "PushEvent", events[0].GetType())
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Parallel()

	reset := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    int
		headers   map[string]string
		rateLimit bool
		wantReset time.Time
	}{
		{
			name:      "403 with reset header is rate limited",
			status:    http.StatusForbidden,
			headers:   map[string]string{"X-RateLimit-Reset": "1893456000"},
			rateLimit: true,
			wantReset: reset,
		},
		{
			name:      "403 with exhausted quota is rate limited",
			status:    http.StatusForbidden,
			headers:   map[string]string{"X-RateLimit-Remaining": "0", "X-RateLimit-Reset": "1893456000"},
			rateLimit: true,
			wantReset: reset,
		},
		{
			name:   "403 without reset header is an upstream error",
			status: http.StatusForbidden,
		},
		{
			name:   "404 is an upstream error",
			status: http.StatusNotFound,
		},
		{
			name:   "502 is an upstream error",
			status: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"API rate limit exceeded for user"}`))
			}))

			_, err := newTestClient(t, server).GetUser(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.rateLimit, IsRateLimited(err))

			if tt.rateLimit {
				var rl *RateLimitedError
				require.True(t, errors.As(err, &rl))
				assert.True(t, tt.wantReset.Equal(rl.ResetAt), "reset %v", rl.ResetAt)
				assert.Contains(t, rl.Error(), "rate limit")
				return
			}

			var ue *UpstreamError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tt.status, ue.StatusCode)
			assert.Equal(t, http.StatusText(tt.status), ue.Status)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, http.NotFoundHandler())
	client := newTestClient(t, server)
	server.Close()

	_, err := client.GetUser(context.Background())
	require.Error(t, err)
	assert.False(t, IsRateLimited(err))

	var ue *UpstreamError
	assert.False(t, errors.As(err, &ue))
}
