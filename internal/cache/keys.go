package cache

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// KeySeparator joins the segments of a hierarchical cache key
const KeySeparator = ":"

// Key prefixes
const (
	PrefixUser      = "user"
	PrefixDashboard = "dashboard"
)

// Dashboard and upstream endpoint segments
const (
	EndpointMetrics          = "metrics"
	EndpointTrend            = "trend"
	EndpointCalendar         = "calendar"
	EndpointProjects         = "projects"
	EndpointSummary          = "summary"
	EndpointPerformance      = "performance"
	EndpointGitHubRepos      = "github:repos"
	EndpointGitHubCommits    = "github:commits"
	EndpointGitHubConnection = "github:connection"
)

// TTL classes for cached payloads
const (
	TTLShort    = 2 * time.Minute
	TTLMedium   = 5 * time.Minute
	TTLLong     = 15 * time.Minute
	TTLVeryLong = time.Hour
)

// Key builds a deterministic key from a prefix and any number of parts
func Key(prefix string, parts ...any) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, prefix)
	for _, p := range parts {
		segments = append(segments, fmt.Sprint(p))
	}
	return strings.Join(segments, KeySeparator)
}

// UserKey builds a key scoped to a single user
func UserKey(userID string, parts ...any) string {
	return Key(PrefixUser, append([]any{userID}, parts...)...)
}

// DashboardKey builds a key for a dashboard endpoint of a user
func DashboardKey(userID, endpoint string, params ...any) string {
	return Key(PrefixDashboard, append([]any{userID, endpoint}, params...)...)
}

// UserPattern matches every user and dashboard key belonging to userID
func UserPattern(userID string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^(?:%s|%s)%s%s%s",
		PrefixUser, PrefixDashboard, KeySeparator, regexp.QuoteMeta(userID), KeySeparator))
}

// InvalidateUser drops every cached entry scoped to userID
func (c *Cache) InvalidateUser(userID string) int {
	return c.DeletePattern(UserPattern(userID))
}
