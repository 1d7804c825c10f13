package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	gh "github.com/google/go-github/v57/github"
	"go.opentelemetry.io/otel/trace"

	"github.com/devpulse/devpulse-api/internal/otel"
	"github.com/devpulse/devpulse-api/internal/store"
)

// Webhook event types with dedicated handling
const (
	EventPush        = "push"
	EventPullRequest = "pull_request"
	EventIssues      = "issues"
)

// SupportedEvents lists the event types that are validated and processed
var SupportedEvents = []string{EventPush, EventPullRequest, EventIssues}

// ErrMalformedWebhook marks a delivery whose payload cannot be processed
var ErrMalformedWebhook = errors.New("malformed webhook")

type malformedError struct {
	msg string
}

func (e *malformedError) Error() string { return e.msg }

func (*malformedError) Is(target error) bool { return target == ErrMalformedWebhook }

func malformed(msg string) error {
	return &malformedError{msg: msg}
}

// ProcessWebhookEvent handles one GitHub delivery. The result is always
// populated. The error is nil on success, wraps ErrMalformedWebhook when the
// payload lacks required data, and carries the cause of any other failure.
func (e *Engine) ProcessWebhookEvent(ctx context.Context, event WebhookEvent) (res WebhookResult, err error) {
	ctx, span := otel.StartSpan(ctx, e.tracer, "sync.ProcessWebhookEvent",
		trace.WithAttributes(otel.AttrWebhookEvent.String(event.Type)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("webhook processing panicked: %v", r)
		}
		res.ProcessedAt = e.clock.Now().UTC()
		if err != nil {
			otel.RecordError(span, err)
			res.Success = false
			res.Message = ""
			res.Error = err.Error()
			slog.Error("Webhook processing failed",
				"event", event.Type,
				"delivery_id", event.DeliveryID,
				"error", err)
		}
	}()

	slog.Debug("Processing webhook event", "event", event.Type, "delivery_id", event.DeliveryID)

	switch event.Type {
	case EventPush:
		return e.processPush(ctx, event.Payload)
	case EventPullRequest:
		return processPullRequest(event.Payload)
	case EventIssues:
		return processIssues(event.Payload)
	default:
		slog.Info("Unsupported webhook event type", "event", event.Type)
		return WebhookResult{Success: true, Message: fmt.Sprintf("Event type %s ignored", event.Type)}, nil
	}
}

func decode(payload []byte, v any) error {
	if len(payload) == 0 {
		return malformed("empty payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return malformed(fmt.Sprintf("invalid JSON payload: %v", err))
	}
	return nil
}

func (e *Engine) processPush(ctx context.Context, payload []byte) (WebhookResult, error) {
	var push gh.PushEvent
	if err := decode(payload, &push); err != nil {
		return WebhookResult{}, err
	}
	if push.Repo == nil || push.Pusher == nil {
		return WebhookResult{}, malformed("Invalid push event data")
	}

	repoName := push.GetRepo().GetFullName()
	username := push.GetPusher().GetLogin()
	if username == "" {
		username = push.GetPusher().GetName()
	}

	conn, err := e.store.FindConnectionByUsername(ctx, username)
	if errors.Is(err, store.ErrConnectionMissing) {
		slog.Info("Push from user without a GitHub connection", "pusher", username, "repository", repoName)
		return WebhookResult{
			Success: true,
			Message: fmt.Sprintf("Processed push event for %s", repoName),
		}, nil
	}
	if err != nil {
		return WebhookResult{}, fmt.Errorf("failed to look up pusher %s: %w", username, err)
	}

	created, err := e.refresher.RecordPushCommits(ctx, conn.UserID, repoName, push.Commits, e.clock.Now().UTC())
	if err != nil {
		return WebhookResult{}, fmt.Errorf("failed to record push commits: %w", err)
	}

	removed := e.cache.InvalidateUser(conn.UserID)
	e.metrics.RecordActivities(ctx, "webhook", created)
	slog.Info("Push event recorded",
		"user_id", conn.UserID,
		"repository", repoName,
		"new_commits", created,
		"cache_entries_invalidated", removed)

	return WebhookResult{
		Success: true,
		Message: fmt.Sprintf("Processed push event for %s: %d new commits", repoName, created),
	}, nil
}

func processPullRequest(payload []byte) (WebhookResult, error) {
	var ev gh.PullRequestEvent
	if err := decode(payload, &ev); err != nil {
		return WebhookResult{}, err
	}
	if ev.PullRequest == nil || ev.Repo == nil {
		return WebhookResult{}, malformed("Invalid pull request event data")
	}
	return WebhookResult{
		Success: true,
		Message: fmt.Sprintf("Processed pull request event for %s", ev.GetRepo().GetFullName()),
	}, nil
}

func processIssues(payload []byte) (WebhookResult, error) {
	var ev gh.IssuesEvent
	if err := decode(payload, &ev); err != nil {
		return WebhookResult{}, err
	}
	if ev.Issue == nil || ev.Repo == nil {
		return WebhookResult{}, malformed("Invalid issue event data")
	}
	return WebhookResult{
		Success: true,
		Message: fmt.Sprintf("Processed issue event for %s", ev.GetRepo().GetFullName()),
	}, nil
}
