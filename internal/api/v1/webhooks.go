package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	gh "github.com/google/go-github/v57/github"

	"github.com/devpulse/devpulse-api/internal/api/common"
	pkgsync "github.com/devpulse/devpulse-api/internal/sync"
)

// maxWebhookBytes bounds a delivery body. GitHub caps payloads at 25MB.
const maxWebhookBytes = 25 << 20

// Signature headers, newest first
const (
	headerSignature256 = "X-Hub-Signature-256"
	headerSignature    = "X-Hub-Signature"
)

var errInvalidSignature = errors.New("invalid webhook signature")

// WebhookRoutes handles inbound GitHub deliveries
type WebhookRoutes struct {
	service  pkgsync.Service
	secret   []byte
	devMode  bool
	maxBytes int64
}

// WebhookOption configures the webhook routes
type WebhookOption func(*WebhookRoutes)

// WithWebhookSecret enables X-Hub-Signature-256 validation
func WithWebhookSecret(secret []byte) WebhookOption {
	return func(routes *WebhookRoutes) {
		routes.secret = secret
	}
}

// WithDevMode exposes the synthetic test delivery endpoint
func WithDevMode(enabled bool) WebhookOption {
	return func(routes *WebhookRoutes) {
		routes.devMode = enabled
	}
}

// WithMaxPayloadBytes overrides the delivery size limit
func WithMaxPayloadBytes(n int64) WebhookOption {
	return func(routes *WebhookRoutes) {
		if n > 0 {
			routes.maxBytes = n
		}
	}
}

// NewWebhookRoutes creates the webhook routes
func NewWebhookRoutes(svc pkgsync.Service, opts ...WebhookOption) *WebhookRoutes {
	routes := &WebhookRoutes{service: svc, maxBytes: maxWebhookBytes}
	for _, opt := range opts {
		opt(routes)
	}
	return routes
}

// WebhookRouter creates the router for /api/v1/webhooks
func WebhookRouter(svc pkgsync.Service, opts ...WebhookOption) http.Handler {
	routes := NewWebhookRoutes(svc, opts...)

	r := chi.NewRouter()
	r.Post("/github", routes.github)
	r.Get("/status", routes.status)
	r.Post("/test", routes.test)
	return r
}

func (routes *WebhookRoutes) github(w http.ResponseWriter, r *http.Request) {
	eventType := gh.WebHookType(r)
	if eventType == "" {
		common.WriteErrorResponse(w, "Missing X-GitHub-Event header", http.StatusBadRequest)
		return
	}

	payload, err := routes.readPayload(w, r)
	if err != nil {
		slog.Warn("Rejected webhook delivery", "event", eventType, "error", err)
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, errInvalidSignature):
			common.WriteErrorResponse(w, "Invalid webhook signature", http.StatusUnauthorized)
		case errors.As(err, &tooLarge):
			common.WriteErrorResponse(w, "Webhook payload too large", http.StatusRequestEntityTooLarge)
		default:
			common.WriteErrorResponse(w, "Failed to read webhook payload", http.StatusBadRequest)
		}
		return
	}

	res, err := routes.service.ProcessWebhookEvent(r.Context(), pkgsync.WebhookEvent{
		Type:       eventType,
		DeliveryID: gh.DeliveryID(r),
		Payload:    payload,
	})
	switch {
	case err == nil:
		common.WriteJSONResponse(w, res, http.StatusOK)
	case errors.Is(err, pkgsync.ErrMalformedWebhook):
		common.WriteJSONResponse(w, res, http.StatusBadRequest)
	default:
		common.WriteJSONResponse(w, res, http.StatusInternalServerError)
	}
}

// readPayload returns the delivery body, verified against the secret when one
// is set. Form-encoded deliveries are unwrapped to their JSON payload.
func (routes *WebhookRoutes) readPayload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, routes.maxBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	if len(routes.secret) > 0 {
		signature := r.Header.Get(headerSignature256)
		if signature == "" {
			signature = r.Header.Get(headerSignature)
		}
		if err := gh.ValidateSignature(signature, body, routes.secret); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidSignature, err)
		}
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" {
		return body, nil
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse form payload: %w", err)
	}
	return []byte(form.Get("payload")), nil
}

func (*WebhookRoutes) status(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, WebhookStatusResponse{
		Status:          "active",
		Timestamp:       time.Now().UTC(),
		SupportedEvents: pkgsync.SupportedEvents,
	}, http.StatusOK)
}

func (routes *WebhookRoutes) test(w http.ResponseWriter, r *http.Request) {
	if !routes.devMode {
		common.WriteErrorResponse(w, "Webhook test endpoint is disabled", http.StatusNotFound)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		username = "testuser"
	}
	payload, err := json.Marshal(testPushEvent(username))
	if err != nil {
		common.WriteErrorResponse(w, "Failed to build test payload", http.StatusInternalServerError)
		return
	}

	res, err := routes.service.ProcessWebhookEvent(r.Context(), pkgsync.WebhookEvent{
		Type:       pkgsync.EventPush,
		DeliveryID: "test-delivery",
		Payload:    payload,
	})
	if err != nil {
		common.WriteJSONResponse(w, WebhookTestResponse{
			Success: false,
			Message: "Test webhook failed",
			Result:  res,
		}, http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, WebhookTestResponse{
		Success: true,
		Message: "Test webhook processed",
		Result:  res,
	}, http.StatusOK)
}

func testPushEvent(username string) *gh.PushEvent {
	now := gh.Timestamp{Time: time.Now().UTC()}
	return &gh.PushEvent{
		Ref: gh.String("refs/heads/main"),
		Repo: &gh.PushEventRepository{
			Name:     gh.String("test-repo"),
			FullName: gh.String(username + "/test-repo"),
		},
		Pusher: &gh.CommitAuthor{
			Name:  gh.String(username),
			Login: gh.String(username),
		},
		Commits: []*gh.HeadCommit{{
			ID:        gh.String("test-commit-" + fmt.Sprint(now.Unix())),
			Message:   gh.String("Test commit"),
			Timestamp: &now,
			Added:     []string{"README.md"},
		}},
	}
}
