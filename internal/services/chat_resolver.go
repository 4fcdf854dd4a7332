package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"nutriboard-backend/internal/models"
)

// ApologyReply is returned when the webhook answered but nothing in its
// payload could be shown.
const ApologyReply = "Sorry, I could not process your request."

type ReplySource string

const (
	SourceWebhook ReplySource = "webhook"
	SourceCanned  ReplySource = "canned"
	SourceApology ReplySource = "apology"
)

// ProfileProvider hands out a read-only profile snapshot for the caller.
type ProfileProvider interface {
	Snapshot(ctx context.Context) ProfileSnapshot
}

// Resolution is the outcome of one chat send. Failure is nil only when the
// reply came from the webhook.
type Resolution struct {
	Reply   string
	Source  ReplySource
	Failure *WebhookError
}

// ChatResolver turns a user message into a reply, asking the chatbot webhook
// first and falling back to canned replies. It keeps no state between calls.
type ChatResolver struct {
	profiles ProfileProvider
	proxy    DevProxy
	baseURL  string
	client   *http.Client
}

type ResolverOption func(*ChatResolver)

func WithDevProxy(p DevProxy) ResolverOption {
	return func(r *ChatResolver) { r.proxy = p }
}

// WithBaseURL sets the origin that relative (proxied) endpoints resolve against.
func WithBaseURL(baseURL string) ResolverOption {
	return func(r *ChatResolver) { r.baseURL = baseURL }
}

func WithHTTPClient(c *http.Client) ResolverOption {
	return func(r *ChatResolver) {
		if c != nil {
			r.client = c
		}
	}
}

func NewChatResolver(profiles ProfileProvider, opts ...ResolverOption) *ChatResolver {
	r := &ChatResolver{
		profiles: profiles,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve always returns a non-empty reply.
func (r *ChatResolver) Resolve(ctx context.Context, message, endpoint string) string {
	return r.ResolveDetailed(ctx, message, endpoint).Reply
}

func (r *ChatResolver) ResolveDetailed(ctx context.Context, message, endpoint string) Resolution {
	snap := r.snapshot(ctx)

	if strings.TrimSpace(endpoint) == "" {
		log.Printf("chatbot: webhook URL not configured, using canned replies")
		return cannedResolution(message, snap, &WebhookError{Kind: FailureNotConfigured, Err: ErrNotConfigured})
	}

	target := r.proxy.Rewrite(endpoint)
	reply, werr := r.callWebhook(ctx, target, message, snap)
	if werr == nil {
		return Resolution{Reply: reply, Source: SourceWebhook}
	}

	if werr.Kind == FailureUnresolvableShape {
		log.Printf("chatbot: could not extract a reply from webhook data: %v", werr)
		return Resolution{Reply: ApologyReply, Source: SourceApology, Failure: werr}
	}

	switch {
	case errors.Is(werr, ErrWebhookNotActive):
		log.Printf("chatbot: webhook not active, activate the n8n workflow")
	case errors.Is(werr, ErrMissingResponseNode):
		log.Printf(`chatbot: n8n workflow is missing a "Respond to Webhook" node`)
	case werr.Kind == FailureEmptyResponse:
		log.Printf(`chatbot: empty response from webhook, the workflow may lack a "Respond to Webhook" node`)
	}
	log.Printf("chatbot: webhook call failed (%v), falling back to canned replies", werr)
	return cannedResolution(message, snap, werr)
}

func (r *ChatResolver) snapshot(ctx context.Context) ProfileSnapshot {
	if r.profiles == nil {
		return DemoSnapshot()
	}
	return r.profiles.Snapshot(ctx)
}

// callWebhook makes a single POST. The request is detached from ctx
// cancellation: once issued it runs until the transport gives up.
func (r *ChatResolver) callWebhook(ctx context.Context, endpoint, message string, snap ProfileSnapshot) (string, *WebhookError) {
	target, err := resolveEndpoint(endpoint, r.baseURL)
	if err != nil {
		return "", &WebhookError{Kind: FailureRemote, Err: err}
	}

	body, err := json.Marshal(newWebhookChatRequest(message, snap.Profile))
	if err != nil {
		return "", &WebhookError{Kind: FailureRemote, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", &WebhookError{Kind: FailureRemote, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("chatbot: POST %s", target)
	resp, err := r.client.Do(req)
	if err != nil {
		return "", &WebhookError{Kind: FailureRemote, Err: err}
	}
	defer resp.Body.Close()

	// The whole body is read before any parsing so that empty detection does
	// not depend on the declared content type.
	raw, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", classifyHTTPFailure(resp.StatusCode, string(raw))
	}
	if readErr != nil {
		return "", &WebhookError{Kind: FailureRemote, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response body: %w", readErr)}
	}

	contentType := resp.Header.Get("Content-Type")
	log.Printf("chatbot: webhook answered %d (%s, %d bytes)", resp.StatusCode, contentType, len(raw))

	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return "", &WebhookError{Kind: FailureEmptyResponse, StatusCode: resp.StatusCode, Err: ErrEmptyResponse}
	}

	if strings.Contains(strings.ToLower(contentType), "text/plain") {
		return text, nil
	}

	payload, err := decodeWebhookPayload(raw)
	if err != nil {
		return "", &WebhookError{
			Kind:       FailureMalformedResponse,
			StatusCode: resp.StatusCode,
			Body:       text,
			Err:        fmt.Errorf("%w: %v", ErrMalformedResponse, err),
		}
	}

	reply, shape, err := extractReply(payload)
	if err != nil {
		return "", &WebhookError{Kind: FailureUnresolvableShape, StatusCode: resp.StatusCode, Body: text, Err: err}
	}
	log.Printf("chatbot: reply taken from %s shape", shape)
	return reply, nil
}

func cannedResolution(message string, snap ProfileSnapshot, werr *WebhookError) Resolution {
	return Resolution{
		Reply:   CannedReply(message, snap),
		Source:  SourceCanned,
		Failure: werr,
	}
}

func newWebhookChatRequest(message string, p *models.UserProfile) models.WebhookChatRequest {
	req := models.WebhookChatRequest{
		Message:            message,
		DietaryPreferences: []string{},
		Allergies:          []string{},
		HealthGoals:        []string{},
	}
	if p == nil {
		return req
	}
	req.UserID = p.ID
	req.UserName = p.Name
	req.UserEmail = p.Email
	req.DailyCalories = p.DailyCalories
	if p.DietaryPreferences != nil {
		req.DietaryPreferences = p.DietaryPreferences
	}
	if p.Allergies != nil {
		req.Allergies = p.Allergies
	}
	if p.HealthGoals != nil {
		req.HealthGoals = p.HealthGoals
	}
	return req
}
