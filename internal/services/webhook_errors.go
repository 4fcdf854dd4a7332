package services

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies why a chat reply did not come from the webhook.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureNotConfigured
	FailureRemote
	FailureEmptyResponse
	FailureMalformedResponse
	FailureUnresolvableShape
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureNotConfigured:
		return "not_configured"
	case FailureRemote:
		return "remote_failure"
	case FailureEmptyResponse:
		return "empty_response"
	case FailureMalformedResponse:
		return "malformed_response"
	case FailureUnresolvableShape:
		return "unresolvable_shape"
	default:
		return fmt.Sprintf("failure(%d)", int(k))
	}
}

var (
	ErrNotConfigured       = errors.New("chatbot webhook not configured")
	ErrWebhookNotActive    = errors.New("webhook not active")
	ErrMissingResponseNode = errors.New(`webhook workflow has no "Respond to Webhook" step`)
	ErrEmptyResponse       = errors.New("empty response from webhook")
	ErrMalformedResponse   = errors.New("malformed JSON from webhook")
	ErrUnresolvableShape   = errors.New("no reply text in webhook payload")

	errNoBaseURL = errors.New("relative webhook URL and no public base URL")
)

// WebhookError describes a failed chatbot webhook exchange. StatusCode and
// Body are set only when the webhook answered.
type WebhookError struct {
	Kind       FailureKind
	StatusCode int
	Body       string
	Err        error
}

func (e *WebhookError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *WebhookError) Unwrap() error { return e.Err }

// classifyHTTPFailure maps a non-2xx webhook answer to a RemoteFailure. The
// 500 check depends on n8n's exact error wording.
func classifyHTTPFailure(status int, body string) *WebhookError {
	werr := &WebhookError{Kind: FailureRemote, StatusCode: status, Body: body}
	switch {
	case status == 404:
		werr.Err = ErrWebhookNotActive
	case status == 500 && strings.Contains(body, "Respond to Webhook"):
		werr.Err = ErrMissingResponseNode
	default:
		werr.Err = fmt.Errorf("HTTP error: status %d", status)
	}
	return werr
}
