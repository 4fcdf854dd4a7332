package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nutriboard-backend/internal/models"
)

// UserDataWebhook loads the user's profile from an n8n workflow.
type UserDataWebhook struct {
	url    string
	client *http.Client
}

// NewUserDataWebhook returns nil when url is empty, which disables refreshes.
func NewUserDataWebhook(url string, client *http.Client) *UserDataWebhook {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &UserDataWebhook{url: url, client: client}
}

func (w *UserDataWebhook) FetchProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	body, _ := json.Marshal(map[string]string{"userId": userID})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("user data webhook returned status %d", resp.StatusCode)
	}

	p, err := decodeProfile(raw)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = userID
	}
	if p.ID != userID {
		return nil, fmt.Errorf("user data webhook returned profile %q, want %q", p.ID, userID)
	}
	return p, nil
}

// decodeProfile accepts a profile object or n8n's one-item array around it.
func decodeProfile(raw []byte) (*models.UserProfile, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrEmptyResponse
	}

	var p models.UserProfile
	if raw[0] == '[' {
		var items []models.UserProfile
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if len(items) == 0 {
			return nil, ErrEmptyResponse
		}
		p = items[0]
	} else if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if strings.TrimSpace(p.Name) == "" {
		return nil, errors.New("user data webhook returned a profile without a name")
	}
	return &p, nil
}
