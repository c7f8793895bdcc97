// Package identity provides an HTTP client for the platform identity service.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/port/identity"
)

// Client talks to the identity service's user profile API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new identity client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Resolve looks up one user profile by ID.
func (c *Client) Resolve(ctx context.Context, userID string) (*identity.Profile, error) {
	url := fmt.Sprintf("%s/api/users/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", userID, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", userID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("resolve user %s: %w", userID, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("resolve user %s: status %d: %s", userID, resp.StatusCode, body)
	}

	var p identity.Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", userID, err)
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return &p, nil
}
