package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	domain "github.com/voiceunleashed/fluency/internal/domain/identity"
)

const defaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// Client verifies ID tokens and deletes accounts against the Google
// Identity Toolkit REST API using the project's web API key.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point at a stub server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

type lookupResponse struct {
	Users []struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	} `json:"users"`
}

// Verify implements domain.Verifier. Fails closed: every provider
// error collapses to ErrUnauthenticated; details only reach the log.
func (c *Client) Verify(ctx context.Context, idToken string) (*domain.User, error) {
	if idToken == "" {
		return nil, domain.ErrUnauthenticated
	}

	raw, err := c.post(ctx, "accounts:lookup", idToken)
	if err != nil {
		log.Printf("identity lookup failed: %v", err)
		return nil, domain.ErrUnauthenticated
	}

	var lr lookupResponse
	if err := json.Unmarshal(raw, &lr); err != nil || len(lr.Users) == 0 {
		return nil, domain.ErrUnauthenticated
	}
	return &domain.User{ID: lr.Users[0].LocalID, Email: lr.Users[0].Email}, nil
}

// DeleteAccount implements domain.Verifier.
func (c *Client) DeleteAccount(ctx context.Context, idToken string) error {
	if _, err := c.post(ctx, "accounts:delete", idToken); err != nil {
		return fmt.Errorf("identity delete: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, method, idToken string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"idToken": idToken})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, method, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d: %s", method, resp.StatusCode, raw)
	}
	return raw, nil
}
