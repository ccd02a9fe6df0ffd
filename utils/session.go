package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SessionVerifier checks admin session tokens against the internal
// session-verification endpoint. Timeout or network failure counts as an
// authentication failure.
type SessionVerifier struct {
	URL    string
	client *http.Client
}

// NewSessionVerifier builds a verifier with the fixed 5 second timeout.
func NewSessionVerifier(url string) *SessionVerifier {
	return &SessionVerifier{
		URL:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Verify posts the session token and returns the decoded claims.
func (sv *SessionVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sv.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := sv.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session verification failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session verification failed: status %d", resp.StatusCode)
	}

	var claims Claims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("session verification failed: %w", err)
	}
	return &claims, nil
}
