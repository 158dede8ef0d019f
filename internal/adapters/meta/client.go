// Package meta fetches session metadata from the coordination server's
// REST surface. A successful lookup is a precondition for joining.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mkarev/liveclass/internal/domain"
)

type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup fetches {id, hostId, title, waitingRoomEnabled, settings} for one
// session.
func (c *Client) Lookup(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	url := fmt.Sprintf("%s/sessions/%s", c.base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session lookup: unexpected status %d", resp.StatusCode)
	}
	var s domain.Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("session lookup decode: %w", err)
	}
	if s.ID == "" || s.HostID == "" {
		return nil, fmt.Errorf("session lookup: incomplete metadata")
	}
	return &s, nil
}
