// Package query fetches inclusion data from a network node: the
// current state root and per-transition Merkle paths proving that
// referenced state existed in the ledger.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// StatePath is the Merkle-path evidence for one transition.
type StatePath struct {
	TransitionID string   `json:"transition_id"`
	StateRoot    string   `json:"state_root"`
	Siblings     []string `json:"siblings"`
}

// Client answers inclusion queries. Implementations may suspend on
// network I/O; both methods honor context cancellation.
type Client interface {
	StateRoot(ctx context.Context) (string, error)
	StatePath(ctx context.Context, transitionID string) (*StatePath, error)
}

// HTTPClient queries a node's REST endpoints.
type HTTPClient struct {
	base string
	http *http.Client
}

// NewHTTPClient creates a client for the node at base, e.g.
// "https://api.explorer.example/v1".
func NewHTTPClient(base string) *HTTPClient {
	return &HTTPClient{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// StateRoot fetches the latest state root.
func (c *HTTPClient) StateRoot(ctx context.Context) (string, error) {
	var root string
	if err := c.getJSON(ctx, c.base+"/latest/stateRoot", &root); err != nil {
		return "", fmt.Errorf("fetching state root: %w", err)
	}
	return root, nil
}

// StatePath fetches the Merkle path for one transition.
func (c *HTTPClient) StatePath(ctx context.Context, transitionID string) (*StatePath, error) {
	var path StatePath
	endpoint := c.base + "/statePath/" + url.PathEscape(transitionID)
	if err := c.getJSON(ctx, endpoint, &path); err != nil {
		return nil, fmt.Errorf("fetching state path for %s: %w", transitionID, err)
	}
	return &path, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
