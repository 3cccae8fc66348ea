package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-parley/internal/pkg/identity/port"
)

// HTTPDirectory resolves users against the identity provider's REST surface.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDirectory constructs a directory client for the given base URL,
// e.g. http://identity.internal/api.
func NewHTTPDirectory(baseURL string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

var _ port.Directory = (*HTTPDirectory)(nil)

func (d *HTTPDirectory) Resolve(ctx context.Context, userID string) (port.User, error) {
	endpoint := d.baseURL + "/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return port.User{}, fmt.Errorf("identity: build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return port.User{}, fmt.Errorf("identity: resolve %s: %w", userID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return port.User{}, port.ErrUnknownUser
	case resp.StatusCode != http.StatusOK:
		return port.User{}, fmt.Errorf("identity: resolve %s: unexpected status %d", userID, resp.StatusCode)
	}

	var u port.User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return port.User{}, fmt.Errorf("identity: decode user: %w", err)
	}
	if u.ID == "" {
		u.ID = userID
	}
	return u, nil
}
