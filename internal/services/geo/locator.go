// File: internal/services/geo/locator.go

// Package geo resolves the user's approximate location for the asklocation
// flow. On the web client this was a browser permission prompt; server-side
// it is an IP lookup through the tool proxy's /location endpoint. A lookup
// that fails or times out counts as a denial.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Location is the city-level position attached to a session.
type Location struct {
	City      string `json:"city"`
	Country   string `json:"country"`
	Timezone  string `json:"timezone"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Locator resolves the current user's location or reports denial via error.
type Locator interface {
	Locate(ctx context.Context) (*Location, error)
}

// ErrDenied is returned when no location can be resolved.
var ErrDenied = errors.New("location unavailable")

// ProxyLocator resolves location through the tool proxy. Every lookup races a
// fixed timeout so the caller never blocks on a slow upstream.
type ProxyLocator struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewProxyLocator(baseURL string) *ProxyLocator {
	return &ProxyLocator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		timeout: 10 * time.Second,
	}
}

func (l *ProxyLocator) Locate(ctx context.Context) (*Location, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/location", nil)
	if err != nil {
		return nil, ErrDenied
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDenied, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrDenied
	}

	var loc Location
	if err := json.Unmarshal(body, &loc); err != nil || loc.City == "" || loc.City == "Unknown" {
		return nil, ErrDenied
	}
	return &loc, nil
}
