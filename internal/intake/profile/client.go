package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

// HTTPDirectory provides HTTP client for calling the profile directory
// service.
type HTTPDirectory struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewHTTPDirectory creates a new directory service client
func NewHTTPDirectory(baseURL string, log *logger.Logger) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.WithComponent("profile_directory"),
	}
}

// Lookup fetches a profile by requester key.
func (c *HTTPDirectory) Lookup(ctx context.Context, key string) (*domain.RequesterProfile, error) {
	endpoint := c.baseURL + "/api/v1/profiles/" + url.PathEscape(key)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().
		Str("requester_key", key).
		Msg("fetching requester profile")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call directory service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProfileNotFound
	}

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("profile lookup failed with status %d: %v", resp.StatusCode, errResp)
	}

	// Directory service wraps responses in {"success": true, "data": ...}
	var response struct {
		Success bool                    `json:"success"`
		Data    domain.RequesterProfile `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Data.Key == "" {
		response.Data.Key = key
	}

	return &response.Data, nil
}
