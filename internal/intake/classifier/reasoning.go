package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/munidigital/tramite-backend/pkg/config"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

// ErrRateLimited is returned when the local limiter has no budget; the
// chain treats it like any other strategy failure.
var ErrRateLimited = fmt.Errorf("reasoning service rate limit exhausted")

// ReasoningClient calls the external reasoning service. A circuit breaker
// keeps a flapping service from slowing every submission down, and a local
// rate limiter enforces the configured request budget.
type ReasoningClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[string]
	limiter    *rate.Limiter
	logger     *logger.Logger
}

// NewReasoningClient creates a client from configuration.
func NewReasoningClient(cfg config.ReasoningConfig, log *logger.Logger) *ReasoningClient {
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "reasoning-service",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = 30
	}

	return &ReasoningClient{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		logger:     log.WithComponent("reasoning_client"),
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a prompt and returns the raw model output. It does not
// block on the rate limiter: an exhausted budget fails fast so the caller
// can fall through to the next strategy.
func (c *ReasoningClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.limiter.Allow() {
		return "", ErrRateLimited
	}

	return c.breaker.Execute(func() (string, error) {
		return c.generate(ctx, prompt)
	})
}

func (c *ReasoningClient) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reasoning service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("reasoning service returned status %d: %s", resp.StatusCode, payload)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}

	c.logger.Debug().
		Dur("duration", time.Since(start)).
		Int("response_len", len(out.Response)).
		Msg("reasoning service responded")

	return out.Response, nil
}
