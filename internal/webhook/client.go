package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/exercise-simulator/internal/config"
	"github.com/sebastiankruger/exercise-simulator/internal/engine"
	"github.com/sebastiankruger/exercise-simulator/internal/telemetry"
)

// Client forwards rep events and session summaries to an external endpoint.
// Delivery is best effort: an unreachable endpoint is logged, never fatal.
type Client struct {
	endpoint    string
	repPath     string
	summaryPath string
	httpClient  *http.Client
}

// NewClient creates a client from the webhook settings. It returns nil when
// no endpoint is configured.
func NewClient(cfg *config.Config) *Client {
	if cfg.WebhookEndpoint == "" {
		return nil
	}
	timeout := cfg.WebhookTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:    cfg.WebhookEndpoint,
		repPath:     cfg.WebhookRepPath,
		summaryPath: cfg.WebhookSummaryPath,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// SendRep posts one rep event
func (c *Client) SendRep(ctx context.Context, ev engine.RepEvent) error {
	status, err := c.post(ctx, c.repPath, ev)
	if err != nil {
		return err
	}
	if status >= 400 {
		log.Warn().
			Int("status", status).
			Int("rep", ev.RepNumber).
			Msg("Webhook returned error status for rep event")
	} else {
		log.Debug().
			Str("session", ev.SessionID.String()).
			Int("rep", ev.RepNumber).
			Msg("Rep event sent to webhook")
	}
	return nil
}

// SendSummary posts a session summary
func (c *Client) SendSummary(ctx context.Context, sum telemetry.Summary) error {
	status, err := c.post(ctx, c.summaryPath, sum)
	if err != nil {
		return err
	}
	if status >= 400 {
		log.Warn().
			Int("status", status).
			Str("session", sum.SessionID.String()).
			Msg("Webhook returned error status for session summary")
	} else {
		log.Debug().
			Str("session", sum.SessionID.String()).
			Int("reps", sum.TotalReps).
			Msg("Session summary sent to webhook")
	}
	return nil
}

// post returns the response status. Transport failures are logged and
// reported as status 0 without an error.
func (c *Client) post(ctx context.Context, path string, v any) (int, error) {
	url := c.endpoint + path

	payload, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to reach webhook endpoint")
		return 0, nil
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
