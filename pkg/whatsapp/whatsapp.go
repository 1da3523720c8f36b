// Package whatsapp is a thin client for the center's WhatsApp gateway. The
// gateway owns templating and delivery; this client only posts template
// messages and reports success or failure.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// Config holds gateway connection settings.
type Config struct {
	GatewayURL string
	APIToken   string
	Timeout    time.Duration
}

// Client posts template messages to the gateway.
type Client struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// NewClient constructs a gateway client. An empty gateway URL yields a client
// whose Notify always reports failure, so callers can wire it unconditionally.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "whatsapp").Logger(),
	}
}

type messageRequest struct {
	To        string            `json:"to"`
	Template  string            `json:"template"`
	Variables map[string]string `json:"variables,omitempty"`
}

// Notify sends one template message. Delivery is fire-and-forget: failures
// are logged and reported as false, never as errors.
func (c *Client) Notify(ctx context.Context, recipient, templateKey string, variables map[string]string) bool {
	if c.cfg.GatewayURL == "" || recipient == "" {
		return false
	}

	payload, err := json.Marshal(messageRequest{
		To:        recipient,
		Template:  templateKey,
		Variables: variables,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode gateway message")
		return false
	}

	url := fmt.Sprintf("%s/v1/messages", c.cfg.GatewayURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to build gateway request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("template", templateKey).Msg("gateway request failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("template", templateKey).Msg("gateway rejected message")
		return false
	}

	return true
}
