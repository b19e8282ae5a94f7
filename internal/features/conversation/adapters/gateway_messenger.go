package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tracking-bot/internal/core/config"
	"tracking-bot/internal/core/httpclient"
)

// GatewayMessenger implements the Messenger port against the chat gateway's
// outbound message endpoint.
type GatewayMessenger struct {
	// client is the HTTP client used for gateway requests.
	client *http.Client
	// config holds the gateway connection details.
	config config.GatewayConfig
}

// NewGatewayMessenger creates a new instance of GatewayMessenger.
func NewGatewayMessenger(cfg config.GatewayConfig) *GatewayMessenger {
	return &GatewayMessenger{
		client: httpclient.NewClient(10 * time.Second),
		config: cfg,
	}
}

// outboundMessage is the gateway's delivery request body.
type outboundMessage struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	Text      string `json:"text"`
}

// Send delivers a text message to the user's private channel.
func (g *GatewayMessenger) Send(ctx context.Context, userID, channelID, text string) error {
	payload, err := json.Marshal(outboundMessage{
		UserID:    userID,
		ChannelID: channelID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode outbound message: %w", err)
	}

	url := g.config.URL + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.config.Token)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status: %d", resp.StatusCode)
	}
	return nil
}
