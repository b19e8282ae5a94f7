package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tracking-bot/internal/core/config"
	"tracking-bot/internal/core/httpclient"
	"tracking-bot/internal/core/logger"
	"tracking-bot/internal/features/tracking/domain"
	"tracking-bot/internal/features/tracking/ports"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// metaCodeDuplicate is the provider's "tracking number already exists" signal.
const metaCodeDuplicate = 4016

// TrackingMoreAdapter implements the ProviderClient port against the
// TrackingMore v2 REST API.
type TrackingMoreAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the provider connection details.
	config config.ProviderConfig
	// limiter caps outbound calls to the provider request budget.
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewTrackingMoreAdapter creates a new instance of TrackingMoreAdapter.
func NewTrackingMoreAdapter(cfg config.ProviderConfig) *TrackingMoreAdapter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &TrackingMoreAdapter{
		client:  httpclient.NewClient(10 * time.Second),
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		logger:  logger.Get(),
	}
}

// trackingMoreEnvelope is the common response wrapper of the v2 API.
type trackingMoreEnvelope struct {
	Meta struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"meta"`
	Data struct {
		Items []domain.RawItem `json:"items"`
	} `json:"data"`
}

// Create registers the tracking pair with the provider.
// A duplicate-registration conflict is silently treated as success.
func (a *TrackingMoreAdapter) Create(ctx context.Context, trackingNumber, carrier string) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter aborted: %w", err)
	}

	payload, err := json.Marshal(map[string]string{
		"tracking_number": trackingNumber,
		"carrier_code":    carrier,
	})
	if err != nil {
		return fmt.Errorf("failed to encode create payload: %w", err)
	}

	endpoint := a.config.URL + "/v2/trackings/post"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var envelope trackingMoreEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.Meta.Code == metaCodeDuplicate {
		a.logger.Debug("Tracking pair already registered with provider",
			zap.String("tracking_number", trackingNumber),
			zap.String("carrier", carrier),
		)
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider create returned status %d: %s", resp.StatusCode, envelope.Meta.Message)
	}

	return nil
}

// Get retrieves the raw shipment record for the tracking pair.
func (a *TrackingMoreAdapter) Get(ctx context.Context, trackingNumber, carrier string) (*domain.RawItem, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter aborted: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/trackings/get?tracking_number=%s&carrier_code=%s",
		a.config.URL, url.QueryEscape(trackingNumber), url.QueryEscape(carrier))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider get returned status: %d", resp.StatusCode)
	}

	var envelope trackingMoreEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(envelope.Data.Items) == 0 {
		return nil, ports.ErrNoTrackingData
	}

	return &envelope.Data.Items[0], nil
}

func (a *TrackingMoreAdapter) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Trackingmore-Api-Key", a.config.APIKey)
}
