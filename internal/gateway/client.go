// internal/gateway/client.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	apperrors "growth-assistant/internal/common/errors"
	commonhttp "growth-assistant/internal/common/http"
	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/common/metrics"
)

// Client calls the gateway's delivery endpoint over HTTP. The pipeline
// uses it so delivery goes through the same contract whether the gateway
// runs in process or on another host.
type Client struct {
	baseURL string
	http    *commonhttp.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec float64
	Burst      int
}

func NewClient(cfg ClientConfig, log logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    commonhttp.NewClient(cfg.Timeout),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		logger:  log,
	}
}

// Send posts one delivery request. A transport failure or non-200 status
// is returned as a failed SendResponse, not an error, so callers treat
// delivery problems the same way the backends report them.
func (c *Client) Send(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal send request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/notifications/whatsapp", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build send request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.GatewaySendsTotal.WithLabelValues("error").Inc()
		c.logger.Warn("Gateway request failed", map[string]interface{}{
			"error": err.Error(),
		})
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return &SendResponse{
				Success: false,
				Error:   string(apperrors.ErrCodeGatewayTimeout),
			}, nil
		}
		return &SendResponse{Success: false, Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GatewaySendsTotal.WithLabelValues("error").Inc()
		return &SendResponse{
			Success: false,
			Error:   apperrors.NewNotificationSendError(fmt.Sprintf("gateway returned status %d", resp.StatusCode)).Error(),
		}, nil
	}

	var out SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.GatewaySendsTotal.WithLabelValues("error").Inc()
		return &SendResponse{Success: false, Error: fmt.Sprintf("decode gateway response: %v", err)}, nil
	}

	if out.Success {
		metrics.GatewaySendsTotal.WithLabelValues("success").Inc()
	} else {
		metrics.GatewaySendsTotal.WithLabelValues("failure").Inc()
	}
	return &out, nil
}
