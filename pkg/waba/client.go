package waba

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/okanyedibela/waba-relay/environments"
	"github.com/okanyedibela/waba-relay/pkg/logger"
)

const (
	apiKeyHeader     = "D360-API-KEY"
	messagingProduct = "whatsapp"
	recipientTypeInd = "individual"
)

// ProviderError carries the upstream status and body of a failed provider
// call. Sends are never retried automatically; the caller resubmits.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the 360dialog WhatsApp Business API.
type Client struct {
	httpClient *resty.Client
	baseURL    string
}

func NewClient(cfg environments.ProviderConfig) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader(apiKeyHeader, cfg.APIKey)

	return &Client{
		httpClient: client,
		baseURL:    cfg.BaseURL,
	}
}

// SendText posts a text message and returns the provider-assigned message
// id used to correlate later status callbacks.
func (c *Client) SendText(ctx context.Context, phone, text string) (*SendTextResponse, error) {
	payload := SendTextRequest{
		MessagingProduct: messagingProduct,
		RecipientType:    recipientTypeInd,
		To:               phone,
		Type:             "text",
		Text:             TextContent{Body: text},
	}

	var sendResp SendTextResponse

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&sendResp).
		Post(c.baseURL + "/v1/messages")

	if err != nil {
		return nil, &ProviderError{StatusCode: 0, Body: err.Error()}
	}

	logger.Infof("Provider send to %s completed in %v (status: %d)", phone, time.Since(startTime), resp.StatusCode())

	if resp.IsError() {
		return nil, &ProviderError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return &sendResp, nil
}

// MarkRead posts a read receipt for an inbound message. Callers treat
// failures as log-only.
func (c *Client) MarkRead(ctx context.Context, providerID string) error {
	payload := MarkReadRequest{
		MessagingProduct: messagingProduct,
		Status:           "read",
		MessageID:        providerID,
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.baseURL + "/v1/messages")

	if err != nil {
		return &ProviderError{StatusCode: 0, Body: err.Error()}
	}

	if resp.IsError() {
		return &ProviderError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return nil
}

func (c *Client) GetBaseURL() string {
	return c.baseURL
}
