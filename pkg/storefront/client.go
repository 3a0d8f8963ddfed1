// Package storefront is the Go client for the storefront API, used by the
// checkout front end.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/aaravmahajanofficial/art-storefront/internal/utils/response"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the storefront API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("storefront api: status %d", e.StatusCode)
	}

	return fmt.Sprintf("storefront api: %s: %s", e.Code, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient builds an API client. A nil httpClient gets a traced one.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// WithToken returns a copy that sends the session bearer token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token

	return &clone
}

func (c *Client) ShippingOptions(ctx context.Context, req models.ShippingOptionsRequest) ([]models.ShippingOption, error) {
	var out models.ShippingOptionsResponse

	if err := c.post(ctx, "/api/v1/shipping/options", req, &out); err != nil {
		return nil, err
	}

	if out.Data == nil {
		return []models.ShippingOption{}, nil
	}

	return out.Data, nil
}

// ValidateDiscount reports a rejected code as a result with Valid false, not
// as an error.
func (c *Client) ValidateDiscount(ctx context.Context, code string, subtotal int64) (*models.DiscountValidation, error) {
	var out models.DiscountValidation

	err := c.post(ctx, "/api/v1/discounts/validate", models.ValidateDiscountRequest{Code: code, Subtotal: subtotal}, &out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// discount rejections carry a 4xx status with a {valid:false} body
	if resp.StatusCode >= http.StatusBadRequest && !isDiscountRejection(raw) {
		return decodeError(resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func isDiscountRejection(raw []byte) bool {
	var rejection models.DiscountRejectionResponse

	return json.Unmarshal(raw, &rejection) == nil && rejection.Error != ""
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status}

	var envelope response.APIResponse
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}

	return apiErr
}
