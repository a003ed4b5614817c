package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sorodev/marketplace-client/internal/ratelimit"
	"github.com/sorodev/marketplace-client/pkg/config"
	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
	"github.com/sorodev/marketplace-client/pkg/logger"
)

const defaultRetryAfterSeconds = 60

// Rate-limit coordination headers the backend attaches to responses.
const (
	headerRateLimitRemaining = "X-Rate-Limit-Remaining"
	headerRateLimitLimit     = "X-Rate-Limit-Limit"
	headerRateLimitReset     = "X-Rate-Limit-Reset"
	headerRequiresCaptcha    = "X-Requires-Captcha"
	headerOrderAttempts      = "X-Order-Attempts"
)

// Client consumes the commerce REST API. Every response passes through
// one observation point that feeds the rate-limit coordinator, and all
// shape-tolerant decoding is centralized in this package.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	coord      *ratelimit.Coordinator
	log        *logger.Logger
}

// NewClient builds the API client.
func NewClient(cfg config.APIConfig, coord *ratelimit.Coordinator, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("api base url required")
	}
	if coord == nil {
		return nil, fmt.Errorf("rate limit coordinator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		coord:      coord,
		log:        logg,
	}, nil
}

// ListEntrepots returns all fulfillment warehouses.
func (c *Client) ListEntrepots(ctx context.Context) ([]Entrepot, error) {
	body, err := c.do(ctx, http.MethodGet, "/entrepots", nil, pkgerrors.CodeTransport)
	if err != nil {
		return nil, err
	}
	return listFromResponse[Entrepot](body)
}

// ListProducts returns the products stocked by one warehouse.
func (c *Client) ListProducts(ctx context.Context, entrepotID int64) ([]Product, error) {
	path := fmt.Sprintf("/products/entrepot/%d", entrepotID)
	body, err := c.do(ctx, http.MethodGet, path, nil, pkgerrors.CodeTransport)
	if err != nil {
		return nil, err
	}
	return listFromResponse[Product](body)
}

// GetProduct returns one product scoped to a warehouse.
func (c *Client) GetProduct(ctx context.Context, productID, entrepotID int64) (*Product, error) {
	path := fmt.Sprintf("/products/%d/entrepot/%d", productID, entrepotID)
	body, err := c.do(ctx, http.MethodGet, path, nil, pkgerrors.CodeTransport)
	if err != nil {
		return nil, err
	}
	return objectFromResponse[Product](body)
}

// ListDeliveryPrices returns the delivery zones for one warehouse. An
// empty list is a valid outcome, distinct from a failure.
func (c *Client) ListDeliveryPrices(ctx context.Context, entrepotID int64) ([]DeliveryZone, error) {
	path := fmt.Sprintf("/delivery-prices/entrepot/%d", entrepotID)
	body, err := c.do(ctx, http.MethodGet, path, nil, pkgerrors.CodeTransport)
	if err != nil {
		return nil, err
	}
	return listFromResponse[DeliveryZone](body)
}

// CreateOrder submits the order and extracts the created identifier
// from whichever response shape the backend used.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (int64, error) {
	body, err := c.do(ctx, http.MethodPost, "/orders", req, pkgerrors.CodeOrderRejected)
	if err != nil {
		return 0, err
	}
	return OrderIDFromCreateResponse(body)
}

// GetOrder fetches an order by identifier.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	path := fmt.Sprintf("/orders/%d", orderID)
	body, err := c.do(ctx, http.MethodGet, path, nil, pkgerrors.CodeTransport)
	if err != nil {
		return nil, err
	}
	return objectFromResponse[Order](body)
}

// GetOrderByNumber fetches an order by its human-readable number.
func (c *Client) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	path := fmt.Sprintf("/orders/number/%s", orderNumber)
	body, err := c.do(ctx, http.MethodGet, path, nil, pkgerrors.CodeTransport)
	if err != nil {
		return nil, err
	}
	return objectFromResponse[Order](body)
}

// UpdateOrder replaces the order payload server-side.
func (c *Client) UpdateOrder(ctx context.Context, orderID int64, req OrderRequest) error {
	path := fmt.Sprintf("/orders/%d", orderID)
	_, err := c.do(ctx, http.MethodPut, path, req, pkgerrors.CodeOrderRejected)
	return err
}

// DownloadReceipt fetches the binary receipt document for an order.
func (c *Client) DownloadReceipt(ctx context.Context, orderID int64) ([]byte, error) {
	path := fmt.Sprintf("/orders/%d/pdf", orderID)
	return c.do(ctx, http.MethodGet, path, nil, pkgerrors.CodeTransport)
}

// PayOnDelivery confirms cash-on-delivery payment for the order.
func (c *Client) PayOnDelivery(ctx context.Context, orderID int64) (*PaymentResult, error) {
	path := fmt.Sprintf("/orders/%d/payment/delivery", orderID)
	body, err := c.do(ctx, http.MethodPost, path, struct{}{}, pkgerrors.CodePaymentRejected)
	if err != nil {
		return nil, err
	}
	return paymentResultFromBody(body)
}

// PayWave submits a Wave wallet payment for the order.
func (c *Client) PayWave(ctx context.Context, orderID int64, req WavePaymentRequest) (*PaymentResult, error) {
	path := fmt.Sprintf("/orders/%d/payment/wave", orderID)
	body, err := c.do(ctx, http.MethodPost, path, req, pkgerrors.CodePaymentRejected)
	if err != nil {
		return nil, err
	}
	return paymentResultFromBody(body)
}

// PayMobileMoney submits a mobile-money payment for the order.
func (c *Client) PayMobileMoney(ctx context.Context, orderID int64, req MobileMoneyPaymentRequest) (*PaymentResult, error) {
	path := fmt.Sprintf("/orders/%d/payment/mobile-money", orderID)
	body, err := c.do(ctx, http.MethodPost, path, req, pkgerrors.CodePaymentRejected)
	if err != nil {
		return nil, err
	}
	return paymentResultFromBody(body)
}

func paymentResultFromBody(body []byte) (*PaymentResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &PaymentResult{}, nil
	}
	var result PaymentResult
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, malformed("undecodable payment response")
	}
	return &result, nil
}

// do executes one request and routes every response through the
// rate-limit observation point. Non-2xx statuses other than 404/429 map
// to rejectCode with the server message passed through when present.
func (c *Client) do(ctx context.Context, method, path string, payload any, rejectCode pkgerrors.Code) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, method+" "+path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "read response body")
	}

	c.observeHeaders(ctx, resp)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := retryAfterFromBody(body)
		c.coord.RecordExceeded(retryAfter)
		logCtx := c.log.WithField(ctx, "retry_after", retryAfter)
		c.log.Warn(logCtx, "request rate limited by server")
		return nil, pkgerrors.New(pkgerrors.CodeRateLimited,
			fmt.Sprintf("too many requests, retry in %d seconds", retryAfter)).
			WithDetails(map[string]any{"retryAfter": retryAfter})
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.coord.ClearExceeded()
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, messageFromBody(body))
	default:
		return nil, pkgerrors.New(rejectCode, messageFromBody(body))
	}
}

// observeHeaders feeds the coordinator from the rate-limit metadata the
// backend attaches to responses.
func (c *Client) observeHeaders(ctx context.Context, resp *http.Response) {
	remaining := resp.Header.Get(headerRateLimitRemaining)
	limit := resp.Header.Get(headerRateLimitLimit)
	if remaining != "" && limit != "" {
		remainingVal, errRemaining := strconv.Atoi(remaining)
		limitVal, errLimit := strconv.Atoi(limit)
		if errRemaining == nil && errLimit == nil {
			var resetAt *time.Time
			if reset := resp.Header.Get(headerRateLimitReset); reset != "" {
				if unix, err := strconv.ParseInt(reset, 10, 64); err == nil {
					ts := time.Unix(unix, 0)
					resetAt = &ts
				}
			}
			c.coord.RecordResponseMetadata(remainingVal, limitVal, resetAt)
		}
	}

	if resp.Header.Get(headerRequiresCaptcha) == "true" {
		attempts, _ := strconv.Atoi(resp.Header.Get(headerOrderAttempts))
		c.coord.RecordCaptcha(true, attempts)
	}
}

func retryAfterFromBody(body []byte) int {
	var payload struct {
		RetryAfter int `json:"retryAfter"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return payload.RetryAfter
	}
	return defaultRetryAfterSeconds
}

func messageFromBody(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		return payload.Message
	}
	return ""
}
