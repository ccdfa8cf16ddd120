package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nextbit-dev/storelift/internal/config"
	"golang.org/x/time/rate"
)

var (
	// ErrNotFound signals a platform id that no longer resolves.
	ErrNotFound = errors.New("platform resource not found")

	// ErrRateLimited signals bucket exhaustion after all retry attempts.
	ErrRateLimited = errors.New("platform rate limit exhausted")

	// ErrPlatformRejected signals a validation rejection. Terminal for the
	// current run; the record becomes eligible again next run.
	ErrPlatformRejected = errors.New("platform rejected payload")
)

// Client is the commerce platform REST client. All calls flow through a
// leaky-bucket limiter matching the platform's steady-state request rate,
// and throttling responses are retried with the platform's retry hint.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter

	maxRetries        int
	defaultRetryAfter time.Duration
	retryMargin       time.Duration

	// sleep is swappable so tests can observe backoff without waiting.
	sleep func(time.Duration)
}

// NewClient creates a platform client from configuration.
func NewClient(cfg config.ShopifyConfig, syncCfg config.SyncConfig) *Client {
	return &Client{
		baseURL:           fmt.Sprintf("https://%s/admin/api/%s", cfg.ShopDomain, cfg.APIVersion),
		accessToken:       cfg.AccessToken,
		httpClient:        &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:           rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		maxRetries:        syncCfg.MaxRetries,
		defaultRetryAfter: syncCfg.DefaultRetryAfter,
		retryMargin:       syncCfg.RetryMargin,
		sleep:             time.Sleep,
	}
}

// GetProduct fetches a product by platform id.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var env productEnvelope
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d.json", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Product, nil
}

// FindByHandle looks a product up by its stable handle. Returns (nil, nil)
// when no product carries the handle.
func (c *Client) FindByHandle(ctx context.Context, handle string) (*Product, error) {
	path := "/products.json?" + url.Values{"handle": {handle}, "limit": {"1"}}.Encode()
	var env productListEnvelope
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	if len(env.Products) == 0 {
		return nil, nil
	}
	return &env.Products[0], nil
}

// CreateProduct creates a new listing with the full payload including
// images and metafields.
func (c *Client) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	var env productEnvelope
	if err := c.do(ctx, http.MethodPost, "/products.json", productEnvelope{Product: *product}, &env); err != nil {
		return nil, err
	}
	return &env.Product, nil
}

// UpdateProduct submits the full metadata/metafield payload for an
// existing listing. Images are managed separately by the caller.
func (c *Client) UpdateProduct(ctx context.Context, product *Product) (*Product, error) {
	var env productEnvelope
	path := fmt.Sprintf("/products/%d.json", product.ID)
	if err := c.do(ctx, http.MethodPut, path, productEnvelope{Product: *product}, &env); err != nil {
		return nil, err
	}
	return &env.Product, nil
}

// ListImages returns the listing's current images.
func (c *Client) ListImages(ctx context.Context, productID int64) ([]Image, error) {
	var env imageListEnvelope
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d/images.json", productID), nil, &env); err != nil {
		return nil, err
	}
	return env.Images, nil
}

// DeleteImage removes one image from a listing.
func (c *Client) DeleteImage(ctx context.Context, productID, imageID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d/images/%d.json", productID, imageID), nil, nil)
}

// CreateImage attaches an image to a listing.
func (c *Client) CreateImage(ctx context.Context, productID int64, src string, position int) error {
	body := imageEnvelope{Image: Image{Src: src, Position: position}}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/products/%d/images.json", productID), body, nil)
}

// do executes one API call: wait for bucket capacity, issue the request,
// and on throttling sleep for the platform's retry hint (plus a safety
// margin) before reissuing, bounded by the attempt budget.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Shopify-Access-Token", c.accessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("platform call %s %s: %w", method, path, err)
		}

		retry, err := c.handleResponse(resp, out)
		if !retry {
			return err
		}
		// Throttled: honor the platform's hint before the next attempt.
		c.sleep(retryDelay(resp.Header.Get("Retry-After"), c.defaultRetryAfter) + c.retryMargin)
	}
	return fmt.Errorf("%w after %d attempts: %s %s", ErrRateLimited, c.maxRetries+1, method, path)
}

// handleResponse decodes a response. The bool result requests a retry of
// the same call (throttling only).
func (c *Client) handleResponse(resp *http.Response, out interface{}) (bool, error) {
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, ErrNotFound
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return false, fmt.Errorf("%w: %s", ErrPlatformRejected, rejectionMessage(raw))
	case resp.StatusCode >= 400:
		return false, fmt.Errorf("platform status %d: %s", resp.StatusCode, rejectionMessage(raw))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return false, fmt.Errorf("decode response: %w", err)
		}
	}
	return false, nil
}

// rejectionMessage extracts the platform's error body, falling back to the
// raw text.
func rejectionMessage(raw []byte) string {
	var parsed struct {
		Errors interface{} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Errors != nil {
		return fmt.Sprintf("%v", parsed.Errors)
	}
	msg := string(raw)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// retryDelay parses a Retry-After header given in seconds. Absent or
// malformed hints fall back to the default.
func retryDelay(header string, fallback time.Duration) time.Duration {
	if header == "" {
		return fallback
	}
	if secs, err := strconv.ParseFloat(header, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
