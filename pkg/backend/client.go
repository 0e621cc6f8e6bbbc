// Package backend is the JSON client for the commerce REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sunkissed-southern/storefront/pkg/config"
	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
	"github.com/sunkissed-southern/storefront/pkg/logger"
	"github.com/sunkissed-southern/storefront/pkg/types"
)

const (
	pathValidateCoupon = "/api/coupons/validate"
	pathPublicSales    = "/api/sales"
	pathAdminSales     = "/api/admin/discounts/sales"
	pathCheckout       = "/api/checkout"
	pathCategory       = "/api/products/category/"

	maxErrorBody = 64 << 10
)

// Client calls the commerce API. Requests are issued once; retries are the
// caller's decision.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logg    *logger.Logger
}

// New builds a client from config. A nil httpClient gets one with the configured timeout.
func New(cfg config.BackendConfig, httpClient *http.Client, logg *logger.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend base url %q must be absolute", cfg.BaseURL)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{baseURL: base, http: httpClient, logg: logg}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends body as JSON and decodes a 2xx response into out. Non-2xx
// responses become public *errors.Error values with the code mapped from the
// status and the remote "error" string kept verbatim as the message.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := RequestIDFrom(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commerce api unreachable").Public()
	}
	defer resp.Body.Close()

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	c.logg.Debug(logCtx, "commerce api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.remoteError(logCtx, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode commerce api response")
	}
	return nil
}

func (c *Client) remoteError(ctx context.Context, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var remote types.RemoteError
	_ = json.Unmarshal(raw, &remote)

	message := strings.TrimSpace(remote.Error)
	if message == "" {
		message = strings.TrimSpace(remote.Message)
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	code := pkgerrors.CodeForStatus(resp.StatusCode)
	err := pkgerrors.New(code, message).Public()
	details := map[string]any{"status": resp.StatusCode}
	if remote.Reason != "" {
		details["reason"] = remote.Reason
	}
	if remote.MinOrderValue != nil {
		details["min_order_value"] = *remote.MinOrderValue
	}
	err = err.WithDetails(details)

	if resp.StatusCode >= 500 {
		c.logg.Warn(ctx, "commerce api failure")
	}
	return err
}
