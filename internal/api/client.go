// internal/api/client.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultRequestTimeout = 10 * time.Second

// ErrUnsuccessful is returned when the backend answers with success=false.
var ErrUnsuccessful = errors.New("backend request unsuccessful")

// HTTPError is a non-2xx response.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.Status, e.Body)
}

// Client talks to the backend HTTP services.
type Client struct {
	client *http.Client
	logger *zap.Logger

	mu   sync.RWMutex
	urls URLConfig
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient создает клиент backend API.
func NewClient(urls URLConfig, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: defaultRequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger.Named("api"),
		urls:   urls,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URLs returns the active URL config.
func (c *Client) URLs() URLConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.urls
}

// SetURLs replaces the URL config.
func (c *Client) SetURLs(u URLConfig) {
	c.mu.Lock()
	c.urls = u
	c.mu.Unlock()
}

// RPCs fetches the recommended RPC nodes.
func (c *Client) RPCs(ctx context.Context) ([]RPCNode, error) {
	u := c.URLs()
	var out rpcList
	if err := c.getJSON(ctx, u.BaseHost+u.RPCs, &out); err != nil {
		return nil, fmt.Errorf("fetch rpcs: %w", err)
	}
	return out.RPCs, nil
}

// ChainTimeOffset returns the server clock offset in milliseconds.
// A missing offset is 0.
func (c *Client) ChainTimeOffset(ctx context.Context) (int64, error) {
	u := c.URLs()
	var out chainTime
	if err := c.getJSON(ctx, u.BaseHost+u.ChainTime, &out); err != nil {
		return 0, fmt.Errorf("fetch chain time: %w", err)
	}
	if out.Offset == nil {
		return 0, nil
	}
	return int64(*out.Offset * 1000), nil
}

// AutoFee fetches the suggested priority fees.
func (c *Client) AutoFee(ctx context.Context) (*AutoFee, error) {
	u := c.URLs()
	var out AutoFee
	if err := c.getJSON(ctx, u.BaseHost+u.PriorityFee, &out); err != nil {
		return nil, fmt.Errorf("fetch priority fee: %w", err)
	}
	return &out, nil
}

// AppVersion fetches the published version range.
func (c *Client) AppVersion(ctx context.Context) (*AppVersion, error) {
	u := c.URLs()
	var out AppVersion
	if err := c.getJSON(ctx, u.BaseHost+u.Version, &out); err != nil {
		return nil, fmt.Errorf("fetch version: %w", err)
	}
	return &out, nil
}

// MintList fetches the token list.
func (c *Client) MintList(ctx context.Context) (*MintList, error) {
	u := c.URLs()
	var out MintList
	if err := c.getJSON(ctx, u.BaseHost+u.MintList, &out); err != nil {
		return nil, fmt.Errorf("fetch mint list: %w", err)
	}
	return &out, nil
}

// LaunchpadConfigs fetches the launchpad configs from the mint host.
func (c *Client) LaunchpadConfigs(ctx context.Context) ([]LaunchpadConfig, error) {
	u := c.URLs()
	var out configList
	if err := c.getJSON(ctx, u.MintHost+u.Configs, &out); err != nil {
		return nil, fmt.Errorf("fetch launchpad configs: %w", err)
	}
	return out.Data, nil
}

func (c *Client) getJSON(ctx context.Context, url string, data interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, data)
}

// do executes req and decodes the envelope's data into out.
func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request completed",
		zap.String("url", req.URL.String()),
		zap.Duration("duration", time.Since(start)),
		zap.Int("status", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	env := envelope[json.RawMessage]{}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		msg := env.Msg
		if msg == "" {
			msg = string(body)
		}
		return fmt.Errorf("%w: %s", ErrUnsuccessful, msg)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
