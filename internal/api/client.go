// Package api maps logical operations onto HTTP requests against the
// SlipStream server. Each call is exactly one network round-trip; caching,
// polling, and retry policy belong to the query layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jatassi/slipstream-go/internal/errors"
)

// Config captures the connection settings for a SlipStream server.
type Config struct {
	// BaseURL is the API base, e.g. "http://localhost:8989/api".
	BaseURL string
	// APIKey is sent as X-Api-Key when set.
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

// Client is the shared fetch wrapper all resource clients delegate to.
// It owns JSON (de)serialization and status-code-to-error translation.
type Client struct {
	base   *url.URL
	apiKey string
	client *http.Client
}

// NewClient builds a Client. Callers must provide a valid absolute base URL.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("api base url is required")
	}

	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		base:   base,
		apiKey: strings.TrimSpace(cfg.APIKey),
		client: hc,
	}, nil
}

// RSSSync returns the client for the RSS sync resource family.
func (c *Client) RSSSync() *RSSSyncClient {
	return &RSSSyncClient{c: c}
}

// Storage returns the client for the storage resource.
func (c *Client) Storage() *StorageClient {
	return &StorageClient{c: c}
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// putJSON issues a PUT with in as the JSON body and decodes the response into out.
func (c *Client) putJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	return c.do(ctx, http.MethodPut, path, body, out)
}

// postJSON issues a POST with an empty body and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	u := c.base.JoinPath(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.Networkf(err, "%s %s failed", method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp, method, path)
	}

	return decodeBody(resp, path, out)
}

func decodeBody(resp *http.Response, path string, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return errors.Join(
				apperrors.Networkf(err, "read %s response body", path),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return apperrors.Networkf(err, "read %s response body", path)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Decode(err, fmt.Sprintf("decode %s response", path))
	}
	return nil
}

func (c *Client) handleErrorResponse(resp *http.Response, method, path string) error {
	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return errors.Join(
				apperrors.Networkf(readErr, "read %s error response", path),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return apperrors.Networkf(readErr, "read %s error response", path)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	msg := fmt.Sprintf("%s %s: %s", method, path, resp.Status)
	if detail := strings.TrimSpace(string(respBody)); detail != "" {
		msg += ": " + detail
	}
	return apperrors.Server(resp.StatusCode, msg)
}
