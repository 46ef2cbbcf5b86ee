package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound signals that a key has no value in the namespace.
var ErrNotFound = errors.New("kvstore: key not found")

// ClientConfig carries the Cloudflare KV credentials.
type ClientConfig struct {
	AccountID   string
	NamespaceID string
	APIToken    string

	// BaseURL overrides the Cloudflare endpoint, used by tests.
	BaseURL string
}

// Client talks to a single Cloudflare KV namespace over its REST API. Values
// are opaque strings; the typed record layer sits on top in records.go.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf(
			"https://api.cloudflare.com/client/v4/accounts/%s/storage/kv/namespaces/%s",
			cfg.AccountID, cfg.NamespaceID,
		)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		token:      cfg.APIToken,
	}
}

// Get returns the raw value stored under key, or ErrNotFound on a 404.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.valueURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("building get request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kv get %q: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kv get %q: unexpected status %d", key, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kv get %q: reading body: %w", key, err)
	}
	return body, nil
}

// Put writes value under key, replacing any existing value unconditionally.
func (c *Client) Put(ctx context.Context, key string, value []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.valueURL(key), bytes.NewReader(value))
	if err != nil {
		return fmt.Errorf("building put request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kv put %q: unexpected status %d", key, resp.StatusCode)
	}
	return nil
}

type listKeysResponse struct {
	Success bool `json:"success"`
	Result  []struct {
		Name string `json:"name"`
	} `json:"result"`
}

// ListKeys enumerates every key currently in the namespace.
func (c *Client) ListKeys(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/keys", nil)
	if err != nil {
		return nil, fmt.Errorf("building list request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kv list keys: unexpected status %d", resp.StatusCode)
	}

	var parsed listKeysResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("kv list keys: decoding response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("kv list keys: api reported failure")
	}

	keys := make([]string, 0, len(parsed.Result))
	for _, r := range parsed.Result {
		keys = append(keys, r.Name)
	}
	return keys, nil
}

func (c *Client) valueURL(key string) string {
	return c.baseURL + "/values/" + url.PathEscape(key)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
}
