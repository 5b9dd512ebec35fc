package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls the external recommender over plain GET requests.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("recommender url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse recommender url: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}, nil
}

// Popular returns the recommender's most popular item names.
func (c *Client) Popular(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.get(ctx, "/recommend/popular", &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ForUser returns the records recommended for one customer. A single object is
// returned as a one-element list.
func (c *Client) ForUser(ctx context.Context, userID string) ([]json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/recommend/user/"+url.PathEscape(userID), &raw); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode recommendations: %w", err)
		}
		return list, nil
	}
	if trimmed == "" || trimmed == "null" {
		return []json.RawMessage{}, nil
	}
	return []json.RawMessage{raw}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("recommender request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("recommender returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode recommender response: %w", err)
	}
	return nil
}
