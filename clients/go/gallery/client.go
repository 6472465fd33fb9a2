// Package gallery provides a client for the TG-Gallery HTTP API.
package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is a TG-Gallery API client.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a new client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Item is a gallery entry as returned by the API.
type Item struct {
	ID       string         `json:"id"`
	Prompt   string         `json:"prompt"`
	Metadata map[string]any `json:"metadata"`
	Telegram struct {
		ChatID int64  `json:"chat_id"`
		FileID string `json:"file_id"`
	} `json:"telegram"`
	Timestamp time.Time `json:"timestamp"`
}

// Page is one page of a cursor-paginated listing.
type Page struct {
	Items      []Item  `json:"items"`
	HasMore    bool    `json:"hasMore"`
	NextCursor *string `json:"nextCursor"`
	Limit      int     `json:"limit"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login authenticates with the API and stores the issued token on the
// client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", bytes.NewReader(body), &out); err != nil {
		return err
	}
	c.Token = out.Token
	return nil
}

// List fetches one page of items. limit <= 0 uses the server default;
// cursor may be empty for the first page.
func (c *Client) List(ctx context.Context, limit int, cursor string) (*Page, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	} else {
		q.Set("limit", "")
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var page Page
	if err := c.do(ctx, http.MethodGet, "/api/gallery?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListAll fetches the legacy flat listing.
func (c *Client) ListAll(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := c.do(ctx, http.MethodGet, "/api/gallery", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes an item by ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	body, _ := json.Marshal(map[string]string{"id": id})
	return c.do(ctx, http.MethodDelete, "/api/gallery", bytes.NewReader(body), nil)
}

// FileURL resolves a file_id to a direct download URL.
func (c *Client) FileURL(ctx context.Context, fileID string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	path := "/api/fileurl?file_id=" + url.QueryEscape(fileID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// do performs one API call, decoding either the expected payload or the
// error envelope.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("api error: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
