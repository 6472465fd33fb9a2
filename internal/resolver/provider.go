package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Provider is one Telegram Bot API endpoint capable of resolving a file_id
// to a file path. Providers are tried in a fixed order; each is a pure
// function of (fileID, token) with no retries.
type Provider struct {
	Name    string
	BaseURL string
}

// getFileResponse is the Bot API getFile envelope.
type getFileResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      struct {
		FilePath string `json:"file_path"`
	} `json:"result"`
}

// FilePath resolves fileID to a file path via the provider's getFile
// endpoint. It fails on network errors, malformed responses, negative
// acknowledgements, and empty paths alike; callers treat every failure as
// "try the next provider".
func (p Provider) FilePath(ctx context.Context, client *http.Client, token, fileID string) (string, error) {
	endpoint := fmt.Sprintf("%s/bot%s/getFile?file_id=%s", p.BaseURL, token, url.QueryEscape(fileID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body getFileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode getFile response: %w", err)
	}
	if !body.OK {
		if body.Description != "" {
			return "", fmt.Errorf("getFile rejected: %s", body.Description)
		}
		return "", errors.New("getFile rejected")
	}
	if body.Result.FilePath == "" {
		return "", errors.New("getFile returned empty file_path")
	}
	return body.Result.FilePath, nil
}

// FileURL builds the direct download URL for a resolved file path.
func (p Provider) FileURL(token, filePath string) string {
	return fmt.Sprintf("%s/file/bot%s/%s", p.BaseURL, token, filePath)
}
