package seedream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"seedream-studio/internal/utils"
)

// Client calls a Volcengine Ark compatible images endpoint. One request, one
// attempt: failures are recorded in generation history, never retried here.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: utils.NewHTTPClient(120 * time.Second),
	}
}

// GenerateParams are the call parameters for one image generation.
type GenerateParams struct {
	Model  string
	Prompt string
	Size   string
	// Images are optional input images: remote URLs or data URIs.
	Images []string
}

// GenerateResult carries the image URL plus the raw provider response for
// archival in paramsUsed.
type GenerateResult struct {
	URL string
	Raw map[string]interface{}
}

// Generate submits one text-to-image call and extracts the image URL.
func (c *Client) Generate(ctx context.Context, p GenerateParams) (*GenerateResult, error) {
	if c.APIKey == "" {
		return nil, errors.New("missing API Key")
	}

	payload := map[string]interface{}{
		"model":           p.Model,
		"prompt":          p.Prompt,
		"response_format": "url",
		"watermark":       false,
	}
	if p.Size != "" {
		payload["size"] = p.Size
	}
	switch len(p.Images) {
	case 0:
	case 1:
		payload["image"] = p.Images[0]
	default:
		payload["image"] = p.Images
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("seedream request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("seedream returned status %d: %s", resp.StatusCode, errorSnippet(bodyBytes))
	}

	var respData map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		return nil, fmt.Errorf("failed to decode seedream response: %w", err)
	}

	url := extractImageURL(respData)
	if url == "" {
		return nil, fmt.Errorf("no image url in seedream response: %s", errorSnippet(bodyBytes))
	}

	return &GenerateResult{URL: url, Raw: respData}, nil
}

// extractImageURL walks the response defensively; Ark returns
// {"data":[{"url":"..."}]} but proxies vary.
func extractImageURL(respData map[string]interface{}) string {
	if items, ok := respData["data"].([]interface{}); ok && len(items) > 0 {
		if item, ok := items[0].(map[string]interface{}); ok {
			if url, ok := item["url"].(string); ok && url != "" {
				return url
			}
			if b64, ok := item["b64_json"].(string); ok && b64 != "" {
				return "data:image/png;base64," + b64
			}
		}
	}
	if url, ok := respData["url"].(string); ok && url != "" {
		return url
	}
	return ""
}

func errorSnippet(body []byte) string {
	var respData map[string]interface{}
	if err := json.Unmarshal(body, &respData); err == nil {
		if e, ok := respData["error"].(map[string]interface{}); ok {
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		}
		if msg, ok := respData["error"].(string); ok && msg != "" {
			return msg
		}
	}
	if len(body) > 300 {
		return string(body[:300]) + "...(truncated)"
	}
	return string(body)
}
