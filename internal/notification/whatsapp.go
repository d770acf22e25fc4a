package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WhatsAppClient sends messages through the WhatsApp bridge service.
type WhatsAppClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewWhatsAppClient(baseURL, apiKey string) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type sendResponse struct {
	OK    bool           `json:"ok"`
	Error string         `json:"error,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
}

func (c *WhatsAppClient) Send(ctx context.Context, to, message string) (map[string]any, error) {
	body, err := json.Marshal(sendRequest{To: to, Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode bridge response: %w", err)
	}
	if !out.OK {
		if out.Error != "" {
			return nil, fmt.Errorf("bridge rejected message: %s", out.Error)
		}
		return nil, fmt.Errorf("bridge rejected message")
	}
	return out.Meta, nil
}
