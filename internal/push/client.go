package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Message is one entry of the push gateway request body.
type Message struct {
	To        string      `json:"to"`
	Sound     string      `json:"sound"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	Data      interface{} `json:"data,omitempty"`
	Priority  string      `json:"priority"`
	ChannelID string      `json:"channelId"`
}

// NewMessage fills in the defaults the mobile client expects.
func NewMessage(to, title, body string, data interface{}) Message {
	return Message{
		To:        to,
		Sound:     "default",
		Title:     title,
		Body:      body,
		Data:      data,
		Priority:  "high",
		ChannelID: "default",
	}
}

// Ticket is the per-message result returned by the gateway.
type Ticket struct {
	Status  string                 `json:"status"`
	ID      string                 `json:"id,omitempty"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// DeviceNotRegistered reports whether the gateway rejected the token as no longer valid.
func (t Ticket) DeviceNotRegistered() bool {
	return t.Status == "error" && t.Details["error"] == "DeviceNotRegistered"
}

type sendResponse struct {
	Data   []Ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// Client posts messages to an Expo-compatible push gateway.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send delivers the batch and returns an error if the request failed, the gateway
// answered non-2xx, or any ticket came back with status "error".
func (c *Client) Send(ctx context.Context, messages []Message) ([]Ticket, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read push gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed sendResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode push gateway response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return parsed.Data, fmt.Errorf("push gateway error %s: %s", parsed.Errors[0].Code, parsed.Errors[0].Message)
	}

	var failed []string
	for _, ticket := range parsed.Data {
		if ticket.Status == "error" {
			failed = append(failed, ticket.Message)
		}
	}
	if len(failed) > 0 {
		return parsed.Data, fmt.Errorf("push delivery failed for %d message(s): %s", len(failed), strings.Join(failed, "; "))
	}
	return parsed.Data, nil
}
