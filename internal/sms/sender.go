// internal/sms/sender.go
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender delivers one message to one recipient. Implementations are external
// gateways; the scheduler core only decides whether and what to send.
type Sender interface {
	Send(ctx context.Context, recipient, message string) error
}

// GatewayClient posts messages to the SMS gateway's HTTP API.
type GatewayClient struct {
	baseURL    string
	apiKey     string
	senderID   string
	httpClient *http.Client
}

func NewGatewayClient(baseURL, apiKey, senderID string) *GatewayClient {
	return &GatewayClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		senderID: senderID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sendRequest struct {
	To       string `json:"to"`
	Message  string `json:"message"`
	SenderID string `json:"sender_id,omitempty"`
}

func (c *GatewayClient) Send(ctx context.Context, recipient, message string) error {
	body, err := json.Marshal(sendRequest{
		To:       recipient,
		Message:  message,
		SenderID: c.senderID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, payload)
	}

	return nil
}
