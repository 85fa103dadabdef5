// Package whatsapp talks to the Node relay that bridges the platform to
// WhatsApp Web. The relay owns the session; this client only sends messages
// and reads relay state.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Client calls the WhatsApp relay service
type Client struct {
	serviceURL string
	httpClient *http.Client
	mockMode   bool
	logger     *slog.Logger
}

// NewClient creates a new WhatsApp relay client
func NewClient(serviceURL string, timeout time.Duration, mockMode bool, logger *slog.Logger) *Client {
	return &Client{
		serviceURL: serviceURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		mockMode: mockMode,
		logger:   logger,
	}
}

// Status describes the relay's connection state.
type Status struct {
	Connected bool   `json:"connected"`
	State     string `json:"state"`
}

// Send delivers a text message to a phone number through the relay.
func (c *Client) Send(ctx context.Context, phoneNumber, message string) error {
	if c.mockMode {
		c.logger.Info("mock whatsapp send", "phoneNumber", phoneNumber, "length", len(message))
		return nil
	}

	payload := map[string]string{
		"phone_number": phoneNumber,
		"message":      message,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal whatsapp message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL+"/send", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whatsapp relay returned status %d", resp.StatusCode)
	}
	return nil
}

// NotifyWinner asks the relay to deliver the congratulations message for a
// completed draw. The relay owns the message template.
func (c *Client) NotifyWinner(ctx context.Context, phoneNumber string, prizeAmount float64, drawDate string) error {
	if c.mockMode {
		c.logger.Info("mock winner notification", "phoneNumber", phoneNumber, "prizeAmount", prizeAmount, "drawDate", drawDate)
		return nil
	}

	payload := map[string]interface{}{
		"phone_number": phoneNumber,
		"prize_amount": prizeAmount,
		"draw_date":    drawDate,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal winner notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL+"/notify-winner", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whatsapp relay returned status %d", resp.StatusCode)
	}
	return nil
}

// GetStatus reads the relay's connection state.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	if c.mockMode {
		return &Status{Connected: true, State: "mock"}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serviceURL+"/status", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whatsapp relay returned status %d", resp.StatusCode)
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetQRCode fetches the pairing QR code while the relay is unauthenticated.
func (c *Client) GetQRCode(ctx context.Context) (string, error) {
	if c.mockMode {
		return "", fmt.Errorf("relay already connected")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serviceURL+"/qr", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whatsapp relay returned status %d", resp.StatusCode)
	}

	var decoded struct {
		QR string `json:"qr"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	return decoded.QR, nil
}
