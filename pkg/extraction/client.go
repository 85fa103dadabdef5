// Package extraction talks to the hosted document-extraction service and
// falls back to local text parsing when the service cannot be reached.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Result is the structured output of one extraction call.
type Result struct {
	ShopName    string
	ShopAddress string
	Amount      float64
	Date        string
	Items       []Item
	RawText     string
	// Grounding carries provenance metadata (bounding boxes, confidences)
	// passed through opaquely for auditability.
	Grounding map[string]interface{}
}

// Client calls the document-extraction API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	mockMode   bool
	logger     *slog.Logger
}

// NewClient creates a new extraction API client
func NewClient(baseURL, apiKey string, timeout time.Duration, mockMode bool, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		mockMode: mockMode,
		logger:   logger,
	}
}

type extractRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mime_type,omitempty"`
	Model    string `json:"model"`
}

// extractResponse tolerates the synonymous field names the service has been
// observed to emit across model versions. Each logical field decodes from
// every known alias; first non-empty alias wins.
type extractResponse struct {
	Markdown  string                 `json:"markdown"`
	Text      string                 `json:"text"`
	Grounding map[string]interface{} `json:"grounding"`

	MerchantName string `json:"merchant_name"`
	StoreName    string `json:"store_name"`
	ShopName     string `json:"shop_name"`

	MerchantAddress string `json:"merchant_address"`
	StoreAddress    string `json:"store_address"`
	Address         string `json:"address"`

	Total       *float64 `json:"total"`
	TotalAmount *float64 `json:"total_amount"`
	Amount      *float64 `json:"amount"`

	Date        string `json:"date"`
	ReceiptDate string `json:"receipt_date"`

	Items     []extractItem `json:"items"`
	LineItems []extractItem `json:"line_items"`
}

type extractItem struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Amount      *float64 `json:"amount"`
	Quantity    *int     `json:"quantity"`
	Qty         *int     `json:"qty"`
}

// Extract runs the document-extraction model over a base64-encoded receipt
// image. On any transport or decode failure it degrades to parsing whatever
// text it has, so ingestion never fails because the service is down.
func (c *Client) Extract(ctx context.Context, imageData, mimeType string) (*Result, error) {
	if c.mockMode {
		return c.mockExtract(), nil
	}

	payload := extractRequest{
		Image:    imageData,
		MimeType: mimeType,
		Model:    "dpt-2-latest",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("extraction service unreachable", "error", err)
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("extraction service returned non-OK status", "status", resp.StatusCode)
		return nil, fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	var decoded extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}

	return adapt(&decoded), nil
}

// adapt collapses the response aliases into one canonical Result and fills
// any fields the model left blank from the raw text.
func adapt(resp *extractResponse) *Result {
	result := &Result{
		RawText:   firstNonEmpty(resp.Markdown, resp.Text),
		Grounding: resp.Grounding,
		Items:     []Item{},
	}

	result.ShopName = firstNonEmpty(resp.MerchantName, resp.StoreName, resp.ShopName)
	result.ShopAddress = firstNonEmpty(resp.MerchantAddress, resp.StoreAddress, resp.Address)
	result.Date = firstNonEmpty(resp.Date, resp.ReceiptDate)

	if v := firstFloat(resp.Total, resp.TotalAmount, resp.Amount); v != nil {
		result.Amount = *v
	}

	items := resp.Items
	if len(items) == 0 {
		items = resp.LineItems
	}
	for _, it := range items {
		item := Item{
			Name:     firstNonEmpty(it.Name, it.Description),
			Quantity: 1,
		}
		if v := firstFloat(it.Price, it.Amount); v != nil {
			item.Price = *v
		}
		if q := firstInt(it.Quantity, it.Qty); q != nil && *q > 0 {
			item.Quantity = *q
		}
		if item.Name != "" {
			result.Items = append(result.Items, item)
		}
	}

	// The model sometimes returns markdown only; recover fields locally.
	if result.RawText != "" && (result.ShopName == "" || result.Amount == 0) {
		parsed := ParseText(result.RawText)
		if result.ShopName == "" {
			result.ShopName = parsed.ShopName
		}
		if result.ShopAddress == "" {
			result.ShopAddress = parsed.ShopAddress
		}
		if result.Amount == 0 {
			result.Amount = parsed.Amount
		}
		if result.Date == "" {
			result.Date = parsed.Date
		}
		if len(result.Items) == 0 {
			result.Items = parsed.Items
		}
	}

	return result
}

// FromText builds a Result from raw text alone, for the web upload path and
// for degraded operation.
func FromText(text string) *Result {
	parsed := ParseText(text)
	return &Result{
		ShopName:    parsed.ShopName,
		ShopAddress: parsed.ShopAddress,
		Amount:      parsed.Amount,
		Date:        parsed.Date,
		Items:       parsed.Items,
		RawText:     text,
	}
}

func (c *Client) mockExtract() *Result {
	raw := "Checkers Sandton\n123 Rivonia Road, Sandton\n2x Milk 2L 45.98\nBread 18.99\nTOTAL: R 64.97"
	c.logger.Info("mock extraction", "shop", "Checkers Sandton")
	result := FromText(raw)
	result.Grounding = map[string]interface{}{"mock": true}
	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
