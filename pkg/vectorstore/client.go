// Package vectorstore maintains a Qdrant collection of receipt embeddings for
// similarity lookups. Indexing is best-effort; a down vector store never
// blocks receipt ingestion.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

const vectorSize = 64

// Client talks to the Qdrant REST API
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	enabled    bool
	logger     *slog.Logger
}

// NewClient creates a new vector store client
func NewClient(baseURL, collection string, timeout time.Duration, enabled bool, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		collection: collection,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		enabled: enabled,
		logger:  logger,
	}
}

// Enabled reports whether indexing is switched on.
func (c *Client) Enabled() bool {
	return c.enabled
}

// EnsureCollection creates the receipt collection if it does not exist yet.
func (c *Client) EnsureCollection(ctx context.Context) error {
	if !c.enabled {
		return nil
	}

	payload := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	// PUT is idempotent here; an existing collection returns a conflict
	// that we treat as success.
	status, err := c.do(ctx, http.MethodPut, "/collections/"+c.collection, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusConflict {
		return fmt.Errorf("vector store returned status %d", status)
	}
	return nil
}

// IndexReceipt upserts one receipt's embedding with its searchable payload.
func (c *Client) IndexReceipt(ctx context.Context, receiptID, text, shopName, customerPhone string, amount float64) error {
	if !c.enabled {
		return nil
	}

	payload := map[string]interface{}{
		"points": []map[string]interface{}{
			{
				"id":     pointID(receiptID),
				"vector": Embed(text),
				"payload": map[string]interface{}{
					"receipt_id":     receiptID,
					"shop_name":      shopName,
					"customer_phone": customerPhone,
					"amount":         amount,
				},
			},
		},
	}

	status, err := c.do(ctx, http.MethodPut, "/collections/"+c.collection+"/points", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("vector store returned status %d", status)
	}
	return nil
}

// Match is one similarity search hit.
type Match struct {
	ReceiptID string
	Score     float64
}

// SearchSimilar returns receipts whose text embeds near the query text.
func (c *Client) SearchSimilar(ctx context.Context, text string, limit int) ([]Match, error) {
	if !c.enabled {
		return []Match{}, nil
	}

	payload := map[string]interface{}{
		"vector":       Embed(text),
		"limit":        limit,
		"with_payload": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/collections/"+c.collection+"/points/search", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector store returned status %d", resp.StatusCode)
	}

	var decoded struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload struct {
				ReceiptID string `json:"receipt_id"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(decoded.Result))
	for _, r := range decoded.Result {
		matches = append(matches, Match{ReceiptID: r.Payload.ReceiptID, Score: r.Score})
	}
	return matches, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("vector store request failed", "path", path, "error", err)
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// Embed produces a deterministic bag-of-words hash embedding. It stands in
// for a learned model and is stable across restarts, which is all the
// similarity lookup needs.
func Embed(text string) []float64 {
	vec := make([]float64, vectorSize)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%vectorSize]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// pointID derives a stable numeric Qdrant point id from the receipt uuid.
func pointID(receiptID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(receiptID))
	return h.Sum64()
}
