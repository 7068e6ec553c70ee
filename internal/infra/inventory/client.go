package inventory

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

	"github.com/yanqian/agrocalc/internal/domain/dose"
)

const defaultTimeout = 5 * time.Second

// ErrProductNotFound is returned when the backend has no stock entry for a product.
var ErrProductNotFound = errors.New("product not found")

// Client reads product stock from the farm management backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds an inventory API client. An empty token disables auth headers.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// StockLevel fetches the available quantity of a product.
func (c *Client) StockLevel(ctx context.Context, productID string) (dose.StockLevel, error) {
	endpoint := fmt.Sprintf("%s/inventory/products/%s/stock", c.baseURL, url.PathEscape(productID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return dose.StockLevel{}, fmt.Errorf("build stock request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dose.StockLevel{}, fmt.Errorf("stock request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return dose.StockLevel{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return dose.StockLevel{}, fmt.Errorf("stock request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw stockResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return dose.StockLevel{}, fmt.Errorf("decode stock response: %w", err)
	}
	level := dose.StockLevel{
		ProductID: raw.ProductID,
		Available: raw.Available,
		Unit:      strings.TrimSpace(raw.Unit),
	}
	if level.ProductID == "" {
		level.ProductID = productID
	}
	return level, nil
}

type stockResponse struct {
	ProductID string  `json:"productId"`
	Available float64 `json:"available"`
	Unit      string  `json:"unit"`
}

var _ dose.StockProvider = (*Client)(nil)
