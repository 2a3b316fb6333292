package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"resty.dev/v3"
)

// Record is one product as the catalog platform serializes it, in webhook
// bodies and poll pages alike.
type Record struct {
	ID          uuid.UUID `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	StockStatus string    `json:"stock_status"`
	Category    string    `json:"category"`
	Unit        string    `json:"unit"`
	ImageURL    string    `json:"image_url"`
	UpdatedAt   time.Time `json:"updated_at"`
	Deleted     bool      `json:"deleted"`
}

type listResponse struct {
	Products []Record `json:"products"`
}

type idsResponse struct {
	IDs []uuid.UUID `json:"ids"`
}

// Client talks to the catalog platform's REST API.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Client{http: c}
}

func (c *Client) Close() error {
	return c.http.Close()
}

// List fetches one page of products modified after the given time, newest
// first. A zero modifiedAfter walks the full catalog. Pages are 1-based;
// a page shorter than perPage is the last one.
func (c *Client) List(ctx context.Context, modifiedAfter time.Time, page, perPage int) ([]Record, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("per_page", strconv.Itoa(perPage)).
		SetQueryParam("order", "updated_at.desc").
		SetResult(&listResponse{})
	if !modifiedAfter.IsZero() {
		req.SetQueryParam("modified_after", modifiedAfter.UTC().Format(time.RFC3339Nano))
	}

	res, err := req.Get("/products")
	if err != nil {
		return nil, fmt.Errorf("catalog: list page %d: %w", page, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("catalog: list page %d: %s", page, res.Status())
	}
	return res.Result().(*listResponse).Products, nil
}

// ListAllIDs returns the id of every live product in the catalog. The
// reconciler diffs this set against the local store to find deletions that
// never produced a webhook.
func (c *Client) ListAllIDs(ctx context.Context) ([]uuid.UUID, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&idsResponse{}).
		Get("/products/ids")
	if err != nil {
		return nil, fmt.Errorf("catalog: list ids: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("catalog: list ids: %s", res.Status())
	}
	return res.Result().(*idsResponse).IDs, nil
}
