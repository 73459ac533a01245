// Package shopify is the Admin REST adapter for the product catalog. The
// hub mirrors products locally and classifies the mirror; this client is
// the seam to the live store, kept to the calls the hub actually makes.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
)

// ErrRateLimited indicates Shopify answered 429 despite the local limiter.
// Callers should back off until the next sync cycle instead of retrying
// inline.
var ErrRateLimited = errors.New("shopify rate limited")

const (
	defaultAPIVersion = "2024-01"
	defaultPageSize   = 250
	// Shopify's REST budget for standard plans is 2 requests per second.
	defaultRPS     = 2
	defaultTimeout = 30 * time.Second

	accessTokenHeader = "X-Shopify-Access-Token"
)

// Config holds the store coordinates and client tuning.
type Config struct {
	// StoreDomain is the myshopify host, e.g. "foxx-life-sciences.myshopify.com".
	StoreDomain string `env:"SHOPIFY_STORE_DOMAIN" yaml:"store_domain"`
	AccessToken string `env:"SHOPIFY_ACCESS_TOKEN" yaml:"access_token"`
	APIVersion  string `yaml:"api_version"`
	PageSize    int    `yaml:"page_size"`
	// RequestsPerSecond caps outbound calls. Zero means the Shopify
	// standard budget of 2 rps.
	RequestsPerSecond int           `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

// Client talks to one store's Admin REST API with a local rate limiter in
// front of every call.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Logger
}

// NewClient creates a catalog client for the configured store.
func NewClient(cfg Config, log logger.Logger) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.PageSize <= 0 || cfg.PageSize > defaultPageSize {
		cfg.PageSize = defaultPageSize
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		baseURL:    fmt.Sprintf("https://%s/admin/api/%s", cfg.StoreDomain, cfg.APIVersion),
		token:      cfg.AccessToken,
		pageSize:   cfg.PageSize,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond),
		logger:     log,
	}
}

// wireProduct is the Admin REST product shape, trimmed to what the mirror
// stores.
type wireProduct struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	BodyHTML    string `json:"body_html"`
	Vendor      string `json:"vendor"`
	ProductType string `json:"product_type"`
	Status      string `json:"status"`
	UpdatedAt   string `json:"updated_at"`
	Variants    []struct {
		SKU string `json:"sku"`
	} `json:"variants"`
	Images []struct {
		Src string `json:"src"`
	} `json:"images"`
}

type productsEnvelope struct {
	Products []wireProduct `json:"products"`
}

// ListProducts fetches one page of products. cursor is the page_info token
// from a previous call; pass "" for the first page. The returned nextCursor
// is "" when there are no more pages.
func (c *Client) ListProducts(ctx context.Context, cursor string) ([]domain.Product, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limiter: %w", err)
	}

	// Shopify rejects cursor requests that carry filter params, so the
	// query is limit-only from the start.
	reqURL := fmt.Sprintf("%s/products.json?limit=%d", c.baseURL, c.pageSize)
	if cursor != "" {
		reqURL += "&page_info=" + url.QueryEscape(cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(accessTokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("list products: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("shopify throttled product listing",
			logger.String("retry_after", resp.Header.Get("Retry-After")))
		return nil, "", ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("list products: unexpected status %d", resp.StatusCode)
	}

	var envelope productsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, "", fmt.Errorf("decode products page: %w", err)
	}

	products := make([]domain.Product, 0, len(envelope.Products))
	now := time.Now().UTC()
	for _, wp := range envelope.Products {
		products = append(products, toDomainProduct(wp, now))
	}

	return products, nextPageInfo(resp.Header.Get("Link")), nil
}

// updateProductRequest is the PUT /products/{id}.json body. Only body_html
// is sent; Shopify leaves omitted fields untouched.
type updateProductRequest struct {
	Product struct {
		ID       int64  `json:"id"`
		BodyHTML string `json:"body_html"`
	} `json:"product"`
}

// UpdateProductBody replaces the product's description HTML in the store.
func (c *Client) UpdateProductBody(ctx context.Context, productID, bodyHTML string) error {
	id, err := strconv.ParseInt(productID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse product id %q: %w", productID, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var payload updateProductRequest
	payload.Product.ID = id
	payload.Product.BodyHTML = bodyHTML

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal product update: %w", err)
	}

	reqURL := fmt.Sprintf("%s/products/%d.json", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(accessTokenHeader, c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update product %s: %w", productID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("shopify throttled product update",
			logger.String("product_id", productID),
			logger.String("retry_after", resp.Header.Get("Retry-After")))
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update product %s: unexpected status %d", productID, resp.StatusCode)
	}

	return nil
}

// toDomainProduct maps a wire product onto the local mirror row. SKU comes
// from the first variant, the image from the first image.
func toDomainProduct(wp wireProduct, syncedAt time.Time) domain.Product {
	p := domain.Product{
		ID:          strconv.FormatInt(wp.ID, 10),
		Title:       wp.Title,
		Handle:      wp.Handle,
		BodyHTML:    wp.BodyHTML,
		Vendor:      wp.Vendor,
		ProductType: wp.ProductType,
		Status:      wp.Status,
		SyncedAt:    syncedAt,
	}
	if len(wp.Variants) > 0 {
		p.SKU = wp.Variants[0].SKU
	}
	if len(wp.Images) > 0 {
		p.ImageURL = wp.Images[0].Src
	}
	if ts, err := time.Parse(time.RFC3339, wp.UpdatedAt); err == nil {
		p.ShopifyUpdatedAt = &ts
	}
	return p
}

// nextPageInfo extracts the page_info cursor from a Link response header,
// e.g. `<https://x.myshopify.com/...page_info=abc>; rel="next"`. Returns ""
// when no next page exists.
func nextPageInfo(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start == -1 || end == -1 || end <= start {
			continue
		}
		u, err := url.Parse(part[start+1 : end])
		if err != nil {
			return ""
		}
		return u.Query().Get("page_info")
	}
	return ""
}
