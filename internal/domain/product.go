package domain

import (
	"strings"
	"time"
)

// Product is the local mirror of one catalog product. The mirror is synced
// from Shopify and is the HTML source the classifier runs against; Shopify
// stays the source of truth for everything except drafts.
type Product struct {
	// Core identifiers
	ID     string `db:"id"     json:"id"`
	Title  string `db:"title"  json:"title"`
	Handle string `db:"handle" json:"handle"`
	SKU    string `db:"sku"    json:"sku,omitempty"`

	// Catalog metadata
	Vendor      string `db:"vendor"       json:"vendor,omitempty"`
	ProductType string `db:"product_type" json:"product_type,omitempty"`
	ImageURL    string `db:"image_url"    json:"image_url,omitempty"`
	Status      string `db:"status"       json:"status"`

	// BodyHTML is the live product description as stored in Shopify.
	// May be empty, hand-edited, or malformed markup.
	BodyHTML string `db:"body_html" json:"body_html,omitempty"`

	// Timestamps
	ShopifyUpdatedAt *time.Time `db:"shopify_updated_at" json:"shopify_updated_at,omitempty"`
	SyncedAt         time.Time  `db:"synced_at"          json:"synced_at"`
	CreatedAt        time.Time  `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"         json:"updated_at"`
}

// Product status values as reported by the catalog.
const (
	ProductStatusActive   = "active"
	ProductStatusDraft    = "draft"
	ProductStatusArchived = "archived"
)

// HasContent reports whether the product carries any non-empty catalog
// content. This is the external "has Shopify content" flag the status
// combinator consumes.
func (p *Product) HasContent() bool {
	return strings.TrimSpace(p.BodyHTML) != ""
}
