package domain

import "time"

// ContentStatus is the four-way classification for one product, used to
// badge and filter bulk product lists. It is derived and recomputable:
// the HTML content and the draft record stay the sources of truth, and
// recomputing with the same inputs always yields the same status.
type ContentStatus struct {
	ProductID string `json:"product_id"`

	// HasShopifyContent is true when the product has any non-empty content
	// in the live catalog. Supplied by the caller, carried unchanged.
	HasShopifyContent bool `json:"has_shopify_content"`

	// HasNewLayout is true when the classifier recognized the tab
	// template's structure in that content.
	HasNewLayout bool `json:"has_new_layout"`

	// HasDraftContent is true when a draft record exists for the product.
	// Supplied by the caller, carried unchanged.
	HasDraftContent bool `json:"has_draft_content"`

	// ContentCount is the number of known sections the classifier found.
	ContentCount int `json:"content_count"`

	// ComputedAt records when this status was derived. Informational only;
	// it does not participate in filtering.
	ComputedAt time.Time `json:"computed_at"`
}

// StatusSnapshot is the persisted form of a ContentStatus, kept per product
// so list filtering and overview counts run in SQL. Snapshots carry the
// vocabulary version they were computed under; counts from different
// versions are never compared.
type StatusSnapshot struct {
	ProductID         string    `db:"product_id"          json:"product_id"`
	HasShopifyContent bool      `db:"has_shopify_content" json:"has_shopify_content"`
	HasNewLayout      bool      `db:"has_new_layout"      json:"has_new_layout"`
	HasDraftContent   bool      `db:"has_draft_content"   json:"has_draft_content"`
	ContentCount      int       `db:"content_count"       json:"content_count"`
	VocabularyVersion int       `db:"vocabulary_version"  json:"vocabulary_version"`
	ComputedAt        time.Time `db:"computed_at"         json:"computed_at"`
}

// Status converts the snapshot row back to its ContentStatus value.
func (s *StatusSnapshot) Status() ContentStatus {
	return ContentStatus{
		ProductID:         s.ProductID,
		HasShopifyContent: s.HasShopifyContent,
		HasNewLayout:      s.HasNewLayout,
		HasDraftContent:   s.HasDraftContent,
		ContentCount:      s.ContentCount,
		ComputedAt:        s.ComputedAt,
	}
}

// NewSnapshot captures a ContentStatus under the given vocabulary version.
func NewSnapshot(status ContentStatus, vocabularyVersion int) StatusSnapshot {
	return StatusSnapshot{
		ProductID:         status.ProductID,
		HasShopifyContent: status.HasShopifyContent,
		HasNewLayout:      status.HasNewLayout,
		HasDraftContent:   status.HasDraftContent,
		ContentCount:      status.ContentCount,
		VocabularyVersion: vocabularyVersion,
		ComputedAt:        status.ComputedAt,
	}
}

// StatusFilter selects a subset of products by content status in list views.
type StatusFilter string

// The four list filters. The empty filter matches everything.
const (
	FilterShopify   StatusFilter = "shopify"
	FilterNewLayout StatusFilter = "new-layout"
	FilterDraftMode StatusFilter = "draft-mode"
	FilterNone      StatusFilter = "none"
)

// ValidStatusFilter reports whether f is one of the known filters or empty.
func ValidStatusFilter(f StatusFilter) bool {
	switch f {
	case "", FilterShopify, FilterNewLayout, FilterDraftMode, FilterNone:
		return true
	default:
		return false
	}
}

// CombineStatus merges the classifier's output for one product with the two
// externally supplied flags into a ContentStatus. Pure pass-through
// aggregation: nothing is recomputed or corrected here.
func CombineStatus(productID string, isNewLayout bool, contentCount int, hasShopifyContent, hasDraftContent bool, now time.Time) ContentStatus {
	return ContentStatus{
		ProductID:         productID,
		HasShopifyContent: hasShopifyContent,
		HasNewLayout:      isNewLayout,
		HasDraftContent:   hasDraftContent,
		ContentCount:      contentCount,
		ComputedAt:        now,
	}
}

// ZeroStatus is the all-false, zero-count status reported for identifiers
// with no discoverable content. Never-classified products match only the
// "none" filter.
func ZeroStatus(productID string, now time.Time) ContentStatus {
	return ContentStatus{
		ProductID:  productID,
		ComputedAt: now,
	}
}

// Matches applies the list filter semantics:
//
//	shopify    -> HasShopifyContent
//	new-layout -> HasNewLayout
//	draft-mode -> HasDraftContent
//	none       -> !HasShopifyContent && !HasNewLayout
//
// "none" deliberately ignores HasDraftContent: a product with only an
// in-progress draft still has no content until published. Unknown filters
// and the empty filter match everything.
func (s ContentStatus) Matches(f StatusFilter) bool {
	switch f {
	case FilterShopify:
		return s.HasShopifyContent
	case FilterNewLayout:
		return s.HasNewLayout
	case FilterDraftMode:
		return s.HasDraftContent
	case FilterNone:
		return !s.HasShopifyContent && !s.HasNewLayout
	default:
		return true
	}
}

// StatusOverview aggregates snapshot counts for the stats endpoint. A
// product can appear in several buckets at once (shopify and new-layout
// overlap by construction), so the buckets do not sum to Total.
type StatusOverview struct {
	Total          int        `db:"total"           json:"total"`
	ShopifyContent int        `db:"shopify_content" json:"shopify_content"`
	NewLayout      int        `db:"new_layout"      json:"new_layout"`
	DraftMode      int        `db:"draft_mode"      json:"draft_mode"`
	None           int        `db:"none"            json:"none"`
	LastComputedAt *time.Time `db:"last_computed_at" json:"last_computed_at,omitempty"`
}
