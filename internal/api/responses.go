package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/layout"
)

// ProductResponse is the list projection of a mirrored product with its
// content status attached. The raw body HTML stays behind the detail
// endpoint; list pages only need the derived flags.
type ProductResponse struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	Handle           string               `json:"handle"`
	SKU              string               `json:"sku"`
	Vendor           string               `json:"vendor"`
	ProductType      string               `json:"product_type"`
	ImageURL         string               `json:"image_url,omitempty"`
	Status           string               `json:"status"`
	HasContent       bool                 `json:"has_content"`
	ShopifyUpdatedAt *time.Time           `json:"shopify_updated_at,omitempty"`
	SyncedAt         time.Time            `json:"synced_at"`
	ContentStatus    domain.ContentStatus `json:"content_status"`
}

// ProductListResponse is a paginated page of products.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
}

// ProductDetailResponse adds the live body, the draft if one exists, and
// the tab sections detected in the live HTML.
type ProductDetailResponse struct {
	ProductResponse
	BodyHTML         string         `json:"body_html"`
	Draft            *DraftResponse `json:"draft,omitempty"`
	DetectedSections []string       `json:"detected_sections"`
}

// DraftResponse is the wire form of a section draft.
type DraftResponse struct {
	ID        uuid.UUID               `json:"id"`
	ProductID string                  `json:"product_id"`
	Sections  []domain.SectionContent `json:"sections"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// SectionPayload is one authored tab in a draft or preview request.
type SectionPayload struct {
	Key      string `json:"key" binding:"required"`
	Title    string `json:"title"`
	BodyHTML string `json:"body_html"`
	Position int    `json:"position"`
}

// SaveDraftRequest carries the full replacement section list for a
// product's draft.
type SaveDraftRequest struct {
	Sections []SectionPayload `json:"sections" binding:"required,min=1,dive"`
}

// SaveDraftResponse returns the stored draft together with the product's
// recomputed status.
type SaveDraftResponse struct {
	Draft  DraftResponse        `json:"draft"`
	Status domain.ContentStatus `json:"status"`
}

// BatchStatusRequest asks for content statuses in bulk.
type BatchStatusRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required,min=1,max=500"`
}

// BatchStatusResponse maps every requested product id to its status.
type BatchStatusResponse struct {
	Statuses map[string]domain.ContentStatus `json:"statuses"`
}

// PreviewRequest renders sections through the layout template without
// persisting anything.
type PreviewRequest struct {
	SKU      string           `json:"sku"`
	Sections []SectionPayload `json:"sections" binding:"required,min=1,dive"`
}

// PreviewResponse is the rendered HTML plus what the classifier makes of it.
type PreviewResponse struct {
	HTML         string   `json:"html"`
	IsNewLayout  bool     `json:"is_new_layout"`
	ContentCount int      `json:"content_count"`
	Sections     []string `json:"sections"`
}

// PublishResponse reports a completed publish. Status is omitted when the
// post-publish recompute failed; the next lookup recomputes it.
type PublishResponse struct {
	ProductID string                `json:"product_id"`
	Status    *domain.ContentStatus `json:"status,omitempty"`
}

// StatsResponse is the status overview plus sync state for the dashboard.
type StatsResponse struct {
	domain.StatusOverview
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	SyncRunning  bool       `json:"sync_running"`
}

// toProductResponse projects a mirrored product and its resolved status.
func toProductResponse(product *domain.Product, status domain.ContentStatus) ProductResponse {
	return ProductResponse{
		ID:               product.ID,
		Title:            product.Title,
		Handle:           product.Handle,
		SKU:              product.SKU,
		Vendor:           product.Vendor,
		ProductType:      product.ProductType,
		ImageURL:         product.ImageURL,
		Status:           product.Status,
		HasContent:       product.HasContent(),
		ShopifyUpdatedAt: product.ShopifyUpdatedAt,
		SyncedAt:         product.SyncedAt,
		ContentStatus:    status,
	}
}

// toDraftResponse converts a stored draft to its wire form.
func toDraftResponse(draft *domain.Draft) DraftResponse {
	return DraftResponse{
		ID:        draft.ID,
		ProductID: draft.ProductID,
		Sections:  draft.Sections,
		CreatedAt: draft.CreatedAt,
		UpdatedAt: draft.UpdatedAt,
	}
}

// toDomainSections converts request payload sections into domain values.
func toDomainSections(sections []SectionPayload) domain.SectionList {
	out := make(domain.SectionList, len(sections))
	for i, s := range sections {
		out[i] = domain.SectionContent{
			Key:      s.Key,
			Title:    s.Title,
			BodyHTML: s.BodyHTML,
			Position: s.Position,
		}
	}
	return out
}

// sectionKeyStrings flattens detected section keys for JSON responses.
// Always non-nil so empty detections serialize as [] rather than null.
func sectionKeyStrings(keys []layout.SectionKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
