package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/database"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/jwt"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/layout"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/processor"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/render"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/shopify"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/telemetry"
)

// List pagination bounds. The repository clamps again; these guard the
// query string parse.
const (
	defaultListPage     = 1
	defaultListPageSize = 50
	maxListPageSize     = 250
)

// ProductStore is the slice of the product repository the API reads.
type ProductStore interface {
	List(ctx context.Context, filter database.ProductListFilter) ([]*domain.Product, int, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product *domain.Product) error
	LastSyncedAt(ctx context.Context) (*time.Time, error)
}

// DraftStore persists per-product section drafts.
type DraftStore interface {
	Upsert(ctx context.Context, draft *domain.Draft) error
	GetByProductID(ctx context.Context, productID string) (*domain.Draft, error)
	Delete(ctx context.Context, productID string) error
}

// StatusService resolves content statuses and the overview aggregate.
type StatusService interface {
	Get(ctx context.Context, productID string) (domain.ContentStatus, error)
	GetBatch(ctx context.Context, productIDs []string) (map[string]domain.ContentStatus, error)
	Recompute(ctx context.Context, productID string) (domain.ContentStatus, error)
	Overview(ctx context.Context) (*domain.StatusOverview, error)
}

// CatalogPublisher pushes rendered content to the live store.
type CatalogPublisher interface {
	UpdateProductBody(ctx context.Context, productID, bodyHTML string) error
}

// SyncRunner backs the manual sync trigger.
type SyncRunner interface {
	SyncOnce(ctx context.Context) (*processor.SyncStats, error)
	Running() bool
}

// Logger defines the logging interface
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Handler handles HTTP requests for the product hub API
type Handler struct {
	classifier *layout.Classifier
	renderer   *render.Renderer
	products   ProductStore
	drafts     DraftStore
	statuses   StatusService
	publisher  CatalogPublisher
	syncer     SyncRunner
	telemetry  *telemetry.Provider
	logger     Logger
}

// NewHandler creates a new API handler. The telemetry provider may be nil.
func NewHandler(
	classifier *layout.Classifier,
	renderer *render.Renderer,
	products ProductStore,
	drafts DraftStore,
	statuses StatusService,
	publisher CatalogPublisher,
	syncer SyncRunner,
	tp *telemetry.Provider,
	logger Logger,
) *Handler {
	return &Handler{
		classifier: classifier,
		renderer:   renderer,
		products:   products,
		drafts:     drafts,
		statuses:   statuses,
		publisher:  publisher,
		syncer:     syncer,
		telemetry:  tp,
		logger:     logger,
	}
}

// ListProducts handles GET /api/v1/products
func (h *Handler) ListProducts(c *gin.Context) {
	filter := database.ProductListFilter{
		Page:      defaultListPage,
		PageSize:  defaultListPageSize,
		Search:    c.Query("search"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
		Status:    domain.StatusFilter(c.Query("status")),
	}

	if pageParam := c.Query("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			filter.Page = p
		}
	}
	if sizeParam := c.Query("page_size"); sizeParam != "" {
		if s, err := strconv.Atoi(sizeParam); err == nil && s > 0 && s <= maxListPageSize {
			filter.PageSize = s
		}
	}

	if !domain.ValidStatusFilter(filter.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	h.logger.Debug("Listing products",
		"page", filter.Page,
		"page_size", filter.PageSize,
		"status", string(filter.Status),
		"search", filter.Search,
	)

	products, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	statuses, err := h.statuses.GetBatch(c.Request.Context(), ids)
	if err != nil {
		h.logger.Error("Failed to resolve statuses for product page", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve content statuses"})
		return
	}

	response := make([]ProductResponse, len(products))
	for i, p := range products {
		response[i] = toProductResponse(p, statuses[p.ID])
	}

	c.JSON(http.StatusOK, ProductListResponse{
		Products: response,
		Total:    total,
		Page:     filter.Page,
		PerPage:  filter.PageSize,
	})
}

// GetProduct handles GET /api/v1/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	product, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Error("Failed to get product", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	status, err := h.statuses.Get(c.Request.Context(), productID)
	if err != nil {
		h.logger.Error("Failed to resolve product status", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve content status"})
		return
	}

	detail := ProductDetailResponse{
		ProductResponse:  toProductResponse(product, status),
		BodyHTML:         product.BodyHTML,
		DetectedSections: sectionKeyStrings(h.classifier.DetectSections(product.BodyHTML)),
	}

	draft, err := h.drafts.GetByProductID(c.Request.Context(), productID)
	switch {
	case err == nil:
		dr := toDraftResponse(draft)
		detail.Draft = &dr
	case errors.Is(err, database.ErrDraftNotFound):
		// no draft, field stays empty
	default:
		h.logger.Error("Failed to load draft", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetProductStatus handles GET /api/v1/products/:id/status
func (h *Handler) GetProductStatus(c *gin.Context) {
	productID := c.Param("id")

	status, err := h.statuses.Get(c.Request.Context(), productID)
	if err != nil {
		h.logger.Error("Failed to resolve product status", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve content status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// BatchStatus handles POST /api/v1/status/batch
func (h *Handler) BatchStatus(c *gin.Context) {
	var req BatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid batch status request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Debug("Resolving status batch", "batch_size", len(req.ProductIDs))

	statuses, err := h.statuses.GetBatch(c.Request.Context(), req.ProductIDs)
	if err != nil {
		h.logger.Error("Failed to resolve status batch", "batch_size", len(req.ProductIDs), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve content statuses"})
		return
	}

	c.JSON(http.StatusOK, BatchStatusResponse{Statuses: statuses})
}

// SaveDraft handles PUT /api/v1/products/:id/draft
func (h *Handler) SaveDraft(c *gin.Context) {
	productID := c.Param("id")

	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid draft request", "product_id", productID, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("Saving draft", "product_id", productID, "sections", len(req.Sections))

	draft := &domain.Draft{
		ProductID: productID,
		Sections:  toDomainSections(req.Sections),
	}
	if err := h.drafts.Upsert(c.Request.Context(), draft); err != nil {
		h.logger.Error("Failed to save draft", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	status, err := h.statuses.Recompute(c.Request.Context(), productID)
	if err != nil {
		h.logger.Error("Failed to recompute status after draft save", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Draft saved but status recompute failed"})
		return
	}

	c.JSON(http.StatusOK, SaveDraftResponse{
		Draft:  toDraftResponse(draft),
		Status: status,
	})
}

// GetDraft handles GET /api/v1/products/:id/draft
func (h *Handler) GetDraft(c *gin.Context) {
	productID := c.Param("id")

	draft, err := h.drafts.GetByProductID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, database.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No draft for product"})
			return
		}
		h.logger.Error("Failed to load draft", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}

	c.JSON(http.StatusOK, toDraftResponse(draft))
}

// DeleteDraft handles DELETE /api/v1/products/:id/draft. Deleting an absent
// draft succeeds so the editor can retry freely.
func (h *Handler) DeleteDraft(c *gin.Context) {
	productID := c.Param("id")

	h.logger.Info("Deleting draft", "product_id", productID)

	if err := h.drafts.Delete(c.Request.Context(), productID); err != nil &&
		!errors.Is(err, database.ErrDraftNotFound) {
		h.logger.Error("Failed to delete draft", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete draft"})
		return
	}

	status, err := h.statuses.Recompute(c.Request.Context(), productID)
	if err != nil {
		h.logger.Error("Failed to recompute status after draft delete", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Draft deleted but status recompute failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Draft deleted successfully",
		"status":  status,
	})
}

// Preview handles POST /api/v1/preview
func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid preview request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	html, err := h.renderer.Render(req.SKU, toDomainSections(req.Sections))
	if err != nil {
		h.logger.Error("Failed to render preview", "sku", req.SKU, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render preview"})
		return
	}

	result := h.classifier.Classify(html)

	c.JSON(http.StatusOK, PreviewResponse{
		HTML:         html,
		IsNewLayout:  result.IsNewLayout,
		ContentCount: result.ContentCount,
		Sections:     sectionKeyStrings(h.classifier.DetectSections(html)),
	})
}

// PublishProduct handles POST /api/v1/products/:id/publish. Render the
// draft, push it to Shopify, mirror the new body, drop the draft, and
// recompute the status.
func (h *Handler) PublishProduct(c *gin.Context) {
	productID := c.Param("id")

	product, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Error("Failed to get product", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	draft, err := h.drafts.GetByProductID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, database.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No draft to publish"})
			return
		}
		h.logger.Error("Failed to load draft", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}

	actor := "anonymous"
	if claims, ok := jwt.GetClaims(c); ok && claims.Sub != "" {
		actor = claims.Sub
	}

	h.logger.Info("Publishing draft",
		"product_id", productID, "sections", len(draft.Sections), "actor", actor)

	html, err := h.renderer.Render(product.SKU, draft.Sections)
	if err != nil {
		h.logger.Error("Failed to render draft", "product_id", productID, "error", err)
		h.recordPublish(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render draft"})
		return
	}
	if html == "" {
		// Publishing an all-empty draft would blank the live listing.
		c.JSON(http.StatusBadRequest, gin.H{"error": "Draft has no renderable content"})
		return
	}

	if err := h.publisher.UpdateProductBody(c.Request.Context(), productID, html); err != nil {
		h.recordPublish(false)
		if errors.Is(err, shopify.ErrRateLimited) {
			h.logger.Warn("Publish rate limited by Shopify", "product_id", productID)
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Shopify rate limited, retry later"})
			return
		}
		h.logger.Error("Failed to push content to Shopify", "product_id", productID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to push content to Shopify"})
		return
	}

	product.BodyHTML = html
	if err := h.products.Upsert(c.Request.Context(), product); err != nil {
		h.logger.Error("Failed to mirror published content", "product_id", productID, "error", err)
		h.recordPublish(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Published but failed to update local mirror"})
		return
	}

	if err := h.drafts.Delete(c.Request.Context(), productID); err != nil &&
		!errors.Is(err, database.ErrDraftNotFound) {
		// The push and mirror update succeeded; a lingering draft only
		// keeps the product in draft mode until it is deleted again.
		h.logger.Error("Publish succeeded but draft removal failed", "product_id", productID, "error", err)
	}

	h.recordPublish(true)

	response := PublishResponse{ProductID: productID}
	status, err := h.statuses.Recompute(c.Request.Context(), productID)
	if err != nil {
		h.logger.Error("Failed to recompute status after publish", "product_id", productID, "error", err)
	} else {
		response.Status = &status
	}

	h.logger.Info("Draft published", "product_id", productID, "actor", actor)

	c.JSON(http.StatusOK, response)
}

// GetStats handles GET /api/v1/stats
func (h *Handler) GetStats(c *gin.Context) {
	h.logger.Debug("Getting status overview")

	overview, err := h.statuses.Overview(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load status overview", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load status overview"})
		return
	}

	lastSynced, err := h.products.LastSyncedAt(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to read last sync time", "error", err)
	}

	c.JSON(http.StatusOK, StatsResponse{
		StatusOverview: *overview,
		LastSyncedAt:   lastSynced,
		SyncRunning:    h.syncer.Running(),
	})
}

// TriggerSync handles POST /api/v1/sync. The sync runs in the background;
// the response only acknowledges the start.
func (h *Handler) TriggerSync(c *gin.Context) {
	if h.syncer.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": "Sync already in progress"})
		return
	}

	h.logger.Info("Manual catalog sync triggered")

	go func() {
		stats, err := h.syncer.SyncOnce(context.Background())
		if err != nil {
			if errors.Is(err, processor.ErrSyncInProgress) {
				h.logger.Warn("Manual sync skipped, another run is active")
				return
			}
			h.logger.Error("Manual catalog sync failed", "error", err)
			return
		}
		h.logger.Info("Manual catalog sync completed",
			"pages", stats.Pages,
			"products", stats.Products,
			"duration_ms", stats.DurationMs,
		)
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "sync started"})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "producthub",
		"version": "1.0.0",
	})
}

// ReadyCheck handles GET /ready
func (h *Handler) ReadyCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handler) recordPublish(success bool) {
	if h.telemetry != nil {
		h.telemetry.RecordPublish(success)
	}
}
