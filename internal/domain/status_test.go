package domain_test

import (
	"testing"
	"time"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
)

func TestContentStatus_Matches(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		status domain.ContentStatus
		filter domain.StatusFilter
		want   bool
	}{
		{
			name:   "shopify filter selects products with catalog content",
			status: domain.ContentStatus{HasShopifyContent: true},
			filter: domain.FilterShopify,
			want:   true,
		},
		{
			name:   "shopify filter rejects products without catalog content",
			status: domain.ContentStatus{HasNewLayout: true, HasDraftContent: true},
			filter: domain.FilterShopify,
			want:   false,
		},
		{
			name:   "new-layout filter selects recognized template",
			status: domain.ContentStatus{HasShopifyContent: true, HasNewLayout: true},
			filter: domain.FilterNewLayout,
			want:   true,
		},
		{
			name:   "draft-mode filter selects products with drafts",
			status: domain.ContentStatus{HasDraftContent: true},
			filter: domain.FilterDraftMode,
			want:   true,
		},
		{
			name:   "none filter selects products without content or layout",
			status: domain.ContentStatus{},
			filter: domain.FilterNone,
			want:   true,
		},
		{
			name:   "none filter ignores draft existence",
			status: domain.ContentStatus{HasDraftContent: true},
			filter: domain.FilterNone,
			want:   true,
		},
		{
			name:   "none filter rejects shopify content",
			status: domain.ContentStatus{HasShopifyContent: true},
			filter: domain.FilterNone,
			want:   false,
		},
		{
			name:   "empty filter matches everything",
			status: domain.ContentStatus{},
			filter: "",
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.status.ComputedAt = now
			if got := tt.status.Matches(tt.filter); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

// TestContentStatus_NoneFilterTruthTable pins the "none" semantics across
// every flag combination: selected exactly when both shopify-content and
// new-layout are false, regardless of the draft flag.
func TestContentStatus_NoneFilterTruthTable(t *testing.T) {
	for _, shopify := range []bool{false, true} {
		for _, layout := range []bool{false, true} {
			for _, draft := range []bool{false, true} {
				status := domain.ContentStatus{
					HasShopifyContent: shopify,
					HasNewLayout:      layout,
					HasDraftContent:   draft,
				}

				want := !shopify && !layout
				if got := status.Matches(domain.FilterNone); got != want {
					t.Errorf("Matches(none) with shopify=%v layout=%v draft=%v = %v, want %v",
						shopify, layout, draft, got, want)
				}
			}
		}
	}
}

func TestCombineStatus_PassesFlagsThrough(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	status := domain.CombineStatus("prod-42", true, 3, true, false, now)

	if status.ProductID != "prod-42" {
		t.Errorf("ProductID = %q, want %q", status.ProductID, "prod-42")
	}
	if !status.HasNewLayout {
		t.Error("HasNewLayout = false, want true")
	}
	if status.ContentCount != 3 {
		t.Errorf("ContentCount = %d, want 3", status.ContentCount)
	}
	if !status.HasShopifyContent {
		t.Error("HasShopifyContent = false, want true (carried unchanged)")
	}
	if status.HasDraftContent {
		t.Error("HasDraftContent = true, want false (carried unchanged)")
	}
	if !status.ComputedAt.Equal(now) {
		t.Errorf("ComputedAt = %v, want %v", status.ComputedAt, now)
	}
}

func TestZeroStatus_MatchesOnlyNone(t *testing.T) {
	status := domain.ZeroStatus("missing-1", time.Now())

	if status.Matches(domain.FilterShopify) {
		t.Error("zero status matches shopify filter, want no match")
	}
	if status.Matches(domain.FilterNewLayout) {
		t.Error("zero status matches new-layout filter, want no match")
	}
	if status.Matches(domain.FilterDraftMode) {
		t.Error("zero status matches draft-mode filter, want no match")
	}
	if !status.Matches(domain.FilterNone) {
		t.Error("zero status does not match none filter, want match")
	}
}

func TestStatusSnapshot_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	original := domain.ContentStatus{
		ProductID:         "prod-7",
		HasShopifyContent: true,
		HasNewLayout:      true,
		HasDraftContent:   false,
		ContentCount:      4,
		ComputedAt:        now,
	}

	snapshot := domain.NewSnapshot(original, 1)
	if snapshot.VocabularyVersion != 1 {
		t.Errorf("VocabularyVersion = %d, want 1", snapshot.VocabularyVersion)
	}

	if got := snapshot.Status(); got != original {
		t.Errorf("Status() = %+v, want %+v", got, original)
	}
}

func TestValidStatusFilter(t *testing.T) {
	valid := []domain.StatusFilter{"", domain.FilterShopify, domain.FilterNewLayout, domain.FilterDraftMode, domain.FilterNone}
	for _, f := range valid {
		if !domain.ValidStatusFilter(f) {
			t.Errorf("ValidStatusFilter(%q) = false, want true", f)
		}
	}

	if domain.ValidStatusFilter("published") {
		t.Error(`ValidStatusFilter("published") = true, want false`)
	}
}
