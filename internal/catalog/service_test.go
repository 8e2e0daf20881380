package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestService(t *testing.T, quality QualityFn) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(quality)
	return NewService(store, quality, zerolog.Nop()), store
}

func seedPublished(t *testing.T, store *MemoryStore, count int, base time.Time) {
	t.Helper()
	for i := 0; i < count; i++ {
		product := Product{
			ID:           fmt.Sprintf("prd_%03d", i),
			SellerID:     "slr_1",
			Name:         fmt.Sprintf("Product %03d", i),
			CategorySlug: "general",
			PriceCents:   int64(1000 + i*100),
			Currency:     "USD",
			StockQty:     10,
			SalesCount:   int64(i),
			Status:       StatusPublished,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Create(context.Background(), product); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
}

func TestListPaginatesPublishedOnly(t *testing.T) {
	service, store := newTestService(t, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPublished(t, store, 15, base)

	// Non-published products never count toward the listing.
	for i, status := range []Status{StatusDraft, StatusPendingReview, StatusRejected} {
		_ = store.Create(context.Background(), Product{
			ID:        fmt.Sprintf("prd_hidden_%d", i),
			SellerID:  "slr_1",
			Name:      "Hidden",
			Status:    status,
			CreatedAt: base.Add(time.Hour),
		})
	}

	result := service.List(context.Background(), Query{Page: 1, Limit: 12, Sort: SortNewest})
	if len(result.Products) != 12 {
		t.Fatalf("expected 12 products, got %d", len(result.Products))
	}
	if result.Pagination.Total != 15 || result.Pagination.Pages != 2 {
		t.Fatalf("unexpected pagination %+v", result.Pagination)
	}

	second := service.List(context.Background(), Query{Page: 2, Limit: 12, Sort: SortNewest})
	if len(second.Products) != 3 {
		t.Fatalf("expected 3 products on page 2, got %d", len(second.Products))
	}

	beyond := service.List(context.Background(), Query{Page: 5, Limit: 12, Sort: SortNewest})
	if len(beyond.Products) != 0 || beyond.Pagination.Total != 15 {
		t.Fatalf("expected empty page with real total, got %+v", beyond.Pagination)
	}
}

func TestListIsDeterministic(t *testing.T) {
	service, store := newTestService(t, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Identical created-at and price so only the id tie-break orders them.
	for _, id := range []string{"prd_b", "prd_a", "prd_c"} {
		_ = store.Create(context.Background(), Product{
			ID:         id,
			SellerID:   "slr_1",
			Name:       "Same",
			PriceCents: 1000,
			Status:     StatusPublished,
			CreatedAt:  base,
		})
	}

	first := service.List(context.Background(), Query{Page: 1, Limit: 12, Sort: SortPriceAsc})
	second := service.List(context.Background(), Query{Page: 1, Limit: 12, Sort: SortPriceAsc})

	if len(first.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(first.Products))
	}
	for i := range first.Products {
		if first.Products[i].ID != second.Products[i].ID {
			t.Fatalf("ordering not stable at index %d", i)
		}
	}
	if first.Products[0].ID != "prd_a" || first.Products[2].ID != "prd_c" {
		t.Fatalf("expected id ascending tie-break, got %v", []string{first.Products[0].ID, first.Products[1].ID, first.Products[2].ID})
	}
}

func TestListSortKeys(t *testing.T) {
	service, store := newTestService(t, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	seed := []struct {
		id      string
		price   int64
		sales   int64
		created time.Time
	}{
		{"prd_old_cheap", 500, 90, base},
		{"prd_mid", 1500, 10, base.Add(time.Hour)},
		{"prd_new_dear", 3000, 50, base.Add(2 * time.Hour)},
	}
	for _, s := range seed {
		_ = store.Create(context.Background(), Product{
			ID: s.id, SellerID: "slr_1", Name: s.id, PriceCents: s.price,
			SalesCount: s.sales, Status: StatusPublished, CreatedAt: s.created,
		})
	}

	cases := []struct {
		sort  SortKey
		first string
	}{
		{SortNewest, "prd_new_dear"},
		{SortPriceAsc, "prd_old_cheap"},
		{SortPriceDesc, "prd_new_dear"},
		{SortBestSelling, "prd_old_cheap"},
	}
	for _, tc := range cases {
		result := service.List(context.Background(), Query{Page: 1, Limit: 12, Sort: tc.sort})
		if result.Products[0].ID != tc.first {
			t.Fatalf("sort %s: expected %s first, got %s", tc.sort, tc.first, result.Products[0].ID)
		}
	}
}

func TestListAvailabilityAndSellerFacets(t *testing.T) {
	quality := func(sellerID string) []SellerQuality {
		if sellerID == "slr_verified" {
			return []SellerQuality{SellerQualityVerified}
		}
		return nil
	}
	service, store := newTestService(t, quality)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	stock := []struct {
		id     string
		seller string
		qty    int32
	}{
		{"prd_in", "slr_verified", 20},
		{"prd_low", "slr_other", 3},
		{"prd_out", "slr_other", 0},
	}
	for _, s := range stock {
		_ = store.Create(context.Background(), Product{
			ID: s.id, SellerID: s.seller, Name: s.id, PriceCents: 1000,
			StockQty: s.qty, Status: StatusPublished, CreatedAt: base,
		})
	}

	result := service.List(context.Background(), Query{
		Page: 1, Limit: 12, Sort: SortNewest,
		Availability: []Availability{AvailabilityLowStock, AvailabilityOutOfStock},
	})
	if result.Pagination.Total != 2 {
		t.Fatalf("expected 2 matches, got %+v", result.Pagination)
	}

	verified := service.List(context.Background(), Query{
		Page: 1, Limit: 12, Sort: SortNewest,
		SellerQuality: []SellerQuality{SellerQualityVerified},
	})
	if verified.Pagination.Total != 1 || verified.Products[0].ID != "prd_in" {
		t.Fatalf("expected only verified-seller product, got %+v", verified.Pagination)
	}
	if len(verified.Products[0].SellerBadges) != 1 || verified.Products[0].SellerBadges[0] != SellerQualityVerified {
		t.Fatalf("expected verified badge on view, got %+v", verified.Products[0].SellerBadges)
	}
	if verified.Products[0].Availability != AvailabilityInStock {
		t.Fatalf("expected in_stock availability, got %s", verified.Products[0].Availability)
	}
}

type failingStore struct{}

func (failingStore) GetByID(context.Context, string) (Product, bool, error) {
	return Product{}, false, errors.New("boom")
}
func (failingStore) Create(context.Context, Product) error  { return errors.New("boom") }
func (failingStore) Update(context.Context, Product) error  { return errors.New("boom") }
func (failingStore) Delete(context.Context, string) error   { return errors.New("boom") }
func (failingStore) ListBySeller(context.Context, string) ([]Product, error) {
	return nil, errors.New("boom")
}
func (failingStore) Search(context.Context, Filter, Sort, Page) ([]Product, error) {
	return nil, errors.New("boom")
}
func (failingStore) Count(context.Context, Filter) (int, error) { return 0, errors.New("boom") }

func TestListDegradesOnStoreFailure(t *testing.T) {
	service := NewService(failingStore{}, nil, zerolog.Nop())

	result := service.List(context.Background(), Query{Page: 2, Limit: 24, Sort: SortNewest})
	if result.Products == nil || len(result.Products) != 0 {
		t.Fatalf("expected empty product slice, got %+v", result.Products)
	}
	if result.Pagination.Page != 2 || result.Pagination.Limit != 24 {
		t.Fatalf("degraded result must echo the request window, got %+v", result.Pagination)
	}
	if result.Pagination.Total != 0 || result.Pagination.Pages != 0 {
		t.Fatalf("degraded result must report zero totals, got %+v", result.Pagination)
	}
}

func TestProductImageViews(t *testing.T) {
	service, store := newTestService(t, nil)

	_ = store.Create(context.Background(), Product{
		ID:       "prd_img",
		SellerID: "slr_1",
		Name:     "Walnut Desk Organizer",
		Status:   StatusPublished,
		Images: []Image{
			{URL: "https://cdn.example.com/b.jpg", AltText: "", Position: 2},
			{URL: "https://cdn.example.com/a.jpg", AltText: "Front view", Position: 1},
		},
	})

	view, exists, err := service.GetPublished(context.Background(), "prd_img")
	if err != nil || !exists {
		t.Fatalf("GetPublished() = %v, %v", exists, err)
	}

	if view.PrimaryImage == nil || view.PrimaryImage.URL != "https://cdn.example.com/a.jpg" {
		t.Fatalf("expected lowest-position image as primary, got %+v", view.PrimaryImage)
	}
	if !view.Images[0].IsPrimary || view.Images[1].IsPrimary {
		t.Fatalf("expected exactly the first image flagged primary, got %+v", view.Images)
	}
	if view.Images[1].AltText != "Walnut Desk Organizer" {
		t.Fatalf("expected product name as alt fallback, got %q", view.Images[1].AltText)
	}
}

func TestProductWorkflow(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	product, err := service.CreateProduct(ctx, CreateProductInput{
		SellerID:   "slr_1",
		Name:       "Brass Lamp",
		PriceCents: 12900,
		Currency:   "usd",
		StockQty:   4,
	})
	if err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}
	if product.Status != StatusDraft || product.Currency != "USD" || product.CategorySlug != "general" {
		t.Fatalf("unexpected product %+v", product)
	}

	if _, err := service.Review(ctx, product.ID, "usr_mod", ReviewDecisionPublish, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for draft review, got %v", err)
	}

	submitted, err := service.SubmitForReview(ctx, product.ID, "slr_1")
	if err != nil {
		t.Fatalf("SubmitForReview() error = %v", err)
	}
	if submitted.Status != StatusPendingReview {
		t.Fatalf("expected pending_review, got %s", submitted.Status)
	}

	rejected, err := service.Review(ctx, product.ID, "usr_mod", ReviewDecisionReject, "missing photos")
	if err != nil {
		t.Fatalf("Review(reject) error = %v", err)
	}
	if rejected.Status != StatusRejected || rejected.ReviewReason != "missing photos" {
		t.Fatalf("unexpected rejected product %+v", rejected)
	}

	// Rejected products can be resubmitted.
	if _, err := service.SubmitForReview(ctx, product.ID, "slr_1"); err != nil {
		t.Fatalf("resubmit error = %v", err)
	}
	published, err := service.Review(ctx, product.ID, "usr_mod", ReviewDecisionPublish, "")
	if err != nil {
		t.Fatalf("Review(publish) error = %v", err)
	}
	if published.Status != StatusPublished || published.ReviewReason != "" {
		t.Fatalf("unexpected published product %+v", published)
	}

	// A content edit on a published product sends it back to draft.
	name := "Brass Lamp v2"
	edited, err := service.UpdateProduct(ctx, product.ID, "slr_1", UpdateProductInput{Name: &name})
	if err != nil {
		t.Fatalf("UpdateProduct() error = %v", err)
	}
	if edited.Status != StatusDraft {
		t.Fatalf("expected draft after content edit, got %s", edited.Status)
	}
}

func TestSellerOwnershipChecks(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	product, err := service.CreateProduct(ctx, CreateProductInput{
		SellerID: "slr_owner", Name: "Trivet", PriceCents: 2200, Currency: "USD",
	})
	if err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}

	name := "Stolen"
	if _, err := service.UpdateProduct(ctx, product.ID, "slr_other", UpdateProductInput{Name: &name}); !errors.Is(err, ErrUnauthorizedAccess) {
		t.Fatalf("expected ErrUnauthorizedAccess, got %v", err)
	}
	if err := service.DeleteProduct(ctx, product.ID, "slr_other"); !errors.Is(err, ErrUnauthorizedAccess) {
		t.Fatalf("expected ErrUnauthorizedAccess, got %v", err)
	}
	if _, err := service.UpdateProduct(ctx, "prd_missing", "slr_owner", UpdateProductInput{Name: &name}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	bad := []CreateProductInput{
		{SellerID: "", Name: "X", PriceCents: 100, Currency: "USD"},
		{SellerID: "slr_1", Name: "   ", PriceCents: 100, Currency: "USD"},
		{SellerID: "slr_1", Name: "X", PriceCents: 0, Currency: "USD"},
		{SellerID: "slr_1", Name: "X", PriceCents: 100, Currency: ""},
		{SellerID: "slr_1", Name: "X", PriceCents: 100, Currency: "USD", StockQty: -1},
		{SellerID: "slr_1", Name: "X", PriceCents: 100, Currency: "USD", Images: make([]Image, 11)},
	}
	for i, input := range bad {
		if _, err := service.CreateProduct(ctx, input); !errors.Is(err, ErrInvalidProductInput) {
			t.Fatalf("case %d: expected ErrInvalidProductInput, got %v", i, err)
		}
	}
}

func TestQualitiesFor(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	badges := QualitiesFor(true, 4.9, now.Add(-10*24*time.Hour), now)
	if len(badges) != 3 {
		t.Fatalf("expected all badges, got %+v", badges)
	}

	badges = QualitiesFor(false, 4.5, now.Add(-200*24*time.Hour), now)
	if len(badges) != 1 || badges[0] != SellerQualityTopRated {
		t.Fatalf("expected only top_rated, got %+v", badges)
	}

	if badges = QualitiesFor(false, 3.0, now.Add(-200*24*time.Hour), now); len(badges) != 0 {
		t.Fatalf("expected no badges, got %+v", badges)
	}
}
