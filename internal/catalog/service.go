package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/oakmart/storefront-api/internal/platform/identifier"
	"github.com/oakmart/storefront-api/internal/platform/metrics"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrUnauthorizedAccess  = errors.New("unauthorized product access")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidDecision     = errors.New("invalid review decision")
	ErrInvalidProductInput = errors.New("invalid product input")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

type CreateProductInput struct {
	SellerID     string
	Name         string
	Description  string
	CategorySlug string
	PriceCents   int64
	Currency     string
	StockQty     int32
	Images       []Image
}

type UpdateProductInput struct {
	Name         *string
	Description  *string
	CategorySlug *string
	PriceCents   *int64
	Currency     *string
	StockQty     *int32
	Images       *[]Image
}

// ImageView is a client-facing image with the primary flag attached.
type ImageView struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	Position  int    `json:"position"`
	IsPrimary bool   `json:"is_primary"`
}

// ProductView is the listing-facing product shape with derived facets.
type ProductView struct {
	ID            string          `json:"id"`
	SellerID      string          `json:"seller_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	CategorySlug  string          `json:"category_slug"`
	PriceCents    int64           `json:"price_cents"`
	Currency      string          `json:"currency"`
	StockQty      int32           `json:"stock_qty"`
	RatingAverage float64         `json:"rating_average"`
	SalesCount    int64           `json:"sales_count"`
	Featured      bool            `json:"featured"`
	Availability  Availability    `json:"availability"`
	SellerBadges  []SellerQuality `json:"seller_badges"`
	PrimaryImage  *ImageView      `json:"primary_image"`
	Images        []ImageView     `json:"images"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ListResult is the shaped listing response body.
type ListResult struct {
	Products   []ProductView `json:"products"`
	Pagination Pagination    `json:"pagination"`
}

// Service implements listing query building and product workflow operations
// on top of a ProductStore.
type Service struct {
	store   ProductStore
	quality QualityFn
	logger  zerolog.Logger

	mu            sync.RWMutex
	categories    map[string]Category
	categoryOrder []string
}

func NewService(store ProductStore, quality QualityFn, logger zerolog.Logger) *Service {
	service := &Service{
		store:      store,
		quality:    quality,
		logger:     logger,
		categories: make(map[string]Category),
	}
	service.UpsertCategory("general", "General")
	return service
}

// List executes a resolved listing query. Store failures degrade to an empty
// result instead of surfacing an error: a broken listing page stays up,
// and the failure is logged and counted for operators.
func (s *Service) List(ctx context.Context, q Query) ListResult {
	filter, sortPlan, page := BuildPlan(q)

	items, err := s.store.Search(ctx, filter, sortPlan, page)
	if err != nil {
		return s.degrade(q, err)
	}

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return s.degrade(q, err)
	}

	views := make([]ProductView, 0, len(items))
	for _, product := range items {
		views = append(views, s.viewOf(product))
	}

	return ListResult{
		Products:   views,
		Pagination: NewPagination(q.Page, q.Limit, total),
	}
}

func (s *Service) degrade(q Query, err error) ListResult {
	metrics.CatalogStoreFailures.Inc()
	s.logger.Error().
		Err(err).
		Str("search", q.Search).
		Str("category", q.Category).
		Int("page", q.Page).
		Msg("catalog store query failed, degrading to empty listing")

	return ListResult{
		Products:   []ProductView{},
		Pagination: NewPagination(q.Page, q.Limit, 0),
	}
}

// GetPublished returns the buyer-facing view of a published product.
func (s *Service) GetPublished(ctx context.Context, productID string) (ProductView, bool, error) {
	product, exists, err := s.store.GetByID(ctx, productID)
	if err != nil {
		return ProductView{}, false, ErrStoreUnavailable
	}
	if !exists || product.Status != StatusPublished {
		return ProductView{}, false, nil
	}
	return s.viewOf(product), true, nil
}

// viewOf reduces the stored image collection to a primary image plus flagged
// views. The primary image is the one with the minimum display position;
// images without alt text fall back to the product name.
func (s *Service) viewOf(product Product) ProductView {
	images := append([]Image(nil), product.Images...)
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Position < images[j].Position
	})

	minPosition := 0
	if len(images) > 0 {
		minPosition = images[0].Position
	}

	imageViews := make([]ImageView, 0, len(images))
	var primary *ImageView
	for _, image := range images {
		altText := strings.TrimSpace(image.AltText)
		if altText == "" {
			altText = product.Name
		}
		view := ImageView{
			URL:       image.URL,
			AltText:   altText,
			Position:  image.Position,
			IsPrimary: image.Position == minPosition,
		}
		imageViews = append(imageViews, view)
		if primary == nil && view.IsPrimary {
			copied := view
			primary = &copied
		}
	}

	badges := []SellerQuality{}
	if s.quality != nil {
		if computed := s.quality(product.SellerID); computed != nil {
			badges = computed
		}
	}

	return ProductView{
		ID:            product.ID,
		SellerID:      product.SellerID,
		Name:          product.Name,
		Description:   product.Description,
		CategorySlug:  product.CategorySlug,
		PriceCents:    product.PriceCents,
		Currency:      product.Currency,
		StockQty:      product.StockQty,
		RatingAverage: product.RatingAverage,
		SalesCount:    product.SalesCount,
		Featured:      product.Featured,
		Availability:  AvailabilityOf(product),
		SellerBadges:  badges,
		PrimaryImage:  primary,
		Images:        imageViews,
		CreatedAt:     product.CreatedAt,
	}
}

func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (Product, error) {
	name := strings.TrimSpace(input.Name)
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if input.SellerID == "" || name == "" || currency == "" || input.PriceCents <= 0 || input.StockQty < 0 {
		return Product{}, ErrInvalidProductInput
	}
	if len(input.Images) > maxImagesPerUpload {
		return Product{}, ErrInvalidProductInput
	}

	category := strings.ToLower(strings.TrimSpace(input.CategorySlug))
	if category == "" {
		category = "general"
	}
	s.UpsertCategory(category, categoryDisplayName(category))

	now := time.Now().UTC()
	product := Product{
		ID:           identifier.New("prd"),
		SellerID:     input.SellerID,
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		CategorySlug: category,
		PriceCents:   input.PriceCents,
		Currency:     currency,
		StockQty:     input.StockQty,
		Status:       StatusDraft,
		Images:       normalizeImages(input.Images),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, product); err != nil {
		return Product{}, ErrStoreUnavailable
	}
	return product, nil
}

// UpdateProduct mutates a product after verifying seller ownership. Content
// changes on a published product send it back to draft for re-review.
func (s *Service) UpdateProduct(ctx context.Context, productID, sellerID string, input UpdateProductInput) (Product, error) {
	product, err := s.ownedProduct(ctx, productID, sellerID)
	if err != nil {
		return Product{}, err
	}

	contentChanged := false

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Product{}, ErrInvalidProductInput
		}
		if name != product.Name {
			product.Name = name
			contentChanged = true
		}
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description != product.Description {
			product.Description = description
			contentChanged = true
		}
	}
	if input.CategorySlug != nil {
		category := strings.ToLower(strings.TrimSpace(*input.CategorySlug))
		if category == "" {
			return Product{}, ErrInvalidProductInput
		}
		if category != product.CategorySlug {
			product.CategorySlug = category
			s.UpsertCategory(category, categoryDisplayName(category))
			contentChanged = true
		}
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			return Product{}, ErrInvalidProductInput
		}
		if *input.PriceCents != product.PriceCents {
			product.PriceCents = *input.PriceCents
			contentChanged = true
		}
	}
	if input.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*input.Currency))
		if currency == "" {
			return Product{}, ErrInvalidProductInput
		}
		if currency != product.Currency {
			product.Currency = currency
			contentChanged = true
		}
	}
	if input.StockQty != nil {
		if *input.StockQty < 0 {
			return Product{}, ErrInvalidProductInput
		}
		product.StockQty = *input.StockQty
	}
	if input.Images != nil {
		if len(*input.Images) > maxImagesPerUpload {
			return Product{}, ErrInvalidProductInput
		}
		product.Images = normalizeImages(*input.Images)
		contentChanged = true
	}

	if contentChanged && product.Status == StatusPublished {
		product.Status = StatusDraft
		product.ReviewReason = ""
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, product); err != nil {
		return Product{}, ErrStoreUnavailable
	}
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, productID, sellerID string) error {
	if _, err := s.ownedProduct(ctx, productID, sellerID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, productID); err != nil {
		return ErrStoreUnavailable
	}
	return nil
}

func (s *Service) ListSellerProducts(ctx context.Context, sellerID string) ([]Product, error) {
	items, err := s.store.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	return items, nil
}

// SubmitForReview moves a draft or rejected product into pending_review.
func (s *Service) SubmitForReview(ctx context.Context, productID, sellerID string) (Product, error) {
	product, err := s.ownedProduct(ctx, productID, sellerID)
	if err != nil {
		return Product{}, err
	}
	if product.Status != StatusDraft && product.Status != StatusRejected {
		return Product{}, ErrInvalidTransition
	}

	product.Status = StatusPendingReview
	product.ReviewReason = ""
	product.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, product); err != nil {
		return Product{}, ErrStoreUnavailable
	}
	return product, nil
}

// Review resolves a pending_review product to published or rejected.
func (s *Service) Review(ctx context.Context, productID, reviewerID string, decision ReviewDecision, reason string) (Product, error) {
	if reviewerID == "" {
		return Product{}, ErrUnauthorizedAccess
	}

	product, exists, err := s.store.GetByID(ctx, productID)
	if err != nil {
		return Product{}, ErrStoreUnavailable
	}
	if !exists {
		return Product{}, ErrProductNotFound
	}
	if product.Status != StatusPendingReview {
		return Product{}, ErrInvalidTransition
	}

	switch decision {
	case ReviewDecisionPublish:
		product.Status = StatusPublished
		product.ReviewReason = ""
	case ReviewDecisionReject:
		product.Status = StatusRejected
		product.ReviewReason = strings.TrimSpace(reason)
	default:
		return Product{}, ErrInvalidDecision
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, product); err != nil {
		return Product{}, ErrStoreUnavailable
	}
	return product, nil
}

func (s *Service) SetFeatured(ctx context.Context, productID string, featured bool) (Product, error) {
	product, exists, err := s.store.GetByID(ctx, productID)
	if err != nil {
		return Product{}, ErrStoreUnavailable
	}
	if !exists {
		return Product{}, ErrProductNotFound
	}

	product.Featured = featured
	product.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, product); err != nil {
		return Product{}, ErrStoreUnavailable
	}
	return product, nil
}

// PublishedCount reports the number of listable products.
func (s *Service) PublishedCount(ctx context.Context) (int, error) {
	total, err := s.store.Count(ctx, Filter{})
	if err != nil {
		return 0, ErrStoreUnavailable
	}
	return total, nil
}

func (s *Service) ownedProduct(ctx context.Context, productID, sellerID string) (Product, error) {
	product, exists, err := s.store.GetByID(ctx, productID)
	if err != nil {
		return Product{}, ErrStoreUnavailable
	}
	if !exists {
		return Product{}, ErrProductNotFound
	}
	if product.SellerID != sellerID {
		return Product{}, ErrUnauthorizedAccess
	}
	return product, nil
}

func (s *Service) UpsertCategory(slug, name string) {
	normalizedSlug := strings.ToLower(strings.TrimSpace(slug))
	normalizedName := strings.TrimSpace(name)
	if normalizedSlug == "" || normalizedName == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.categories[normalizedSlug]; !exists {
		s.categoryOrder = append(s.categoryOrder, normalizedSlug)
	}
	s.categories[normalizedSlug] = Category{Slug: normalizedSlug, Name: normalizedName}
}

func (s *Service) ListCategories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]Category, 0, len(s.categoryOrder))
	for _, slug := range s.categoryOrder {
		categories = append(categories, s.categories[slug])
	}
	return categories
}

func normalizeImages(raw []Image) []Image {
	images := make([]Image, 0, len(raw))
	for _, image := range raw {
		url := strings.TrimSpace(image.URL)
		if url == "" {
			continue
		}
		images = append(images, Image{
			URL:      url,
			AltText:  strings.TrimSpace(image.AltText),
			Position: image.Position,
		})
	}
	return images
}

func categoryDisplayName(slug string) string {
	parts := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
