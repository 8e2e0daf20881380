package catalog

import "time"

// Status is the product lifecycle state. Only published products are ever
// eligible for buyer-facing listings.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusPublished     Status = "published"
	StatusRejected      Status = "rejected"
)

// ReviewDecision resolves a pending_review product.
type ReviewDecision string

const (
	ReviewDecisionPublish ReviewDecision = "publish"
	ReviewDecisionReject  ReviewDecision = "reject"
)

// Availability is the stock facet computed per product.
type Availability string

const (
	AvailabilityInStock    Availability = "in_stock"
	AvailabilityLowStock   Availability = "low_stock"
	AvailabilityOutOfStock Availability = "out_of_stock"
)

// SellerQuality is the seller-badge facet computed from the seller profile.
type SellerQuality string

const (
	SellerQualityVerified  SellerQuality = "verified"
	SellerQualityTopRated  SellerQuality = "top_rated"
	SellerQualityNewSeller SellerQuality = "new_seller"
)

const (
	lowStockThreshold  = 5
	topRatedFloor      = 4.5
	newSellerWindow    = 30 * 24 * time.Hour
	maxImagesPerUpload = 10
)

// Image is a stored product image. Position drives primary selection.
type Image struct {
	URL      string `json:"url"`
	AltText  string `json:"alt_text"`
	Position int    `json:"position"`
}

// Product is the catalog aggregate.
type Product struct {
	ID            string    `json:"id"`
	SellerID      string    `json:"seller_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CategorySlug  string    `json:"category_slug"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	StockQty      int32     `json:"stock_qty"`
	RatingAverage float64   `json:"rating_average"`
	SalesCount    int64     `json:"sales_count"`
	Featured      bool      `json:"featured"`
	Status        Status    `json:"status"`
	ReviewReason  string    `json:"review_reason,omitempty"`
	Images        []Image   `json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AvailabilityOf computes the stock facet value for a product.
func AvailabilityOf(p Product) Availability {
	switch {
	case p.StockQty <= 0:
		return AvailabilityOutOfStock
	case p.StockQty <= lowStockThreshold:
		return AvailabilityLowStock
	default:
		return AvailabilityInStock
	}
}

// QualitiesFor computes the seller-badge set from seller profile values.
// A seller can carry several badges at once; facet filtering matches when
// any badge is in the requested set.
func QualitiesFor(verified bool, ratingAverage float64, createdAt, now time.Time) []SellerQuality {
	badges := make([]SellerQuality, 0, 3)
	if verified {
		badges = append(badges, SellerQualityVerified)
	}
	if ratingAverage >= topRatedFloor {
		badges = append(badges, SellerQualityTopRated)
	}
	if now.Sub(createdAt) <= newSellerWindow {
		badges = append(badges, SellerQualityNewSeller)
	}
	return badges
}

// QualityFn resolves the seller-badge set for a seller id.
type QualityFn func(sellerID string) []SellerQuality

// Category is a discoverable category in the buyer catalog.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}
