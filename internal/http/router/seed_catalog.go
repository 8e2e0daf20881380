package router

import (
	"context"

	"github.com/oakmart/storefront-api/internal/catalog"
)

type seedProduct struct {
	name        string
	description string
	category    string
	priceCents  int64
	stockQty    int32
	imageURL    string
}

// seedDevelopmentCatalog populates a small browsable catalog so the listing
// and cart flows work out of the box in development. Products run through
// the normal draft, submit and review workflow.
func (a *api) seedDevelopmentCatalog() {
	ctx := context.Background()

	demoSellers := []struct {
		email    string
		slug     string
		name     string
		verified bool
		rating   float64
		products []seedProduct
	}{
		{
			email:    "north-supply@example.com",
			slug:     "north-supply",
			name:     "North Supply Co",
			verified: true,
			rating:   4.7,
			products: []seedProduct{
				{"Walnut Desk Organizer", "Five-slot organizer milled from solid walnut.", "office", 4900, 24, "https://cdn.example.com/img/organizer.jpg"},
				{"Brass Desk Lamp", "Adjustable warm-light lamp with a weighted base.", "office", 12900, 4, "https://cdn.example.com/img/lamp.jpg"},
				{"Linen Notebook", "A5 dot-grid notebook with lay-flat binding.", "stationery", 1800, 120, "https://cdn.example.com/img/notebook.jpg"},
			},
		},
		{
			email:    "field-and-fern@example.com",
			slug:     "field-and-fern",
			name:     "Field & Fern",
			verified: false,
			rating:   4.2,
			products: []seedProduct{
				{"Ceramic Pour-Over Set", "Two-piece pour-over brewer with a matching mug.", "kitchen", 6400, 0, "https://cdn.example.com/img/pourover.jpg"},
				{"Cast Iron Trivet", "Hex trivet, oven safe, rubber feet.", "kitchen", 2200, 58, "https://cdn.example.com/img/trivet.jpg"},
			},
		},
	}

	for _, demo := range demoSellers {
		owner, err := a.users.EnsureUser(demo.email, demo.name, "")
		if err != nil {
			continue
		}
		seller, err := a.sellers.Register(owner.ID, demo.slug, demo.name)
		if err != nil {
			continue
		}
		if demo.verified {
			_, _ = a.sellers.SetVerified(seller.ID, true)
		}
		_, _ = a.sellers.SetRating(seller.ID, demo.rating)
		_, _ = a.users.PromoteToSeller(owner.ID)

		for _, item := range demo.products {
			product, err := a.catalog.CreateProduct(ctx, catalog.CreateProductInput{
				SellerID:     seller.ID,
				Name:         item.name,
				Description:  item.description,
				CategorySlug: item.category,
				PriceCents:   item.priceCents,
				Currency:     "USD",
				StockQty:     item.stockQty,
				Images: []catalog.Image{
					{URL: item.imageURL, Position: 0},
				},
			})
			if err != nil {
				continue
			}
			if _, err := a.catalog.SubmitForReview(ctx, product.ID, seller.ID); err != nil {
				continue
			}
			_, _ = a.catalog.Review(ctx, product.ID, "seed-moderator", catalog.ReviewDecisionPublish, "")
		}
	}
}
