package catalog

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

var productRowColumns = []string{
	"id", "seller_id", "name", "description", "category_slug", "price_cents",
	"currency", "stock_qty", "rating_average", "sales_count", "featured",
	"status", "review_reason", "created_at", "updated_at",
}

func productRow(id string) *sqlmock.Rows {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(productRowColumns).AddRow(
		id, "slr_1", "Walnut Desk Organizer", "Five-slot organizer", "office",
		int64(4900), "USD", int32(24), 4.7, int64(12), false,
		"published", "", now, now,
	)
}

func TestPostgresSearchBuildsFacetPredicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	store := NewPostgresStore(db)

	searchSQL := "SELECT " + productColumns + " FROM products p JOIN sellers s ON s.id = p.seller_id" +
		" WHERE p.status = 'published'" +
		" AND (LOWER(p.name) LIKE $1 OR LOWER(p.description) LIKE $1)" +
		" AND (p.stock_qty > 5)" +
		" AND (s.verified OR s.rating_average >= 4.5)" +
		" ORDER BY p.created_at DESC, p.id ASC LIMIT $2 OFFSET $3"

	mock.ExpectQuery(regexp.QuoteMeta(searchSQL)).
		WithArgs("%walnut%", 12, 0).
		WillReturnRows(productRow("prd_1"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT product_id, url, alt_text, position FROM product_images WHERE product_id = ANY($1) ORDER BY product_id, position")).
		WithArgs(pq.Array([]string{"prd_1"})).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "url", "alt_text", "position"}).
			AddRow("prd_1", "https://cdn.example.com/a.jpg", "Front", 0))

	filter := Filter{
		Search:        "walnut",
		Availability:  []Availability{AvailabilityInStock},
		SellerQuality: []SellerQuality{SellerQualityVerified, SellerQualityTopRated},
	}
	items, err := store.Search(context.Background(), filter, Sort{Key: SortNewest}, Page{Limit: 12, Offset: 0})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != "prd_1" {
		t.Fatalf("unexpected items %+v", items)
	}
	if len(items[0].Images) != 1 || items[0].Images[0].URL != "https://cdn.example.com/a.jpg" {
		t.Fatalf("expected attached image, got %+v", items[0].Images)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCountUsesSamePredicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	store := NewPostgresStore(db)

	countSQL := "SELECT COUNT(*) FROM products p JOIN sellers s ON s.id = p.seller_id" +
		" WHERE p.status = 'published'" +
		" AND p.category_slug = $1" +
		" AND p.price_cents >= $2" +
		" AND p.price_cents <= $3" +
		" AND p.rating_average >= $4"

	mock.ExpectQuery(regexp.QuoteMeta(countSQL)).
		WithArgs("office", int64(1000), int64(20000), 4.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	filter := Filter{Category: "office", PriceMin: 1000, PriceMax: 20000, MinRating: 4.0}
	total, err := store.Count(context.Background(), filter)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != 7 {
		t.Fatalf("expected 7, got %d", total)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresSortKeyOrdering(t *testing.T) {
	cases := []struct {
		key  SortKey
		want string
	}{
		{SortNewest, "p.created_at DESC, p.id ASC"},
		{SortPriceAsc, "p.price_cents ASC, p.created_at DESC, p.id ASC"},
		{SortPriceDesc, "p.price_cents DESC, p.created_at DESC, p.id ASC"},
		{SortBestSelling, "p.sales_count DESC, p.created_at DESC, p.id ASC"},
	}
	for _, tc := range cases {
		if got := orderClause(tc.key); got != tc.want {
			t.Fatalf("sort %s: got %q", tc.key, got)
		}
	}
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	store := NewPostgresStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+productColumns+" FROM products p WHERE p.id = $1")).
		WithArgs("prd_missing").
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	_, exists, err := store.GetByID(context.Background(), "prd_missing")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if exists {
		t.Fatal("expected missing product")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
