package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// PostgresStore is the relational ProductStore. Facet predicates are pushed
// down into SQL so the page and the total always come from the same
// predicate.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const productColumns = "p.id, p.seller_id, p.name, p.description, p.category_slug, p.price_cents, p.currency, p.stock_qty, p.rating_average, p.sales_count, p.featured, p.status, p.review_reason, p.created_at, p.updated_at"

func (s *PostgresStore) GetByID(ctx context.Context, productID string) (Product, bool, error) {
	query := "SELECT " + productColumns + " FROM products p WHERE p.id = $1"
	row := s.db.QueryRowContext(ctx, query, productID)

	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, err
	}

	items := []Product{product}
	if err := s.attachImages(ctx, items); err != nil {
		return Product{}, false, err
	}
	return items[0], true, nil
}

func (s *PostgresStore) Create(ctx context.Context, product Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO products (id, seller_id, name, description, category_slug, price_cents, currency, stock_qty, rating_average, sales_count, featured, status, review_reason, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		product.ID, product.SellerID, product.Name, product.Description, product.CategorySlug,
		product.PriceCents, product.Currency, product.StockQty, product.RatingAverage,
		product.SalesCount, product.Featured, string(product.Status), product.ReviewReason,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertImages(ctx, tx, product.ID, product.Images); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) Update(ctx context.Context, product Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`UPDATE products SET name = $2, description = $3, category_slug = $4, price_cents = $5, currency = $6, stock_qty = $7, rating_average = $8, sales_count = $9, featured = $10, status = $11, review_reason = $12, updated_at = $13 WHERE id = $1`,
		product.ID, product.Name, product.Description, product.CategorySlug, product.PriceCents,
		product.Currency, product.StockQty, product.RatingAverage, product.SalesCount,
		product.Featured, string(product.Status), product.ReviewReason, product.UpdatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM product_images WHERE product_id = $1", product.ID); err != nil {
		return err
	}
	if err := insertImages(ctx, tx, product.ID, product.Images); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) Delete(ctx context.Context, productID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM product_images WHERE product_id = $1", productID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE id = $1", productID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) ListBySeller(ctx context.Context, sellerID string) ([]Product, error) {
	query := "SELECT " + productColumns + " FROM products p WHERE p.seller_id = $1 ORDER BY p.created_at DESC, p.id ASC"
	rows, err := s.db.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachImagesSlice(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStore) Search(ctx context.Context, filter Filter, sortPlan Sort, page Page) ([]Product, error) {
	where, args := buildWhere(filter)
	args = append(args, page.Limit, page.Offset)

	query := fmt.Sprintf(
		"SELECT %s FROM products p JOIN sellers s ON s.id = p.seller_id WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		productColumns, where, orderClause(sortPlan.Key), len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachImagesSlice(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStore) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := buildWhere(filter)
	query := "SELECT COUNT(*) FROM products p JOIN sellers s ON s.id = p.seller_id WHERE " + where

	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// buildWhere renders the filter predicate. Clause order is fixed so Search
// and Count always agree and query plans stay cacheable.
func buildWhere(filter Filter) (string, []interface{}) {
	clauses := []string{"p.status = 'published'"}
	args := make([]interface{}, 0, 6)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(LOWER(p.name) LIKE $%d OR LOWER(p.description) LIKE $%d)", n, n))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("p.category_slug = $%d", len(args)))
	}
	if filter.PriceMin > 0 {
		args = append(args, filter.PriceMin)
		clauses = append(clauses, fmt.Sprintf("p.price_cents >= $%d", len(args)))
	}
	if filter.PriceMax > 0 {
		args = append(args, filter.PriceMax)
		clauses = append(clauses, fmt.Sprintf("p.price_cents <= $%d", len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		clauses = append(clauses, fmt.Sprintf("p.rating_average >= $%d", len(args)))
	}

	if len(filter.Availability) > 0 {
		stock := make([]string, 0, len(filter.Availability))
		for _, facet := range filter.Availability {
			switch facet {
			case AvailabilityInStock:
				stock = append(stock, fmt.Sprintf("p.stock_qty > %d", lowStockThreshold))
			case AvailabilityLowStock:
				stock = append(stock, fmt.Sprintf("(p.stock_qty > 0 AND p.stock_qty <= %d)", lowStockThreshold))
			case AvailabilityOutOfStock:
				stock = append(stock, "p.stock_qty <= 0")
			}
		}
		clauses = append(clauses, "("+strings.Join(stock, " OR ")+")")
	}

	if len(filter.SellerQuality) > 0 {
		badges := make([]string, 0, len(filter.SellerQuality))
		for _, facet := range filter.SellerQuality {
			switch facet {
			case SellerQualityVerified:
				badges = append(badges, "s.verified")
			case SellerQualityTopRated:
				badges = append(badges, fmt.Sprintf("s.rating_average >= %g", topRatedFloor))
			case SellerQualityNewSeller:
				badges = append(badges, "s.created_at >= NOW() - INTERVAL '30 days'")
			}
		}
		clauses = append(clauses, "("+strings.Join(badges, " OR ")+")")
	}

	return strings.Join(clauses, " AND "), args
}

func orderClause(key SortKey) string {
	switch key {
	case SortPriceAsc:
		return "p.price_cents ASC, p.created_at DESC, p.id ASC"
	case SortPriceDesc:
		return "p.price_cents DESC, p.created_at DESC, p.id ASC"
	case SortBestSelling:
		return "p.sales_count DESC, p.created_at DESC, p.id ASC"
	default:
		return "p.created_at DESC, p.id ASC"
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (Product, error) {
	var product Product
	var status string
	err := row.Scan(&product.ID, &product.SellerID, &product.Name, &product.Description,
		&product.CategorySlug, &product.PriceCents, &product.Currency, &product.StockQty,
		&product.RatingAverage, &product.SalesCount, &product.Featured, &status,
		&product.ReviewReason, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	product.Status = Status(status)
	return product, nil
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	items := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, product)
	}
	return items, rows.Err()
}

func (s *PostgresStore) attachImagesSlice(ctx context.Context, items []Product) error {
	if len(items) == 0 {
		return nil
	}
	return s.attachImages(ctx, items)
}

func (s *PostgresStore) attachImages(ctx context.Context, items []Product) error {
	ids := make([]string, 0, len(items))
	index := make(map[string]int, len(items))
	for i := range items {
		ids = append(ids, items[i].ID)
		index[items[i].ID] = i
		items[i].Images = nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT product_id, url, alt_text, position FROM product_images WHERE product_id = ANY($1) ORDER BY product_id, position",
		pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var image Image
		if err := rows.Scan(&productID, &image.URL, &image.AltText, &image.Position); err != nil {
			return err
		}
		if i, ok := index[productID]; ok {
			items[i].Images = append(items[i].Images, image)
		}
	}
	return rows.Err()
}

func insertImages(ctx context.Context, tx *sql.Tx, productID string, images []Image) error {
	for _, image := range images {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO product_images (product_id, url, alt_text, position) VALUES ($1, $2, $3, $4)",
			productID, image.URL, image.AltText, image.Position)
		if err != nil {
			return err
		}
	}
	return nil
}
