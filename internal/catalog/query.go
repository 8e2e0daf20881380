package catalog

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// SortKey selects one of the fixed listing orderings.
type SortKey string

const (
	SortNewest      SortKey = "newest"
	SortPriceAsc    SortKey = "price_asc"
	SortPriceDesc   SortKey = "price_desc"
	SortBestSelling SortKey = "best_selling"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 48
)

var ErrInvalidQuery = errors.New("invalid listing query")

// Query is the fully resolved listing parameter set. Every field holds a
// concrete value before it reaches a store; no partial state leaks past
// ParseQuery.
type Query struct {
	Page          int
	Limit         int
	Search        string
	Category      string
	PriceMin      int64
	PriceMax      int64 // 0 means unbounded
	MinRating     float64
	Availability  []Availability
	SellerQuality []SellerQuality
	Sort          SortKey
}

// ParseQuery normalizes client listing parameters. Absent parameters resolve
// to defaults; explicitly supplied out-of-range values are rejected rather
// than clamped so the caller learns about the mistake.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		Page:   1,
		Limit:  DefaultPageSize,
		Sort:   SortNewest,
		Search: strings.TrimSpace(values.Get("q")),
	}
	q.Category = strings.ToLower(strings.TrimSpace(values.Get("category")))

	var err error
	if q.Page, err = parseIntParam(values, "page", 1); err != nil {
		return Query{}, err
	}
	if q.Page < 1 {
		return Query{}, fmt.Errorf("%w: page must be >= 1", ErrInvalidQuery)
	}

	if q.Limit, err = parseIntParam(values, "limit", DefaultPageSize); err != nil {
		return Query{}, err
	}
	if q.Limit < 1 || q.Limit > MaxPageSize {
		return Query{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidQuery, MaxPageSize)
	}

	if q.PriceMin, err = parseInt64Param(values, "min_price", 0); err != nil {
		return Query{}, err
	}
	if q.PriceMax, err = parseInt64Param(values, "max_price", 0); err != nil {
		return Query{}, err
	}
	if q.PriceMin < 0 || q.PriceMax < 0 {
		return Query{}, fmt.Errorf("%w: price bounds must be >= 0", ErrInvalidQuery)
	}
	if q.PriceMax > 0 && q.PriceMin > q.PriceMax {
		return Query{}, fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidQuery)
	}

	if q.MinRating, err = parseFloatParam(values, "min_rating", 0); err != nil {
		return Query{}, err
	}
	if q.MinRating < 0 || q.MinRating > 5 {
		return Query{}, fmt.Errorf("%w: min_rating must be between 0 and 5", ErrInvalidQuery)
	}

	if q.Availability, err = parseAvailabilityParam(values.Get("availability")); err != nil {
		return Query{}, err
	}
	if q.SellerQuality, err = parseSellerQualityParam(values.Get("seller")); err != nil {
		return Query{}, err
	}

	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		switch SortKey(raw) {
		case SortNewest, SortPriceAsc, SortPriceDesc, SortBestSelling:
			q.Sort = SortKey(raw)
		default:
			return Query{}, fmt.Errorf("%w: unknown sort key %q", ErrInvalidQuery, raw)
		}
	}

	return q, nil
}

// Filter is the store-facing predicate derived from a Query. Stores add the
// implicit published-only condition themselves so no caller can forget it.
type Filter struct {
	Search        string
	Category      string
	PriceMin      int64
	PriceMax      int64
	MinRating     float64
	Availability  []Availability
	SellerQuality []SellerQuality
}

// Sort is the store-facing ordering plan.
type Sort struct {
	Key SortKey
}

// Page is the store-facing pagination window.
type Page struct {
	Offset int
	Limit  int
}

// BuildPlan translates a resolved Query into the store filter, sort and
// pagination plans. Pure and deterministic.
func BuildPlan(q Query) (Filter, Sort, Page) {
	filter := Filter{
		Search:        strings.ToLower(q.Search),
		Category:      q.Category,
		PriceMin:      q.PriceMin,
		PriceMax:      q.PriceMax,
		MinRating:     q.MinRating,
		Availability:  q.Availability,
		SellerQuality: q.SellerQuality,
	}
	return filter, Sort{Key: q.Sort}, Page{Offset: (q.Page - 1) * q.Limit, Limit: q.Limit}
}

// Pagination is the client-facing page metadata. Pages is exact because the
// total comes from the same predicate as the page slice.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if total > 0 && limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func parseIntParam(values url.Values, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidQuery, key)
	}
	return parsed, nil
}

func parseInt64Param(values url.Values, key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidQuery, key)
	}
	return parsed, nil
}

func parseFloatParam(values url.Values, key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidQuery, key)
	}
	return parsed, nil
}

func parseAvailabilityParam(raw string) ([]Availability, error) {
	tokens := splitFacetTokens(raw)
	if len(tokens) == 0 {
		return nil, nil
	}

	facets := make([]Availability, 0, len(tokens))
	for _, token := range tokens {
		switch Availability(token) {
		case AvailabilityInStock, AvailabilityLowStock, AvailabilityOutOfStock:
			facets = append(facets, Availability(token))
		default:
			return nil, fmt.Errorf("%w: unknown availability facet %q", ErrInvalidQuery, token)
		}
	}
	return facets, nil
}

func parseSellerQualityParam(raw string) ([]SellerQuality, error) {
	tokens := splitFacetTokens(raw)
	if len(tokens) == 0 {
		return nil, nil
	}

	facets := make([]SellerQuality, 0, len(tokens))
	for _, token := range tokens {
		switch SellerQuality(token) {
		case SellerQualityVerified, SellerQualityTopRated, SellerQualityNewSeller:
			facets = append(facets, SellerQuality(token))
		default:
			return nil, fmt.Errorf("%w: unknown seller facet %q", ErrInvalidQuery, token)
		}
	}
	return facets, nil
}

func splitFacetTokens(raw string) []string {
	tokens := make([]string, 0, 3)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		if _, exists := seen[token]; exists {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}
