package router

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oakmart/storefront-api/internal/catalog"
)

type listResponse struct {
	Success    bool                  `json:"success"`
	Products   []catalog.ProductView `json:"products"`
	Pagination catalog.Pagination    `json:"pagination"`
}

// handleProductList serves the buyer listing. Malformed query parameters are
// a client error; store failures are absorbed upstream and still answer 200
// with an empty page.
func (a *api) handleProductList(w http.ResponseWriter, r *http.Request) {
	q, err := catalog.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := a.catalog.List(r.Context(), q)
	writeJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Products:   result.Products,
		Pagination: result.Pagination,
	})
}

func (a *api) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	view, exists, err := a.catalog.GetPublished(r.Context(), productID)
	if errors.Is(err, catalog.ErrStoreUnavailable) {
		writeError(w, http.StatusBadGateway, "store unavailable")
		return
	}
	if err != nil || !exists {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"product": view})
}

func (a *api) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": a.catalog.ListCategories(),
	})
}
