package router

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oakmart/storefront-api/internal/auth"
	"github.com/oakmart/storefront-api/internal/catalog"
	"github.com/oakmart/storefront-api/internal/sellers"
)

type sellerRegisterRequest struct {
	Slug        string `json:"slug" validate:"required,min=2,max=60"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=120"`
}

type imagePayload struct {
	URL      string `json:"url" validate:"required,url"`
	AltText  string `json:"alt_text" validate:"max=200"`
	Position int    `json:"position" validate:"gte=0"`
}

type createProductRequest struct {
	Name         string         `json:"name" validate:"required,min=2,max=200"`
	Description  string         `json:"description" validate:"max=5000"`
	CategorySlug string         `json:"category_slug" validate:"max=60"`
	PriceCents   int64          `json:"price_cents" validate:"required,gt=0"`
	Currency     string         `json:"currency" validate:"required,len=3"`
	StockQty     int32          `json:"stock_qty" validate:"gte=0"`
	Images       []imagePayload `json:"images" validate:"max=10,dive"`
}

type updateProductRequest struct {
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	CategorySlug *string         `json:"category_slug"`
	PriceCents   *int64          `json:"price_cents"`
	Currency     *string         `json:"currency"`
	StockQty     *int32          `json:"stock_qty"`
	Images       *[]imagePayload `json:"images"`
}

// handleSellerRegister creates a seller profile for the caller and promotes a
// buyer to the seller role. It lives on the account surface so a buyer can
// reach it before holding the seller role.
func (a *api) handleSellerRegister(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req sellerRegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	seller, err := a.sellers.Register(identity.UserID, req.Slug, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, sellers.ErrOwnerAlreadySeller):
			writeError(w, http.StatusConflict, "seller profile already exists")
		case errors.Is(err, sellers.ErrSlugInUse):
			writeError(w, http.StatusConflict, "seller slug already in use")
		default:
			writeError(w, http.StatusBadRequest, "seller registration failed")
		}
		return
	}

	user, err := a.users.PromoteToSeller(identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "role promotion failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"seller": seller,
		"role":   user.Role,
	})
}

// callerSeller resolves the seller profile behind the authenticated caller.
func (a *api) callerSeller(w http.ResponseWriter, r *http.Request) (sellers.Seller, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return sellers.Seller{}, false
	}

	seller, exists := a.sellers.GetByOwner(identity.UserID)
	if !exists {
		writeError(w, http.StatusForbidden, "seller profile required")
		return sellers.Seller{}, false
	}
	return seller, true
}

func (a *api) handleSellerListProducts(w http.ResponseWriter, r *http.Request) {
	seller, ok := a.callerSeller(w, r)
	if !ok {
		return
	}

	items, err := a.catalog.ListSellerProducts(r.Context(), seller.ID)
	if err != nil {
		a.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": items})
}

func (a *api) handleSellerCreateProduct(w http.ResponseWriter, r *http.Request) {
	seller, ok := a.callerSeller(w, r)
	if !ok {
		return
	}

	var req createProductRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := a.catalog.CreateProduct(r.Context(), catalog.CreateProductInput{
		SellerID:     seller.ID,
		Name:         req.Name,
		Description:  req.Description,
		CategorySlug: req.CategorySlug,
		PriceCents:   req.PriceCents,
		Currency:     req.Currency,
		StockQty:     req.StockQty,
		Images:       toImages(req.Images),
	})
	if err != nil {
		a.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"product": product})
}

func (a *api) handleSellerUpdateProduct(w http.ResponseWriter, r *http.Request) {
	seller, ok := a.callerSeller(w, r)
	if !ok {
		return
	}

	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := catalog.UpdateProductInput{
		Name:         req.Name,
		Description:  req.Description,
		CategorySlug: req.CategorySlug,
		PriceCents:   req.PriceCents,
		Currency:     req.Currency,
		StockQty:     req.StockQty,
	}
	if req.Images != nil {
		images := toImages(*req.Images)
		input.Images = &images
	}

	product, err := a.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), seller.ID, input)
	if err != nil {
		a.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (a *api) handleSellerDeleteProduct(w http.ResponseWriter, r *http.Request) {
	seller, ok := a.callerSeller(w, r)
	if !ok {
		return
	}

	if err := a.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "productID"), seller.ID); err != nil {
		a.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *api) handleSellerSubmitProduct(w http.ResponseWriter, r *http.Request) {
	seller, ok := a.callerSeller(w, r)
	if !ok {
		return
	}

	product, err := a.catalog.SubmitForReview(r.Context(), chi.URLParam(r, "productID"), seller.ID)
	if err != nil {
		a.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (a *api) writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, catalog.ErrUnauthorizedAccess):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, catalog.ErrInvalidProductInput):
		writeError(w, http.StatusBadRequest, "invalid product input")
	case errors.Is(err, catalog.ErrInvalidDecision):
		writeError(w, http.StatusBadRequest, "invalid review decision")
	case errors.Is(err, catalog.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid status transition")
	case errors.Is(err, catalog.ErrStoreUnavailable):
		writeError(w, http.StatusBadGateway, "store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "catalog operation failed")
	}
}

func toImages(payloads []imagePayload) []catalog.Image {
	images := make([]catalog.Image, 0, len(payloads))
	for _, payload := range payloads {
		images = append(images, catalog.Image{
			URL:      payload.URL,
			AltText:  payload.AltText,
			Position: payload.Position,
		})
	}
	return images
}
