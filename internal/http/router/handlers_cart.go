package router

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oakmart/storefront-api/internal/auth"
	"github.com/oakmart/storefront-api/internal/cart"
	"github.com/oakmart/storefront-api/internal/catalog"
)

type cartAddRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty" validate:"required,min=1"`
}

type cartQuantityRequest struct {
	Qty int `json:"qty"`
}

func (a *api) cartIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return auth.Identity{}, false
	}
	return identity, true
}

func (a *api) handleCartGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.cartIdentity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cart": a.carts.Get(identity.UserID)})
}

func (a *api) handleCartAddItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.cartIdentity(w, r)
	if !ok {
		return
	}

	var req cartAddRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Only live, published products may enter a cart.
	_, exists, err := a.catalog.GetPublished(r.Context(), req.ProductID)
	if errors.Is(err, catalog.ErrStoreUnavailable) {
		writeError(w, http.StatusBadGateway, "store unavailable")
		return
	}
	if err != nil || !exists {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	updated, err := a.carts.AddItem(identity.UserID, req.ProductID, req.Qty)
	if err != nil {
		a.writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"cart": updated})
}

func (a *api) handleCartUpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.cartIdentity(w, r)
	if !ok {
		return
	}

	var req cartQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := a.carts.SetQuantity(identity.UserID, chi.URLParam(r, "itemID"), req.Qty)
	if err != nil {
		a.writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cart": updated})
}

func (a *api) handleCartDeleteItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.cartIdentity(w, r)
	if !ok {
		return
	}

	updated, err := a.carts.RemoveItem(identity.UserID, chi.URLParam(r, "itemID"))
	if err != nil {
		a.writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cart": updated})
}

func (a *api) writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "quantity must be >= 1")
	case errors.Is(err, cart.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "cart item not found")
	default:
		writeError(w, http.StatusInternalServerError, "cart operation failed")
	}
}
