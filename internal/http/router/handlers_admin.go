package router

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oakmart/storefront-api/internal/auth"
	"github.com/oakmart/storefront-api/internal/catalog"
)

type permissionsResponse struct {
	User permissionsUserDTO `json:"user"`
}

type permissionsUserDTO struct {
	ID             string               `json:"id"`
	Email          string               `json:"email"`
	Role           auth.Role            `json:"role"`
	IsSuperuser    bool                 `json:"is_superuser"`
	SuperuserLevel *auth.SuperuserLevel `json:"superuser_level"`
	Permissions    auth.CapabilitySet   `json:"permissions"`
}

type capabilityFlagsRequest struct {
	CreateProducts  *bool `json:"create_products"`
	ModerateContent *bool `json:"moderate_content"`
	ViewAnalytics   *bool `json:"view_analytics"`
	ManageUsers     *bool `json:"manage_users"`
	FeatureProducts *bool `json:"feature_products"`
}

type moderationRequest struct {
	Decision string `json:"decision" validate:"required,oneof=publish reject"`
	Reason   string `json:"reason" validate:"max=500"`
}

type featureRequest struct {
	Featured bool `json:"featured"`
}

type superuserTierRequest struct {
	IsSuperuser bool    `json:"is_superuser"`
	Level       *string `json:"level"`
}

// handleAccountPermissions reports the caller's derived capability set. The
// set is computed from the stored record at request time, never from token
// claims, so it always reflects the latest grants.
func (a *api) handleAccountPermissions(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, exists := a.users.GetUserByID(identity.UserID)
	if !exists {
		writeError(w, http.StatusUnauthorized, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, permissionsResponse{User: permissionsUserDTO{
		ID:             user.ID,
		Email:          user.Email,
		Role:           user.Role,
		IsSuperuser:    user.IsSuperuser,
		SuperuserLevel: user.SuperuserLevel,
		Permissions:    auth.Derive(user),
	}})
}

// requireCapability re-derives the caller's capability set and enforces one
// capability. The route gate has already established the superuser tier;
// this narrows to the specific grant.
func (a *api) requireCapability(w http.ResponseWriter, r *http.Request, pick func(auth.CapabilitySet) bool) (auth.User, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return auth.User{}, false
	}

	user, exists := a.users.GetUserByID(identity.UserID)
	if !exists {
		writeError(w, http.StatusUnauthorized, "user not found")
		return auth.User{}, false
	}

	if !pick(auth.Derive(user)) {
		writeError(w, http.StatusForbidden, "forbidden")
		return auth.User{}, false
	}
	return user, true
}

func (a *api) handleSuperuserUpdateFlags(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.requireCapability(w, r, func(c auth.CapabilitySet) bool { return c.ManageUsers })
	if !ok {
		return
	}

	var req capabilityFlagsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	targetID := chi.URLParam(r, "userID")
	target, exists := a.users.GetUserByID(targetID)
	if !exists {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	flags := target.Flags
	if req.CreateProducts != nil {
		flags.CreateProducts = *req.CreateProducts
	}
	if req.ModerateContent != nil {
		flags.ModerateContent = *req.ModerateContent
	}
	if req.ViewAnalytics != nil {
		flags.ViewAnalytics = *req.ViewAnalytics
	}
	if req.ManageUsers != nil {
		flags.ManageUsers = *req.ManageUsers
	}
	if req.FeatureProducts != nil {
		flags.FeatureProducts = *req.FeatureProducts
	}

	updated, err := a.users.SetCapabilityFlags(targetID, flags)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	a.audit.Record(actor.ID, "capability_flags.update", targetID, "")
	writeJSON(w, http.StatusOK, permissionsResponse{User: permissionsUserDTO{
		ID:             updated.ID,
		Email:          updated.Email,
		Role:           updated.Role,
		IsSuperuser:    updated.IsSuperuser,
		SuperuserLevel: updated.SuperuserLevel,
		Permissions:    auth.Derive(updated),
	}})
}

func (a *api) handleSuperuserModerateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.requireCapability(w, r, func(c auth.CapabilitySet) bool { return c.ModerateContent })
	if !ok {
		return
	}

	var req moderationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID := chi.URLParam(r, "productID")
	product, err := a.catalog.Review(r.Context(), productID, actor.ID, catalog.ReviewDecision(req.Decision), req.Reason)
	if err != nil {
		a.writeCatalogError(w, err)
		return
	}

	a.audit.Record(actor.ID, "moderation."+req.Decision, productID, req.Reason)
	writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (a *api) handleSuperuserFeatureProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.requireCapability(w, r, func(c auth.CapabilitySet) bool { return c.FeatureProducts })
	if !ok {
		return
	}

	var req featureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID := chi.URLParam(r, "productID")
	product, err := a.catalog.SetFeatured(r.Context(), productID, req.Featured)
	if err != nil {
		a.writeCatalogError(w, err)
		return
	}

	a.audit.Record(actor.ID, "product.feature", productID, strconv.FormatBool(req.Featured))
	writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (a *api) handleSuperuserAnalytics(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireCapability(w, r, func(c auth.CapabilitySet) bool { return c.ViewAnalytics }); !ok {
		return
	}

	publishedCount, err := a.catalog.PublishedCount(r.Context())
	if err != nil {
		a.writeCatalogError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"analytics": map[string]int{
			"users":              a.users.CountUsers(),
			"sellers":            a.sellers.Count(),
			"published_products": publishedCount,
			"audit_entries":      a.audit.Count(),
		},
	})
}

func (a *api) handleSuperuserAuditLog(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireCapability(w, r, func(c auth.CapabilitySet) bool { return c.ViewAnalytics }); !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": a.audit.List(limit, offset),
	})
}

// handleCEOUpdateSuperuser grants or revokes the superuser tier. Only the
// CEO policy class reaches this handler.
func (a *api) handleCEOUpdateSuperuser(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req superuserTierRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var level *auth.SuperuserLevel
	if req.Level != nil {
		parsed := auth.SuperuserLevel(*req.Level)
		if parsed != auth.SuperuserLevelCEO {
			writeError(w, http.StatusBadRequest, "invalid superuser level")
			return
		}
		level = &parsed
	}

	targetID := chi.URLParam(r, "userID")
	updated, err := a.users.SetSuperuserTier(targetID, req.IsSuperuser, level)
	if err != nil {
		switch err {
		case auth.ErrInvalidLevel:
			writeError(w, http.StatusBadRequest, "invalid superuser level")
		case auth.ErrUserNotFound:
			writeError(w, http.StatusNotFound, "user not found")
		default:
			writeError(w, http.StatusInternalServerError, "tier update failed")
		}
		return
	}

	a.audit.Record(identity.UserID, "superuser_tier.update", targetID, strconv.FormatBool(req.IsSuperuser))
	writeJSON(w, http.StatusOK, permissionsResponse{User: permissionsUserDTO{
		ID:             updated.ID,
		Email:          updated.Email,
		Role:           updated.Role,
		IsSuperuser:    updated.IsSuperuser,
		SuperuserLevel: updated.SuperuserLevel,
		Permissions:    auth.Derive(updated),
	}})
}
