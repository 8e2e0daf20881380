package router

import (
	"net/http"
	"strings"

	"github.com/oakmart/storefront-api/internal/auth"
)

// resolveIdentity binds the authenticated principal to request context. It
// never rejects: requests without a valid access token proceed anonymously
// and the authorization gate decides what anonymous principals may reach.
//
// The identity is rebuilt from the stored user record on every request, so a
// flag or tier change applies to the very next request with an old token.
func (a *api) resolveIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := bearerToken(header)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.tokens.ParseAndValidate(token, auth.TokenTypeAccess)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, exists := a.users.GetUserByID(claims.UserID)
		if !exists && claims.Email != "" {
			// Valid token for an unknown subject: provision the principal
			// from the token claims instead of failing the request.
			provisioned, provisionErr := a.users.EnsureUser(claims.Email, claims.DisplayName, "")
			if provisionErr != nil {
				next.ServeHTTP(w, r)
				return
			}
			user = provisioned
			exists = true
		}
		if !exists {
			next.ServeHTTP(w, r)
			return
		}

		identity := auth.Identity{
			UserID:         user.ID,
			Email:          user.Email,
			Role:           user.Role,
			IsSuperuser:    user.IsSuperuser,
			SuperuserLevel: user.SuperuserLevel,
			SessionID:      claims.SessionID,
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}
