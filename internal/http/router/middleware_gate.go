package router

import (
	"net/http"

	"github.com/oakmart/storefront-api/internal/auth"
	"github.com/oakmart/storefront-api/internal/platform/metrics"
	"github.com/oakmart/storefront-api/internal/policy"
)

// gate applies the route authorization policy to every request before any
// handler runs. Disabled paths answer 403 for every principal; the response
// never reveals whether a handler exists behind the prefix.
func (a *api) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := policy.Classify(r.URL.Path)

		var principal *auth.Identity
		if identity, ok := auth.IdentityFromContext(r.Context()); ok {
			principal = &identity
		}

		switch policy.Authorize(class, principal) {
		case policy.DecisionAllow:
			next.ServeHTTP(w, r)
		case policy.DecisionAuthRequired:
			metrics.AuthorizationDenials.WithLabelValues(class.String()).Inc()
			writeError(w, http.StatusUnauthorized, "authentication required")
		case policy.DecisionDisabled:
			metrics.AuthorizationDenials.WithLabelValues(class.String()).Inc()
			writeError(w, http.StatusForbidden, "endpoint disabled")
		default:
			metrics.AuthorizationDenials.WithLabelValues(class.String()).Inc()
			writeError(w, http.StatusForbidden, "forbidden")
		}
	})
}
