// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthorizationDenials counts gate denials by policy class.
	AuthorizationDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "authz_denials_total",
		Help:      "Requests denied by the route authorization gate.",
	}, []string{"class"})

	// CatalogStoreFailures counts product store errors absorbed by the
	// listing degradation path.
	CatalogStoreFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "catalog_store_failures_total",
		Help:      "Product store failures swallowed at the listing boundary.",
	})

	// IdentityProvisionConflicts counts provisioning attempts that found an
	// existing principal for the same email.
	IdentityProvisionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "identity_provision_conflicts_total",
		Help:      "Identity provisioning calls resolved against an existing principal.",
	})
)
