// Package policy classifies request paths into authorization tiers and
// decides whether a principal may proceed. Both halves are pure functions so
// the gate can be tested without any HTTP machinery; the router applies them
// as a single global middleware.
package policy

import "strings"

// Class is the authorization tier a path belongs to.
type Class string

const (
	ClassPublic            Class = "public"
	ClassAuthRequired      Class = "auth_required"
	ClassSellerRequired    Class = "seller_required"
	ClassSuperuserRequired Class = "superuser_required"
	ClassCEORequired       Class = "ceo_required"
	ClassDisabled          Class = "disabled"
)

func (c Class) String() string {
	return string(c)
}

type prefixRule struct {
	prefix string
	class  Class
}

// Rules are prefix-matched; the longest matching prefix wins, except that a
// disabled prefix always wins. Disabled prefixes are a hard kill-switch for
// retired endpoints and must not be reachable by any principal.
var prefixRules = []prefixRule{
	{"/api/make-me-ceo", ClassDisabled},
	{"/api/db-direct", ClassDisabled},

	{"/api/ceo", ClassCEORequired},
	{"/ceo", ClassCEORequired},
	{"/api/superuser", ClassSuperuserRequired},
	{"/superuser", ClassSuperuserRequired},
	{"/api/seller", ClassSellerRequired},
	{"/seller", ClassSellerRequired},

	{"/api/auth", ClassPublic},
	{"/auth", ClassPublic},
	{"/api/products", ClassPublic},
	{"/api/categories", ClassPublic},
	{"/products", ClassPublic},
	{"/categories", ClassPublic},
	{"/health", ClassPublic},
	{"/metrics", ClassPublic},

	// API routes not on the public allowlist require authentication;
	// everything else (server-rendered pages) defaults to public.
	{"/api", ClassAuthRequired},
	{"/", ClassPublic},
}

// Classify maps a request path to exactly one policy class. It is total:
// every input yields a class.
func Classify(path string) Class {
	path = normalizePath(path)

	best := ClassPublic
	bestLen := -1
	for _, rule := range prefixRules {
		if !strings.HasPrefix(path, rule.prefix) {
			continue
		}
		if rule.class == ClassDisabled {
			return ClassDisabled
		}
		if len(rule.prefix) > bestLen {
			best = rule.class
			bestLen = len(rule.prefix)
		}
	}
	return best
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
