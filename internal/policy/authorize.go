package policy

import "github.com/oakmart/storefront-api/internal/auth"

// Decision is the gate's verdict for one request.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionAuthRequired
	DecisionForbidden
	DecisionDisabled
)

// Authorize decides whether a principal may proceed under a policy class.
// principal is nil for anonymous requests.
//
// Disabled paths are denied unconditionally, before any principal check, so
// the kill-switch cannot be bypassed by any role including CEO.
func Authorize(class Class, principal *auth.Identity) Decision {
	switch class {
	case ClassDisabled:
		return DecisionDisabled
	case ClassPublic:
		return DecisionAllow
	}

	if principal == nil {
		return DecisionAuthRequired
	}

	switch class {
	case ClassAuthRequired:
		return DecisionAllow
	case ClassSellerRequired:
		if principal.Role == auth.RoleSeller || principal.IsSuperuser {
			return DecisionAllow
		}
		return DecisionForbidden
	case ClassSuperuserRequired:
		if principal.IsSuperuser {
			return DecisionAllow
		}
		return DecisionForbidden
	case ClassCEORequired:
		if principal.IsSuperuser && principal.SuperuserLevel != nil && *principal.SuperuserLevel == auth.SuperuserLevelCEO {
			return DecisionAllow
		}
		return DecisionForbidden
	default:
		return DecisionForbidden
	}
}
