package auth

// Role identifies a principal's base role in the storefront.
type Role string

const (
	RoleBuyer     Role = "buyer"
	RoleSeller    Role = "seller"
	RoleAdmin     Role = "admin"
	RoleSuperuser Role = "superuser"
	RoleCEO       Role = "ceo"
)

// SuperuserLevel refines the superuser tier. CEO is the only defined level
// and implies every capability.
type SuperuserLevel string

const SuperuserLevelCEO SuperuserLevel = "ceo"

// Roles returns the known roles in stable order.
func Roles() []Role {
	return []Role{RoleBuyer, RoleSeller, RoleAdmin, RoleSuperuser, RoleCEO}
}

func (r Role) String() string {
	return string(r)
}

// CapabilityFlags are the stored per-principal permission bits. They are
// inert unless the principal's superuser bit is set.
type CapabilityFlags struct {
	CreateProducts  bool `json:"create_products"`
	ModerateContent bool `json:"moderate_content"`
	ViewAnalytics   bool `json:"view_analytics"`
	ManageUsers     bool `json:"manage_users"`
	FeatureProducts bool `json:"feature_products"`
}

// CapabilitySet is the derived permission set for one request. It is
// recomputed on every authorization decision and never persisted.
type CapabilitySet struct {
	CreateProducts  bool `json:"create_products"`
	ModerateContent bool `json:"moderate_content"`
	ViewAnalytics   bool `json:"view_analytics"`
	ManageUsers     bool `json:"manage_users"`
	FeatureProducts bool `json:"feature_products"`
}

// Derive computes the capability set for a principal.
//
// The superuser bit is the sole gating bit: without it every capability is
// false no matter what the stored flags say, so a leftover flag cannot grant
// privilege after demotion. The CEO level overrides individual flags.
func Derive(user User) CapabilitySet {
	if !user.IsSuperuser {
		return CapabilitySet{}
	}
	if user.SuperuserLevel != nil && *user.SuperuserLevel == SuperuserLevelCEO {
		return CapabilitySet{
			CreateProducts:  true,
			ModerateContent: true,
			ViewAnalytics:   true,
			ManageUsers:     true,
			FeatureProducts: true,
		}
	}
	return CapabilitySet{
		CreateProducts:  user.Flags.CreateProducts,
		ModerateContent: user.Flags.ModerateContent,
		ViewAnalytics:   user.Flags.ViewAnalytics,
		ManageUsers:     user.Flags.ManageUsers,
		FeatureProducts: user.Flags.FeatureProducts,
	}
}
