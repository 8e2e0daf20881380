package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oakmart/storefront-api/internal/platform/identifier"
	"github.com/oakmart/storefront-api/internal/platform/metrics"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidLevel       = errors.New("invalid superuser level")
)

// User is the stored principal record.
type User struct {
	ID             string
	Email          string
	DisplayName    string
	AvatarURL      string
	PasswordHash   string
	Role           Role
	IsSuperuser    bool
	SuperuserLevel *SuperuserLevel
	Flags          CapabilityFlags
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TierGrant is an email-keyed bootstrap assignment applied on registration.
type TierGrant struct {
	Role  Role
	Level *SuperuserLevel
	Flags CapabilityFlags
}

// Service provides principal storage, provisioning and privileged mutation.
// Email uniqueness is enforced under the service lock, which stands in for
// the store-level uniqueness constraint: a concurrent provisioning race
// resolves to "already exists, re-fetch".
type Service struct {
	mu              sync.RWMutex
	usersByID       map[string]User
	usersByEmail    map[string]string
	bootstrapGrants map[string]TierGrant
}

func NewService(bootstrapGrants map[string]TierGrant) *Service {
	normalized := make(map[string]TierGrant, len(bootstrapGrants))
	for email, grant := range bootstrapGrants {
		normalized[strings.ToLower(strings.TrimSpace(email))] = grant
	}

	return &Service{
		usersByID:       make(map[string]User),
		usersByEmail:    make(map[string]string),
		bootstrapGrants: normalized,
	}
}

// BuildBootstrapGrants parses comma-separated email lists into tier grants.
// CEO emails receive the CEO level; superuser emails receive every capability
// flag so an operator can act before the CEO refines them.
func BuildBootstrapGrants(ceoEmails, superuserEmails string) map[string]TierGrant {
	grants := make(map[string]TierGrant)

	allFlags := CapabilityFlags{
		CreateProducts:  true,
		ModerateContent: true,
		ViewAnalytics:   true,
		ManageUsers:     true,
		FeatureProducts: true,
	}

	for _, raw := range strings.Split(superuserEmails, ",") {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" {
			continue
		}
		grants[email] = TierGrant{Role: RoleSuperuser, Flags: allFlags}
	}

	ceoLevel := SuperuserLevelCEO
	for _, raw := range strings.Split(ceoEmails, ",") {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" {
			continue
		}
		grants[email] = TierGrant{Role: RoleCEO, Level: &ceoLevel}
	}

	return grants
}

func (s *Service) Register(email, plainPassword, displayName string) (User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return User{}, ErrInvalidCredentials
	}

	hash, err := HashPassword(plainPassword)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[normalized]; exists {
		return User{}, ErrEmailInUse
	}

	user := s.newUserLocked(normalized, displayName, "")
	user.PasswordHash = hash

	s.usersByID[user.ID] = user
	s.usersByEmail[normalized] = user.ID
	return user, nil
}

// EnsureUser provisions a principal for a validly authenticated identity that
// has no stored record yet. It is idempotent: when the email is already
// known the existing principal is returned unchanged.
func (s *Service) EnsureUser(email, displayName, avatarURL string) (User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return User{}, ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if userID, exists := s.usersByEmail[normalized]; exists {
		metrics.IdentityProvisionConflicts.Inc()
		return s.usersByID[userID], nil
	}

	user := s.newUserLocked(normalized, displayName, avatarURL)
	s.usersByID[user.ID] = user
	s.usersByEmail[normalized] = user.ID
	return user, nil
}

func (s *Service) newUserLocked(email, displayName, avatarURL string) User {
	now := time.Now().UTC()
	user := User{
		ID:          identifier.New("usr"),
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		AvatarURL:   strings.TrimSpace(avatarURL),
		Role:        RoleBuyer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if grant, exists := s.bootstrapGrants[email]; exists {
		user.Role = grant.Role
		user.IsSuperuser = true
		user.SuperuserLevel = grant.Level
		user.Flags = grant.Flags
	}

	return user
}

func (s *Service) Authenticate(email, plainPassword string) (User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	userID, exists := s.usersByEmail[normalized]
	if !exists {
		s.mu.RUnlock()
		return User{}, ErrInvalidCredentials
	}
	user := s.usersByID[userID]
	s.mu.RUnlock()

	if user.PasswordHash == "" || !VerifyPassword(user.PasswordHash, plainPassword) {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (s *Service) GetUserByID(userID string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, exists := s.usersByID[userID]
	return user, exists
}

func (s *Service) GetUserByEmail(email string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, exists := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !exists {
		return User{}, false
	}
	return s.usersByID[userID], true
}

// PromoteToSeller upgrades a buyer to the seller role. Superuser-tier users
// keep their role; the seller profile alone is enough for them.
func (s *Service) PromoteToSeller(userID string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByID[userID]
	if !exists {
		return User{}, ErrUserNotFound
	}

	if user.Role == RoleBuyer {
		user.Role = RoleSeller
		user.UpdatedAt = time.Now().UTC()
		s.usersByID[userID] = user
	}
	return user, nil
}

// SetCapabilityFlags replaces a principal's stored flags. Flags may be set
// on a non-superuser; they stay inert until the superuser bit is granted.
func (s *Service) SetCapabilityFlags(userID string, flags CapabilityFlags) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByID[userID]
	if !exists {
		return User{}, ErrUserNotFound
	}

	user.Flags = flags
	user.UpdatedAt = time.Now().UTC()
	s.usersByID[userID] = user
	return user, nil
}

// SetSuperuserTier grants or revokes the superuser bit and level.
func (s *Service) SetSuperuserTier(userID string, isSuperuser bool, level *SuperuserLevel) (User, error) {
	if level != nil && *level != SuperuserLevelCEO {
		return User{}, ErrInvalidLevel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByID[userID]
	if !exists {
		return User{}, ErrUserNotFound
	}

	user.IsSuperuser = isSuperuser
	if isSuperuser {
		user.SuperuserLevel = level
	} else {
		user.SuperuserLevel = nil
	}
	user.UpdatedAt = time.Now().UTC()
	s.usersByID[userID] = user
	return user, nil
}

func (s *Service) CountUsers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.usersByID)
}
