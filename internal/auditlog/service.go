package auditlog

import (
	"sync"
	"time"

	"github.com/oakmart/storefront-api/internal/platform/identifier"
)

// Entry records one privileged mutation for later review.
type Entry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Service is an in-memory append-only audit trail.
type Service struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewService() *Service {
	return &Service{entries: make([]Entry, 0)}
}

func (s *Service) Record(actorID, action, target, detail string) Entry {
	entry := Entry{
		ID:        identifier.New("aud"),
		ActorID:   actorID,
		Action:    action,
		Target:    target,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return entry
}

// List returns entries newest first.
func (s *Service) List(limit, offset int) []Entry {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.entries)
	if offset >= total {
		return []Entry{}
	}

	items := make([]Entry, 0, limit)
	for i := total - 1 - offset; i >= 0 && len(items) < limit; i-- {
		items = append(items, s.entries[i])
	}
	return items
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
