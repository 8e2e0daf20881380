package auditlog

import "testing"

func TestRecordAndListNewestFirst(t *testing.T) {
	service := NewService()

	service.Record("usr_a", "moderation.publish", "prd_1", "")
	service.Record("usr_a", "moderation.reject", "prd_2", "missing photos")
	service.Record("usr_b", "superuser_tier.update", "usr_c", "true")

	entries := service.List(10, 0)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Action != "superuser_tier.update" || entries[2].Action != "moderation.publish" {
		t.Fatalf("expected newest-first ordering, got %+v", entries)
	}
	if entries[1].Detail != "missing photos" {
		t.Fatalf("expected detail preserved, got %+v", entries[1])
	}
	if service.Count() != 3 {
		t.Fatalf("expected count 3, got %d", service.Count())
	}
}

func TestListWindowing(t *testing.T) {
	service := NewService()
	for i := 0; i < 5; i++ {
		service.Record("usr_a", "action", "target", "")
	}

	if got := len(service.List(2, 0)); got != 2 {
		t.Fatalf("expected limit applied, got %d", got)
	}
	if got := len(service.List(10, 3)); got != 2 {
		t.Fatalf("expected offset applied, got %d", got)
	}
	if got := len(service.List(10, 99)); got != 0 {
		t.Fatalf("expected empty slice past the end, got %d", got)
	}
	// Limit falls back to a sane default.
	if got := len(service.List(0, 0)); got != 5 {
		t.Fatalf("expected default limit to cover entries, got %d", got)
	}
}
