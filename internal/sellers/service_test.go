package sellers

import "testing"

func TestRegisterAndLookup(t *testing.T) {
	service := NewService()

	seller, err := service.Register("usr_1", "  North-Supply ", "North Supply Co")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if seller.Slug != "north-supply" {
		t.Fatalf("expected normalized slug, got %q", seller.Slug)
	}
	if seller.Verified || seller.RatingAverage != 0 {
		t.Fatalf("new sellers start unverified and unrated, got %+v", seller)
	}

	if _, err := service.Register("usr_1", "another", "Another"); err != ErrOwnerAlreadySeller {
		t.Fatalf("expected ErrOwnerAlreadySeller, got %v", err)
	}
	if _, err := service.Register("usr_2", "NORTH-SUPPLY", "Copycat"); err != ErrSlugInUse {
		t.Fatalf("expected ErrSlugInUse, got %v", err)
	}
	if _, err := service.Register("usr_2", "   ", "Blank"); err != ErrSlugInUse {
		t.Fatalf("expected ErrSlugInUse for empty slug, got %v", err)
	}

	byOwner, exists := service.GetByOwner("usr_1")
	if !exists || byOwner.ID != seller.ID {
		t.Fatalf("GetByOwner() = %+v, %v", byOwner, exists)
	}
	byID, exists := service.GetByID(seller.ID)
	if !exists || byID.Slug != "north-supply" {
		t.Fatalf("GetByID() = %+v, %v", byID, exists)
	}
}

func TestVerificationAndRating(t *testing.T) {
	service := NewService()
	seller, _ := service.Register("usr_1", "shop", "Shop")

	verified, err := service.SetVerified(seller.ID, true)
	if err != nil {
		t.Fatalf("SetVerified() error = %v", err)
	}
	if !verified.Verified {
		t.Fatal("expected verified seller")
	}

	rated, err := service.SetRating(seller.ID, 4.6)
	if err != nil {
		t.Fatalf("SetRating() error = %v", err)
	}
	if rated.RatingAverage != 4.6 {
		t.Fatalf("expected rating 4.6, got %f", rated.RatingAverage)
	}

	if _, err := service.SetRating(seller.ID, 5.5); err != ErrInvalidRating {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if _, err := service.SetVerified("slr_missing", true); err != ErrSellerNotFound {
		t.Fatalf("expected ErrSellerNotFound, got %v", err)
	}
}

func TestListVerifiedOnly(t *testing.T) {
	service := NewService()
	first, _ := service.Register("usr_1", "one", "One")
	_, _ = service.Register("usr_2", "two", "Two")
	_, _ = service.SetVerified(first.ID, true)

	all := service.List(false)
	if len(all) != 2 {
		t.Fatalf("expected 2 sellers, got %d", len(all))
	}
	verified := service.List(true)
	if len(verified) != 1 || verified[0].ID != first.ID {
		t.Fatalf("expected only the verified seller, got %+v", verified)
	}
	if service.Count() != 2 {
		t.Fatalf("expected count 2, got %d", service.Count())
	}
}
