package cart

import "testing"

func TestAddItemUpserts(t *testing.T) {
	service := NewService()

	first, err := service.AddItem("usr_1", "prd_a", 2)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if len(first.Items) != 1 || first.ItemCount != 2 {
		t.Fatalf("unexpected cart %+v", first)
	}

	second, err := service.AddItem("usr_1", "prd_a", 3)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if len(second.Items) != 1 {
		t.Fatalf("expected one collapsed line, got %d", len(second.Items))
	}
	if second.Items[0].Qty != 5 || second.ItemCount != 5 {
		t.Fatalf("expected merged quantity 5, got %+v", second.Items[0])
	}

	if _, err := service.AddItem("usr_1", "prd_b", 0); err != ErrInvalidQuantity {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestSetQuantity(t *testing.T) {
	service := NewService()
	cart, _ := service.AddItem("usr_1", "prd_a", 2)
	itemID := cart.Items[0].ID

	updated, err := service.SetQuantity("usr_1", itemID, 7)
	if err != nil {
		t.Fatalf("SetQuantity() error = %v", err)
	}
	if updated.Items[0].Qty != 7 {
		t.Fatalf("expected qty 7, got %d", updated.Items[0].Qty)
	}

	if _, err := service.SetQuantity("usr_1", itemID, 0); err != ErrInvalidQuantity {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := service.SetQuantity("usr_1", itemID, -3); err != ErrInvalidQuantity {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := service.SetQuantity("usr_1", "cit_missing", 1); err != ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestCrossPrincipalDenialIsIndistinguishable(t *testing.T) {
	service := NewService()
	cart, _ := service.AddItem("usr_owner", "prd_a", 2)
	itemID := cart.Items[0].ID

	otherErr := func() error {
		_, err := service.SetQuantity("usr_other", itemID, 5)
		return err
	}()
	missingErr := func() error {
		_, err := service.SetQuantity("usr_other", "cit_missing", 5)
		return err
	}()

	// A foreign item and a nonexistent item must produce the same error so
	// item ids cannot be probed.
	if otherErr != ErrItemNotFound || missingErr != ErrItemNotFound {
		t.Fatalf("expected identical ErrItemNotFound, got %v and %v", otherErr, missingErr)
	}

	if _, err := service.RemoveItem("usr_other", itemID); err != ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound on foreign remove, got %v", err)
	}

	// The owner's item is untouched.
	owned := service.Get("usr_owner")
	if len(owned.Items) != 1 || owned.Items[0].Qty != 2 {
		t.Fatalf("owner cart mutated: %+v", owned)
	}
}

func TestRemoveItem(t *testing.T) {
	service := NewService()
	cart, _ := service.AddItem("usr_1", "prd_a", 1)
	itemID := cart.Items[0].ID

	updated, err := service.RemoveItem("usr_1", itemID)
	if err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if len(updated.Items) != 0 || updated.ItemCount != 0 {
		t.Fatalf("expected empty cart, got %+v", updated)
	}

	// Removing twice fails like any missing item.
	if _, err := service.RemoveItem("usr_1", itemID); err != ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestGetCreatesEmptyCart(t *testing.T) {
	service := NewService()
	cart := service.Get("usr_new")
	if cart.ID == "" || len(cart.Items) != 0 || cart.ItemCount != 0 {
		t.Fatalf("unexpected empty cart %+v", cart)
	}
}
