package services

import (
	"testing"
	"time"

	"price-scout/models"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func TestAssemblerSortsStablyByPrice(t *testing.T) {
	a := NewAssembler(fixedClock)
	in := []*models.Listing{
		listing("first-200", 200, "https://shop.example/1"),
		listing("first-100", 100, "https://shop.example/2"),
		listing("second-200", 200, "https://shop.example/3"),
		listing("only-50", 50, "https://shop.example/4"),
		listing("second-100", 100, "https://shop.example/5"),
		listing("third-200", 200, "https://shop.example/6"),
	}

	r := a.Assemble("keyboard", in)

	want := []string{"only-50", "first-100", "second-100", "first-200", "second-200", "third-200"}
	if len(r.Products) != len(want) {
		t.Fatalf("products: got %d, want %d", len(r.Products), len(want))
	}
	for i, name := range want {
		if r.Products[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, r.Products[i].Name, name)
		}
	}
	for i := 0; i+1 < len(r.Products); i++ {
		if r.Products[i].Price > r.Products[i+1].Price {
			t.Errorf("products not sorted at %d: %d > %d", i, r.Products[i].Price, r.Products[i+1].Price)
		}
	}

	if r.Cheapest != r.Products[0] {
		t.Error("cheapest must be the same pointer as products[0]")
	}
	if !r.FetchedAt.Equal(fixedTime) {
		t.Errorf("fetchedAt: got %v, want %v", r.FetchedAt, fixedTime)
	}
	if r.ID == "" || r.Query != "keyboard" {
		t.Errorf("unexpected id/query: %q / %q", r.ID, r.Query)
	}

	if in[0].Name != "first-200" {
		t.Error("assembler must not reorder its input")
	}
}

func TestAssemblerEmptyInput(t *testing.T) {
	r := NewAssembler(fixedClock).Assemble("keyboard", nil)
	if r.Products == nil {
		t.Error("products must be an empty slice, not nil")
	}
	if len(r.Products) != 0 {
		t.Errorf("products: got %d, want 0", len(r.Products))
	}
	if r.Cheapest != nil {
		t.Error("cheapest must be absent for an empty report")
	}
}

func TestAssemblerIDsAreUnique(t *testing.T) {
	a := NewAssembler(nil)
	r1 := a.Assemble("q", nil)
	r2 := a.Assemble("q", nil)
	if r1.ID == r2.ID {
		t.Errorf("expected distinct report ids, got %q twice", r1.ID)
	}
	if r1.FetchedAt.IsZero() {
		t.Error("default clock should stamp the report")
	}
}
