package items

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
)

func TestMaterialize_PersistedTakesPrecedence(t *testing.T) {
	tx := domain.Transaction{
		ID:          7,
		Date:        civil.Date{Year: 2024, Month: 3, Day: 1},
		Amount:      120,
		Description: "Grocery (Milk, Eggs, Bread)",
	}
	persisted := []domain.Item{
		{ID: 1, TransactionID: 7, Name: "Rice", Quantity: 2, UnitPrice: 45},
		{ID: 2, TransactionID: 7, Name: "Fish Sauce", Quantity: 1, UnitPrice: 30},
	}

	got := Materialize(tx, persisted)

	if got.Provenance != ProvenancePersisted {
		t.Errorf("Provenance = %q, want %q", got.Provenance, ProvenancePersisted)
	}
	if got.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", got.Count())
	}

	want := []ItemView{
		{Name: "Rice", Quantity: 2, UnitPrice: 45, Formatted: "Rice (x2)"},
		{Name: "Fish Sauce", Quantity: 1, UnitPrice: 30, Formatted: "Fish Sauce"},
	}
	for i, w := range want {
		if got.Items[i] != w {
			t.Errorf("Items[%d] = %+v, want %+v", i, got.Items[i], w)
		}
	}
}

func TestMaterialize_DerivedFromDescription(t *testing.T) {
	tx := domain.Transaction{Description: "Milk, Eggs"}

	got := Materialize(tx, nil)

	if got.Provenance != ProvenanceDerived {
		t.Errorf("Provenance = %q, want %q", got.Provenance, ProvenanceDerived)
	}
	if got.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", got.Count())
	}
	for _, it := range got.Items {
		if it.Quantity != 1 || it.UnitPrice != 0 || it.Formatted != it.Name {
			t.Errorf("derived item %+v should have quantity 1, price 0 and label equal to name", it)
		}
	}
}

func TestMaterialize_NoItems(t *testing.T) {
	got := Materialize(domain.Transaction{Description: "Coffee"}, []domain.Item{})

	if got.Count() != 0 {
		t.Errorf("Count() = %d, want 0", got.Count())
	}
	if got.Items == nil {
		t.Error("Items should be an empty slice, not nil")
	}
	if got.Provenance != ProvenanceDerived {
		t.Errorf("Provenance = %q, want %q", got.Provenance, ProvenanceDerived)
	}
}

func TestMaterialize_UnknownQuantityDefaultsToOne(t *testing.T) {
	got := Materialize(domain.Transaction{}, []domain.Item{{Name: "Soap", Quantity: 0, UnitPrice: -3}})

	if got.Items[0].Quantity != 1 {
		t.Errorf("Quantity = %d, want 1", got.Items[0].Quantity)
	}
	if got.Items[0].UnitPrice != 0 {
		t.Errorf("UnitPrice = %v, want 0", got.Items[0].UnitPrice)
	}
	if got.Items[0].Formatted != "Soap" {
		t.Errorf("Formatted = %q, want %q", got.Items[0].Formatted, "Soap")
	}
}
