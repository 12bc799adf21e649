package items

import (
	"fmt"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Provenance tells where an item view came from.
type Provenance string

const (
	// ProvenancePersisted means the items were stored explicitly against the transaction.
	ProvenancePersisted Provenance = "persisted"
	// ProvenanceDerived means the items were synthesized from the description at read time.
	ProvenanceDerived Provenance = "derived"
)

// ItemView is the uniform, display-ready shape of an item.
type ItemView struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Formatted string  `json:"formatted"`
}

// ItemList is the item breakdown of one transaction. All views share one provenance.
type ItemList struct {
	Provenance Provenance
	Items      []ItemView
}

// Count is the transaction's item_count.
func (l ItemList) Count() int {
	return len(l.Items)
}

// Materialize builds the item view for a transaction. Persisted items always
// win; the description is only tokenized when none are stored.
func Materialize(tx domain.Transaction, persisted []domain.Item) ItemList {
	if len(persisted) > 0 {
		return fromPersisted(persisted)
	}
	return fromDescription(tx.Description)
}

func fromPersisted(persisted []domain.Item) ItemList {
	views := make([]ItemView, 0, len(persisted))
	for _, it := range persisted {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		price := it.UnitPrice
		if price < 0 {
			price = 0
		}
		views = append(views, ItemView{
			Name:      it.Name,
			Quantity:  qty,
			UnitPrice: price,
			Formatted: formatLabel(it.Name, qty),
		})
	}
	return ItemList{Provenance: ProvenancePersisted, Items: views}
}

func fromDescription(description string) ItemList {
	names := ExtractItems(description)
	views := make([]ItemView, 0, len(names))
	for _, name := range names {
		views = append(views, ItemView{
			Name:      name,
			Quantity:  1,
			UnitPrice: 0,
			Formatted: name,
		})
	}
	return ItemList{Provenance: ProvenanceDerived, Items: views}
}

func formatLabel(name string, quantity int) string {
	if quantity > 1 {
		return fmt.Sprintf("%s (x%d)", name, quantity)
	}
	return name
}
