package quotes

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devisflow/devisflow/internal/money"
	"github.com/devisflow/devisflow/internal/platform/httpx"
)

var defaultQuantity = decimal.NewFromInt(1)

// ReconcileItems merges incoming patches into the existing items of a quote.
//
// A patch whose id matches an existing item updates it in place, only for the
// fields it carries. Any other patch creates a new item with defaults for the
// missing fields. Existing items no patch matched are removed and their ids
// returned. Output order follows the patches; display order is Item.Order.
func ReconcileItems(quoteID uuid.UUID, existing []Item, incoming []ItemPatch, newID func() uuid.UUID) ([]Item, []uuid.UUID, error) {
	byID := make(map[uuid.UUID]Item, len(existing))
	for _, it := range existing {
		byID[it.ID] = it
	}

	result := make([]Item, 0, len(incoming))
	for i, patch := range incoming {
		item, ok := matchExisting(byID, patch.ID)
		if ok {
			delete(byID, item.ID)
		} else {
			item = Item{
				ID:        newID(),
				QuoteID:   quoteID,
				Quantity:  defaultQuantity,
				UnitPrice: decimal.Zero,
			}
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.Quantity != nil {
			item.Quantity = *patch.Quantity
		}
		if patch.UnitPrice != nil {
			item.UnitPrice = *patch.UnitPrice
		}
		if patch.Order != nil {
			item.Order = *patch.Order
		}

		if err := money.ValidateLine(money.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice}); err != nil {
			return nil, nil, httpx.NewValidationError(fmt.Sprintf("items[%d]", i), err.Error())
		}
		item.Total = money.LineTotal(item.Quantity, item.UnitPrice)
		result = append(result, item)
	}

	var removed []uuid.UUID
	for _, it := range existing {
		if _, left := byID[it.ID]; left {
			removed = append(removed, it.ID)
		}
	}
	return result, removed, nil
}

func matchExisting(byID map[uuid.UUID]Item, id *uuid.UUID) (Item, bool) {
	if id == nil {
		return Item{}, false
	}
	it, ok := byID[*id]
	return it, ok
}
