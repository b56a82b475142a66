package quotes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devisflow/devisflow/internal/platform/httpx"
)

func sequentialIDs(ids ...uuid.UUID) func() uuid.UUID {
	i := 0
	return func() uuid.UUID {
		id := ids[i]
		i++
		return id
	}
}

func TestReconcileItemsMergesCreatesAndRemoves(t *testing.T) {
	quoteID := uuid.New()
	a := Item{ID: uuid.New(), QuoteID: quoteID, Description: "Design", Quantity: dec("1"), UnitPrice: dec("100"), Total: dec("100"), Order: 0}
	b := Item{ID: uuid.New(), QuoteID: quoteID, Description: "Dev", Quantity: dec("2"), UnitPrice: dec("50"), Total: dec("100"), Order: 1}
	unknown := uuid.New()
	fresh1, fresh2 := uuid.New(), uuid.New()

	items, removed, err := ReconcileItems(quoteID, []Item{a, b}, []ItemPatch{
		{ID: &a.ID, Quantity: ptr(dec("3"))},
		{Description: ptr("Hébergement"), UnitPrice: ptr(dec("9.99")), Order: ptr(2)},
		{ID: &unknown, Description: ptr("Support")},
	}, sequentialIDs(fresh1, fresh2))
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, "Design", items[0].Description)
	assert.True(t, items[0].Total.Equal(dec("300")))

	assert.Equal(t, fresh1, items[1].ID)
	assert.Equal(t, quoteID, items[1].QuoteID)
	assert.True(t, items[1].Quantity.Equal(dec("1")))
	assert.True(t, items[1].Total.Equal(dec("9.99")))
	assert.Equal(t, 2, items[1].Order)

	assert.Equal(t, fresh2, items[2].ID)
	assert.True(t, items[2].UnitPrice.IsZero())
	assert.True(t, items[2].Total.IsZero())

	assert.Equal(t, []uuid.UUID{b.ID}, removed)
}

func TestReconcileItemsEmptyListRemovesAll(t *testing.T) {
	quoteID := uuid.New()
	a := Item{ID: uuid.New(), QuoteID: quoteID, Quantity: dec("1"), UnitPrice: dec("1")}

	items, removed, err := ReconcileItems(quoteID, []Item{a}, []ItemPatch{}, uuid.New)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, []uuid.UUID{a.ID}, removed)
}

func TestReconcileItemsRejectsNegativePrice(t *testing.T) {
	_, _, err := ReconcileItems(uuid.New(), nil, []ItemPatch{
		{UnitPrice: ptr(dec("-5"))},
	}, uuid.New)
	require.ErrorIs(t, err, httpx.ErrValidation)
}
