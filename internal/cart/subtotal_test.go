package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akosarev/storefront/internal/models"
)

func TestSubtotalEmptySnapshot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Subtotal(nil))
	assert.Equal(t, 0.0, Subtotal([]models.LineItem{}))
}

func TestSubtotalSumsQuantityTimesPrice(t *testing.T) {
	t.Parallel()

	snapshot := []models.LineItem{
		{ID: "a", Quantity: 2, Product: &models.Product{Price: 10}},
		{ID: "b", Quantity: 1, Product: &models.Product{Price: 5}},
	}

	assert.Equal(t, 25.0, Subtotal(snapshot))
}

func TestSubtotalMissingProductContributesZero(t *testing.T) {
	t.Parallel()

	snapshot := []models.LineItem{
		{ID: "a", Quantity: 2, Product: nil},
	}

	assert.Equal(t, 0.0, Subtotal(snapshot))
}

func TestSubtotalMissingQuantityContributesZero(t *testing.T) {
	t.Parallel()

	snapshot := []models.LineItem{
		{ID: "a", Quantity: 0, Product: &models.Product{Price: 99.99}},
		{ID: "b", Quantity: 3, Product: &models.Product{Price: 2}},
	}

	assert.Equal(t, 6.0, Subtotal(snapshot))
}

func TestSubtotalIsPure(t *testing.T) {
	t.Parallel()

	snapshot := []models.LineItem{
		{ID: "a", Quantity: 4, Product: &models.Product{Name: "mug", Price: 12.5, Images: []models.Image{{URL: "u", Title: "t"}}}},
		{ID: "b", Quantity: 1, Product: nil},
	}
	original := models.CloneItems(snapshot)

	first := Subtotal(snapshot)
	second := Subtotal(snapshot)

	require.Equal(t, first, second)
	assert.Equal(t, original, snapshot)
}
