package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

func TestAssembleCart(t *testing.T) {
	salePrice := int64(8000)
	products := map[uint]product.Product{
		1: {ID: 1, Name: "Laptop", Price: 199900, IsActive: true},
		2: {ID: 2, Name: "Mouse", Price: 10000, SalePrice: &salePrice, IsActive: true},
		3: {ID: 3, Name: "Discontinued Headset", Price: 15900, IsActive: false},
	}
	dbItems := []CartItem{
		{ID: 10, ProductID: 1, Quantity: 1},
		{ID: 11, ProductID: 2, Quantity: 2},
		{ID: 12, ProductID: 3, Quantity: 1}, // deactivated
		{ID: 13, ProductID: 99, Quantity: 3}, // product deleted
	}

	resp := assembleCart(7, dbItems, products)

	require.Len(t, resp.Items, 4)
	assert.Equal(t, uint(7), resp.UserID)

	assert.False(t, resp.Items[0].Unavailable)
	assert.Equal(t, int64(199900), resp.Items[0].UnitPrice)

	// Sale price wins over the regular price
	assert.Equal(t, int64(8000), resp.Items[1].UnitPrice)

	// Inactive and missing products are flagged, not silently zero-priced
	assert.True(t, resp.Items[2].Unavailable)
	assert.Nil(t, resp.Items[2].Product)
	assert.True(t, resp.Items[3].Unavailable)

	// Unavailable lines contribute nothing to the subtotal
	assert.Equal(t, int64(199900+2*8000), resp.Totals.SubTotal)
	assert.Equal(t, 4, resp.Totals.ItemCount)
	assert.Equal(t, 7, resp.Totals.TotalQuantity)
}

func TestAssembleCartEmpty(t *testing.T) {
	resp := assembleCart(7, nil, map[uint]product.Product{})
	assert.Empty(t, resp.Items)
	assert.Equal(t, int64(0), resp.Totals.SubTotal)
}
