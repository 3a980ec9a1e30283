package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"retailshop/internal/models"
	"retailshop/internal/repository"
)

func TestCoerceQuantity(t *testing.T) {
	tests := map[string]int{
		"3":                    3,
		" 2 ":                  2,
		"0":                    1,
		"-4":                   1,
		"abc":                  1,
		"":                     1,
		"1.5":                  1,
		"1000":                 1000,
		"10000":                models.MaxLineQuantity,
		"10001":                models.MaxLineQuantity,
		"9223372036854775807":  models.MaxLineQuantity,
		"99999999999999999999": 1,
	}
	for raw, want := range tests {
		assert.Equal(t, want, CoerceQuantity(raw), "raw %q", raw)
	}
}

func TestCartAddItemSumsQuantities(t *testing.T) {
	ctx := context.Background()
	carts := new(mockCartRepo)
	products := new(mockProductRepo)
	svc := NewCartService(carts, products)

	p := &models.Product{ProductID: 5, Name: "Kettle", Price: decimal.NewFromInt(100)}
	products.On("GetByID", ctx, int64(5)).Return(p, nil)
	carts.On("AddItem", ctx, int64(1), int64(5), 2).Return(2, nil).Once()
	carts.On("AddItem", ctx, int64(1), int64(5), 3).Return(5, nil).Once()

	first, err := svc.AddItem(ctx, 1, 5, "2")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)
	assert.Equal(t, "Added 2 x 'Kettle' to your cart.", first.Message)

	second, err := svc.AddItem(ctx, 1, 5, "3")
	require.NoError(t, err)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, "Added 3 more to the cart. Total: 5 x Kettle.", second.Message)

	carts.On("GetByUserID", ctx, int64(1)).
		Return(models.NewCart(9, 1, []models.CartItem{{ProductID: 5, ProductName: "Kettle", Quantity: 5, Price: p.Price}}), nil)

	cart, err := svc.View(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, decimal.NewFromInt(500).Equal(cart.Total))

	carts.AssertExpectations(t)
}

func TestCartAddItemCoercesBadQuantity(t *testing.T) {
	ctx := context.Background()
	carts := new(mockCartRepo)
	products := new(mockProductRepo)
	svc := NewCartService(carts, products)

	products.On("GetByID", ctx, int64(5)).Return(&models.Product{ProductID: 5, Name: "Kettle"}, nil)
	carts.On("AddItem", ctx, int64(1), int64(5), 1).Return(1, nil)

	update, err := svc.AddItem(ctx, 1, 5, "lots")
	require.NoError(t, err)
	assert.Equal(t, 1, update.Quantity)
	carts.AssertExpectations(t)
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	ctx := context.Background()
	carts := new(mockCartRepo)
	products := new(mockProductRepo)
	svc := NewCartService(carts, products)

	products.On("GetByID", ctx, int64(404)).Return(nil, repository.ErrNotFound)

	_, err := svc.AddItem(ctx, 1, 404, "1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	carts.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUpdateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("zero removes the line", func(t *testing.T) {
		carts := new(mockCartRepo)
		products := new(mockProductRepo)
		svc := NewCartService(carts, products)

		carts.On("HasItem", ctx, int64(1), int64(5)).Return(true, nil)
		products.On("GetByID", ctx, int64(5)).Return(&models.Product{ProductID: 5, Name: "Kettle"}, nil)
		carts.On("RemoveItem", ctx, int64(1), int64(5)).Return(nil)

		update, err := svc.UpdateItem(ctx, 1, 5, "0")
		require.NoError(t, err)
		assert.True(t, update.Removed)
		assert.Equal(t, "Kettle removed from cart.", update.Message)
		carts.AssertExpectations(t)
	})

	t.Run("positive sets exactly", func(t *testing.T) {
		carts := new(mockCartRepo)
		products := new(mockProductRepo)
		svc := NewCartService(carts, products)

		carts.On("HasItem", ctx, int64(1), int64(5)).Return(true, nil)
		products.On("GetByID", ctx, int64(5)).Return(&models.Product{ProductID: 5, Name: "Kettle"}, nil)
		carts.On("SetQuantity", ctx, int64(1), int64(5), 7).Return(nil)

		update, err := svc.UpdateItem(ctx, 1, 5, "7")
		require.NoError(t, err)
		assert.Equal(t, 7, update.Quantity)
		carts.AssertExpectations(t)
	})

	t.Run("negative leaves the line unchanged", func(t *testing.T) {
		carts := new(mockCartRepo)
		products := new(mockProductRepo)
		svc := NewCartService(carts, products)

		carts.On("HasItem", ctx, int64(1), int64(5)).Return(true, nil)
		products.On("GetByID", ctx, int64(5)).Return(&models.Product{ProductID: 5, Name: "Kettle"}, nil)
		carts.On("GetByUserID", ctx, int64(1)).
			Return(models.NewCart(9, 1, []models.CartItem{{ProductID: 5, Quantity: 4}}), nil)

		update, err := svc.UpdateItem(ctx, 1, 5, "-2")
		require.NoError(t, err)
		assert.Equal(t, 4, update.Quantity)
		assert.False(t, update.Removed)
		carts.AssertNotCalled(t, "SetQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		carts.AssertNotCalled(t, "RemoveItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("above the cap is rejected", func(t *testing.T) {
		for _, raw := range []string{"10001", "2147483648", "99999999999999999999"} {
			carts := new(mockCartRepo)
			products := new(mockProductRepo)
			svc := NewCartService(carts, products)

			carts.On("HasItem", ctx, int64(1), int64(5)).Return(true, nil)
			products.On("GetByID", ctx, int64(5)).Return(&models.Product{ProductID: 5, Name: "Kettle"}, nil)

			_, err := svc.UpdateItem(ctx, 1, 5, raw)
			assert.ErrorIs(t, err, repository.ErrInvalidInput, "raw %q", raw)
			carts.AssertNotCalled(t, "SetQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("missing line", func(t *testing.T) {
		carts := new(mockCartRepo)
		products := new(mockProductRepo)
		svc := NewCartService(carts, products)

		carts.On("HasItem", ctx, int64(1), int64(5)).Return(false, nil)

		_, err := svc.UpdateItem(ctx, 1, 5, "2")
		require.ErrorIs(t, err, repository.ErrNotFound)
		assert.Contains(t, err.Error(), "item not found in your cart")
	})
}
