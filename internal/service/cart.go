package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"retailshop/internal/models"
	"retailshop/internal/repository"
)

// CartUpdate describes the line a cart mutation left behind.
type CartUpdate struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Removed   bool   `json:"removed,omitempty"`
	Message   string `json:"message"`
}

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// CoerceQuantity reads a submitted quantity. Anything that is not a
// positive integer counts as 1, and larger quantities are capped at
// models.MaxLineQuantity.
func CoerceQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 1
	}
	return min(n, models.MaxLineQuantity)
}

func (s *CartService) AddItem(ctx context.Context, userID, productID int64, rawQuantity string) (*CartUpdate, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	quantity := CoerceQuantity(rawQuantity)
	total, err := s.carts.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		return nil, err
	}

	update := &CartUpdate{ProductID: productID, Quantity: total}
	if total == quantity {
		update.Message = fmt.Sprintf("Added %d x '%s' to your cart.", quantity, product.Name)
	} else {
		update.Message = fmt.Sprintf("Added %d more to the cart. Total: %d x %s.", quantity, total, product.Name)
	}
	return update, nil
}

// UpdateItem sets a line to an exact quantity. Zero removes the line; a
// negative or non-numeric quantity leaves it unchanged. Quantities above
// models.MaxLineQuantity are rejected.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID int64, rawQuantity string) (*CartUpdate, error) {
	exists, err := s.carts.HasItem(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: item not found in your cart", repository.ErrNotFound)
	}

	name := "item"
	if product, err := s.products.GetByID(ctx, productID); err == nil {
		name = product.Name
	}

	update := &CartUpdate{ProductID: productID}

	n, err := strconv.Atoi(strings.TrimSpace(rawQuantity))
	if errors.Is(err, strconv.ErrRange) || (err == nil && n > models.MaxLineQuantity) {
		return nil, fmt.Errorf("%w: quantity may not exceed %d", repository.ErrInvalidInput, models.MaxLineQuantity)
	}
	switch {
	case err != nil || n < 0:
		cart, err := s.carts.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, item := range cart.Items {
			if item.ProductID == productID {
				update.Quantity = item.Quantity
			}
		}
		update.Message = fmt.Sprintf("Quantity for %s unchanged.", name)
	case n == 0:
		if err := s.carts.RemoveItem(ctx, userID, productID); err != nil {
			return nil, err
		}
		update.Removed = true
		update.Message = fmt.Sprintf("%s removed from cart.", name)
	default:
		if err := s.carts.SetQuantity(ctx, userID, productID, n); err != nil {
			return nil, err
		}
		update.Quantity = n
		update.Message = fmt.Sprintf("Quantity for %s updated.", name)
	}

	return update, nil
}

func (s *CartService) View(ctx context.Context, userID int64) (*models.Cart, error) {
	return s.carts.GetByUserID(ctx, userID)
}
