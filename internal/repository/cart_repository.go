package repository

import (
	"context"
	"fmt"

	"retailshop/internal/models"
)

type cartRepo struct {
	db DB
}

func NewCartRepository(db DB) CartRepository {
	return &cartRepo{db: db}
}

// AddItem creates the user's cart on first use and adds quantity to the
// product's line, returning the resulting line quantity. Both happen in one
// statement, so concurrent adds for the same user and product accumulate.
// The line never grows past models.MaxLineQuantity.
func (r *cartRepo) AddItem(ctx context.Context, userID, productID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if quantity > models.MaxLineQuantity {
		return 0, fmt.Errorf("%w: quantity may not exceed %d", ErrInvalidInput, models.MaxLineQuantity)
	}

	sql := `
		WITH cart AS (
			INSERT INTO carts (user_id) VALUES ($1)
			ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
			RETURNING cart_id
		)
		INSERT INTO cart_items (cart_id, product_id, quantity)
		SELECT cart_id, $2, $3 FROM cart
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = LEAST(cart_items.quantity + EXCLUDED.quantity, $4)
		RETURNING quantity
	`

	var lineQuantity int
	if err := r.db.QueryRow(ctx, sql, userID, productID, quantity, models.MaxLineQuantity).Scan(&lineQuantity); err != nil {
		return 0, translatePgError(fmt.Sprintf("failed to add product %d to cart", productID), err)
	}
	return lineQuantity, nil
}

func (r *cartRepo) SetQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if quantity > models.MaxLineQuantity {
		return fmt.Errorf("%w: quantity may not exceed %d", ErrInvalidInput, models.MaxLineQuantity)
	}

	sql := `
		UPDATE cart_items ci
		SET quantity = $3
		FROM carts c
		WHERE ci.cart_id = c.cart_id AND c.user_id = $1 AND ci.product_id = $2
	`

	result, err := r.db.Exec(ctx, sql, userID, productID, quantity)
	if err != nil {
		return translatePgError(fmt.Sprintf("failed to update cart line %d", productID), err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *cartRepo) RemoveItem(ctx context.Context, userID, productID int64) error {
	sql := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.cart_id AND c.user_id = $1 AND ci.product_id = $2
	`

	result, err := r.db.Exec(ctx, sql, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart line %d: %w", productID, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *cartRepo) HasItem(ctx context.Context, userID, productID int64) (bool, error) {
	sql := `
		SELECT EXISTS(
			SELECT 1 FROM cart_items ci
			JOIN carts c ON c.cart_id = ci.cart_id
			WHERE c.user_id = $1 AND ci.product_id = $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, sql, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check cart line %d: %w", productID, err)
	}
	return exists, nil
}

// GetByUserID returns the user's cart priced at current catalog prices.
// A user without a cart gets an empty one.
func (r *cartRepo) GetByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	sql := `
		SELECT c.cart_id, ci.product_id, p.name, ci.quantity, p.price
		FROM carts c
		JOIN cart_items ci ON ci.cart_id = c.cart_id
		JOIN products p ON p.product_id = ci.product_id
		WHERE c.user_id = $1
		ORDER BY ci.cart_item_id
	`

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart of user %d: %w", userID, err)
	}
	defer rows.Close()

	var cartID int64
	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&cartID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan cart lines: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return models.NewCart(cartID, userID, items), nil
}
