package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"retailshop/internal/models"
)

type orderRepo struct {
	db DB
}

func NewOrderRepository(db DB) OrderRepository {
	return &orderRepo{db: db}
}

type productSnapshot struct {
	name  string
	price decimal.Decimal
}

const orderColumns = `
		order_id,
		user_id,
		total_amount,
		payment_method,
		status,
		first_name,
		last_name,
		phone_number,
		address,
		city,
		created_at,
		updated_at,
		completed_at`

func scanOrder(row pgx.Row, o *models.Order) error {
	var method, status string
	err := row.Scan(&o.OrderID,
		&o.UserID,
		&o.TotalAmount,
		&method,
		&status,
		&o.Shipping.FirstName,
		&o.Shipping.LastName,
		&o.Shipping.PhoneNumber,
		&o.Shipping.Address,
		&o.Shipping.City,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.CompletedAt,
	)
	if err != nil {
		return err
	}
	o.PaymentMethod = models.PaymentMethod(method)
	o.Status = models.OrderStatus(status)
	return nil
}

func validateOrder(order *models.Order) error {
	if order == nil {
		return fmt.Errorf("%w: order cannot be nil", ErrInvalidInput)
	}
	if order.UserID <= 0 {
		return fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}
	if !order.PaymentMethod.Valid() {
		return fmt.Errorf("%w: invalid payment method '%s'", ErrInvalidInput, order.PaymentMethod)
	}
	return nil
}

// CreateOrder stores an order for an explicit list of lines, such as a
// single-product purchase. Names and prices are taken from the catalog
// inside the transaction; the caller's values are ignored.
func (r *orderRepo) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	if err := validateOrder(order); err != nil {
		return err
	}

	if len(items) == 0 {
		return fmt.Errorf("slice items cannot be empty: %w", ErrInvalidInput)
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
		}
		if item.Quantity > models.MaxLineQuantity {
			return fmt.Errorf("quantity may not exceed %d: %w", models.MaxLineQuantity, ErrInvalidInput)
		}
		if item.ProductID <= 0 {
			return fmt.Errorf("product ID cannot be empty: %w", ErrInvalidInput)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	productIDs := make([]int64, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	sql := `SELECT
	product_id,
	name,
	price
	FROM products WHERE product_id = ANY($1::bigint[])
	`

	rows, err := tx.Query(ctx, sql, productIDs)
	if err != nil {
		return fmt.Errorf("failed to get products information: %w", err)
	}

	productInfo := make(map[int64]productSnapshot, len(productIDs))
	for rows.Next() {
		var id int64
		var p productSnapshot
		if err := rows.Scan(&id, &p.name, &p.price); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan product data: %w", err)
		}
		productInfo[id] = p
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to complete row iteration: %w", err)
	}

	for i := range items {
		info, exist := productInfo[items[i].ProductID]
		if !exist {
			return fmt.Errorf("product %d not found: %w", items[i].ProductID, ErrNotFound)
		}
		items[i].ProductName = info.name
		items[i].Price = info.price
	}

	if err := insertOrderTx(ctx, tx, order, items); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CreateFromCart converts the user's cart into a pending order and empties
// the cart. Lines are priced at the catalog's current price. The cart row is
// locked for the duration so concurrent adds and checkouts serialize.
func (r *orderRepo) CreateFromCart(ctx context.Context, order *models.Order) ([]models.OrderItem, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var cartID int64
	err = tx.QueryRow(ctx, `SELECT cart_id FROM carts WHERE user_id = $1 FOR UPDATE`, order.UserID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("failed to lock cart for user %d: %w", order.UserID, err)
	}

	sql := `SELECT
	ci.product_id,
	p.name,
	ci.quantity,
	p.price
	FROM cart_items ci
	JOIN products p ON p.product_id = ci.product_id
	WHERE ci.cart_id = $1
	ORDER BY ci.cart_item_id
	FOR UPDATE OF ci
	`

	rows, err := tx.Query(ctx, sql, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart lines: %w", err)
	}

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		items = append(items, item)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := insertOrderTx(ctx, tx, order, items); err != nil {
		return nil, err
	}

	result, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear cart %d: %w", cartID, err)
	}
	if result.RowsAffected() != int64(len(items)) {
		return nil, fmt.Errorf("%w: cart %d changed during checkout", ErrConflict, cartID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return items, nil
}

func insertOrderTx(ctx context.Context, tx pgx.Tx, order *models.Order, items []models.OrderItem) error {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	order.TotalAmount = total
	order.Status = models.OrderStatusPending

	insert := `INSERT INTO orders (
	user_id,
	total_amount,
	payment_method,
	status,
	first_name,
	last_name,
	phone_number,
	address,
	city
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING order_id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, insert,
		order.UserID,
		order.TotalAmount,
		string(order.PaymentMethod),
		string(order.Status),
		order.Shipping.FirstName,
		order.Shipping.LastName,
		order.Shipping.PhoneNumber,
		order.Shipping.Address,
		order.Shipping.City,
	).Scan(&order.OrderID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return translatePgError("failed to create order", err)
	}

	insertItemSQL := `INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING order_item_id
	`
	for i := range items {
		items[i].OrderID = order.OrderID
		err := tx.QueryRow(ctx, insertItemSQL,
			order.OrderID,
			items[i].ProductID,
			items[i].ProductName,
			items[i].Quantity,
			items[i].Price,
		).Scan(&items[i].OrderItemID)
		if err != nil {
			return translatePgError("failed to create order item", err)
		}
	}

	return nil
}

// completeOrderTx moves a pending order to complete, decrements stock for
// each line and journals an outgoing operation per line. It reports false
// without touching stock when the order was not pending.
func completeOrderTx(ctx context.Context, tx pgx.Tx, orderID int64) (bool, error) {
	result, err := tx.Exec(ctx, `UPDATE orders
		SET status = 'complete', completed_at = NOW(), updated_at = NOW()
		WHERE order_id = $1 AND status = 'pending'`, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to complete order %d: %w", orderID, err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	// Ordered by product so concurrent completions lock stock rows in the same order.
	rows, err := tx.Query(ctx, `SELECT product_id, quantity FROM order_items
		WHERE order_id = $1 ORDER BY product_id`, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to get items of order %d: %w", orderID, err)
	}

	var lines []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			rows.Close()
			return false, fmt.Errorf("failed to scan order item: %w", err)
		}
		lines = append(lines, item)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	update := `UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE product_id = $2`
	for _, line := range lines {
		result, err := tx.Exec(ctx, update, line.Quantity, line.ProductID)
		if err != nil {
			return false, fmt.Errorf("failed to update products %d: %w", line.ProductID, err)
		}

		if result.RowsAffected() == 0 {
			log.Printf("order %d: product %d no longer exists, stock not adjusted", orderID, line.ProductID)
			continue
		}

		id := orderID
		op := models.Operation{
			ProductID:     line.ProductID,
			OrderID:       &id,
			OperationType: OperationOutgoing,
			ChangeQuant:   -line.Quantity,
		}
		if err := insertOperation(ctx, tx, &op); err != nil {
			return false, err
		}
	}

	return true, nil
}

// Complete finalizes a pending order. It returns false when the order
// exists but is no longer pending.
func (r *orderRepo) Complete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	completed, err := completeOrderTx(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if !completed {
		return false, orderExists(ctx, tx, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

func (r *orderRepo) Cancel(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	result, err := r.db.Exec(ctx, `UPDATE orders
		SET status = 'cancelled', updated_at = NOW()
		WHERE order_id = $1 AND status = 'pending'`, id)
	if err != nil {
		return false, fmt.Errorf("failed to cancel order %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return false, orderExists(ctx, r.db, id)
	}
	return true, nil
}

func failOrderTx(ctx context.Context, tx pgx.Tx, orderID int64) (bool, error) {
	result, err := tx.Exec(ctx, `UPDATE orders
		SET status = 'failed', updated_at = NOW()
		WHERE order_id = $1 AND status = 'pending'`, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to mark order %d failed: %w", orderID, err)
	}
	return result.RowsAffected() == 1, nil
}

func orderExists(ctx context.Context, q querier, id int64) error {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE order_id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check order %d: %w", id, err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT` + orderColumns + `
		FROM orders
		WHERE order_id = $1
	`

	var order models.Order
	if err := scanOrder(r.db.QueryRow(ctx, sql, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	return &order, nil
}

func (r *orderRepo) GetAll(ctx context.Context) ([]models.Order, error) {
	sql := `SELECT` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC, order_id DESC`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}

	return collectOrders(rows)
}

func (r *orderRepo) GetByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, order_id DESC`

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders by userID %d: %w", userID, err)
	}

	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]models.Order, error) {
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan orders: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return orders, nil
}

func (r *orderRepo) GetOrderWithItems(ctx context.Context, id int64) (*models.OrderWithItems, error) {
	order, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sql := `SELECT
	order_item_id,
	order_id,
	product_id,
	product_name,
	quantity,
	price
	FROM order_items
	WHERE order_id = $1
	ORDER BY order_item_id
	`

	rows, err := r.db.Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get items of order %d: %w", id, err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.OrderItemID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return &models.OrderWithItems{Order: *order, Items: items}, nil
}
