package repository

import (
	"context"
	"fmt"

	"retailshop/internal/models"
)

const (
	OperationIncoming   = "incoming"
	OperationOutgoing   = "outgoing"
	OperationAdjustment = "adjustment"
)

type operationRepo struct {
	db DB
}

func NewOperationRepository(db DB) OperationRepository {
	return &operationRepo{db: db}
}

// insertOperation journals a stock movement. It runs on whatever querier the
// caller holds so the movement commits together with the stock change.
func insertOperation(ctx context.Context, q querier, o *models.Operation) error {
	if o == nil {
		return fmt.Errorf("%w: operation cannot be nil", ErrInvalidInput)
	}
	if o.ProductID <= 0 {
		return fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
	}
	if o.ChangeQuant == 0 {
		return fmt.Errorf("%w: the variable quantity cannot be 0", ErrInvalidInput)
	}
	switch o.OperationType {
	case OperationIncoming, OperationOutgoing, OperationAdjustment:
	default:
		return fmt.Errorf("%w: invalid operation type '%s'", ErrInvalidInput, o.OperationType)
	}

	var orderID any
	if o.OrderID != nil && *o.OrderID > 0 {
		orderID = *o.OrderID
	}

	sql := ` INSERT INTO operations (
		product_id,
		order_id,
		operation_type,
		change_quant
		) VALUES ($1, $2, $3, $4)
		RETURNING operation_id, created_at
	`

	err := q.QueryRow(ctx, sql,
		o.ProductID,
		orderID,
		o.OperationType,
		o.ChangeQuant,
	).Scan(&o.OperationID, &o.CreatedAt)
	if err != nil {
		return translatePgError("failed to create operation", err)
	}
	return nil
}

const operationColumns = `
		operation_id,
		product_id,
		order_id,
		operation_type,
		change_quant,
		created_at`

func (r *operationRepo) GetByProductID(ctx context.Context, productID int64) ([]models.Operation, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT` + operationColumns + `
		FROM operations
		WHERE product_id = $1
		ORDER BY operation_id
	`

	return r.list(ctx, sql, productID)
}

func (r *operationRepo) GetByOrderID(ctx context.Context, orderID int64) ([]models.Operation, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT` + operationColumns + `
		FROM operations
		WHERE order_id = $1
		ORDER BY operation_id
	`

	return r.list(ctx, sql, orderID)
}

func (r *operationRepo) list(ctx context.Context, sql string, id int64) ([]models.Operation, error) {
	rows, err := r.db.Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get operations for %d: %w", id, err)
	}
	defer rows.Close()

	operations := []models.Operation{}
	for rows.Next() {
		var o models.Operation
		err := rows.Scan(&o.OperationID,
			&o.ProductID,
			&o.OrderID,
			&o.OperationType,
			&o.ChangeQuant,
			&o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operations: %w", err)
		}
		operations = append(operations, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete rows iteration: %w", err)
	}

	return operations, nil
}
