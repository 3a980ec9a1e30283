package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"retailshop/internal/models"
)

type paymentRepo struct {
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `
		reference,
		order_id,
		user_id,
		phone_number,
		amount,
		status,
		merchant_request_id,
		checkout_request_id,
		receipt_number,
		result_desc,
		created_at,
		updated_at`

func scanPayment(row pgx.Row, p *models.Payment) error {
	var status string
	err := row.Scan(&p.Reference,
		&p.OrderID,
		&p.UserID,
		&p.PhoneNumber,
		&p.Amount,
		&status,
		&p.MerchantRequestID,
		&p.CheckoutRequestID,
		&p.ReceiptNumber,
		&p.ResultDesc,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.Status = models.PaymentStatus(status)
	return err
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	if p.Reference == "" {
		return fmt.Errorf("%w: reference cannot be empty", ErrInvalidInput)
	}
	if p.Amount < 1 {
		return fmt.Errorf("%w: amount must be at least 1", ErrInvalidInput)
	}

	p.Status = models.PaymentStatusPending

	sql := `INSERT INTO payments (
		reference,
		order_id,
		user_id,
		phone_number,
		amount,
		status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, sql,
		p.Reference,
		p.OrderID,
		p.UserID,
		p.PhoneNumber,
		p.Amount,
		string(p.Status),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translatePgError("failed to create payment", err)
	}
	return nil
}

func (r *paymentRepo) RecordRequest(ctx context.Context, reference, merchantRequestID, checkoutRequestID string) error {
	sql := `UPDATE payments
		SET merchant_request_id = $2, checkout_request_id = $3, updated_at = NOW()
		WHERE reference = $1
	`

	result, err := r.db.Exec(ctx, sql, reference, merchantRequestID, checkoutRequestID)
	if err != nil {
		return fmt.Errorf("failed to record request for payment %s: %w", reference, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordInitiationFailure keeps the payment pending but notes why the push
// could not be started.
func (r *paymentRepo) RecordInitiationFailure(ctx context.Context, reference, reason string) error {
	sql := `UPDATE payments
		SET result_desc = $2, updated_at = NOW()
		WHERE reference = $1 AND status = 'pending'
	`

	if _, err := r.db.Exec(ctx, sql, reference, reason); err != nil {
		return fmt.Errorf("failed to record failure for payment %s: %w", reference, err)
	}
	return nil
}

func (r *paymentRepo) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	sql := `SELECT` + paymentColumns + `
		FROM payments
		WHERE reference = $1
	`

	var p models.Payment
	if err := scanPayment(r.db.QueryRow(ctx, sql, reference), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment %s: %w", reference, err)
	}
	return &p, nil
}

func (r *paymentRepo) GetByOrderID(ctx context.Context, orderID int64) ([]models.Payment, error) {
	sql := `SELECT` + paymentColumns + `
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, sql, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments of order %d: %w", orderID, err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan payments: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return payments, nil
}

// SaveCallback keeps the raw provider payload for audit.
func (r *paymentRepo) SaveCallback(ctx context.Context, result models.PaymentResult, body []byte) error {
	sql := `INSERT INTO payment_callbacks (checkout_request_id, result_code, body)
		VALUES ($1, $2, $3::jsonb)
	`

	if _, err := r.db.Exec(ctx, sql, result.CheckoutRequestID, result.ResultCode, string(body)); err != nil {
		return fmt.Errorf("failed to save callback %s: %w", result.CheckoutRequestID, err)
	}
	return nil
}

// ApplyResult settles the pending payment a result refers to, matched by
// checkout request ID or reference, and moves its order accordingly in the
// same transaction. At most one payment is settled per result; a checkout
// request ID match wins over a reference match. Only a pending payment is ever settled, so replays of
// the same result resolve as duplicates and never touch stock twice.
func (r *paymentRepo) ApplyResult(ctx context.Context, result models.PaymentResult) (*models.CallbackResolution, error) {
	status := models.PaymentStatusFailed
	if result.Succeeded() {
		status = models.PaymentStatusCompleted
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql := `WITH target AS (
			SELECT reference FROM payments
			WHERE status = 'pending'
			  AND ((checkout_request_id <> '' AND checkout_request_id = $5) OR reference = $7)
			ORDER BY (checkout_request_id <> '' AND checkout_request_id = $5) DESC
			LIMIT 1
			FOR UPDATE
		)
		UPDATE payments p
		SET status = $1,
			result_code = $2,
			result_desc = $3,
			receipt_number = $4,
			checkout_request_id = CASE WHEN p.checkout_request_id = '' THEN $5 ELSE p.checkout_request_id END,
			merchant_request_id = CASE WHEN p.merchant_request_id = '' THEN $6 ELSE p.merchant_request_id END,
			updated_at = NOW()
		FROM target
		WHERE p.reference = target.reference AND p.status = 'pending'
		RETURNING p.reference, p.order_id, p.amount
	`

	res := &models.CallbackResolution{Outcome: models.CallbackApplied}
	err = tx.QueryRow(ctx, sql,
		string(status),
		result.ResultCode,
		result.ResultDesc,
		result.ReceiptNumber,
		result.CheckoutRequestID,
		result.MerchantRequestID,
		result.Reference,
	).Scan(&res.Reference, &res.OrderID, &res.ExpectedAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.resolveUnmatched(ctx, tx, result)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle payment %s: %w", result.CheckoutRequestID, err)
	}

	if result.Succeeded() {
		res.OrderCompleted, err = completeOrderTx(ctx, tx, res.OrderID)
	} else {
		res.OrderFailed, err = failOrderTx(ctx, tx, res.OrderID)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return res, nil
}

// resolveUnmatched tells a replay of an already settled payment apart from a
// result nobody asked for.
func (r *paymentRepo) resolveUnmatched(ctx context.Context, tx pgx.Tx, result models.PaymentResult) (*models.CallbackResolution, error) {
	sql := `SELECT reference, order_id, amount FROM payments
		WHERE (checkout_request_id <> '' AND checkout_request_id = $1) OR reference = $2
		LIMIT 1
	`

	res := &models.CallbackResolution{Outcome: models.CallbackDuplicate}
	err := tx.QueryRow(ctx, sql, result.CheckoutRequestID, result.Reference).
		Scan(&res.Reference, &res.OrderID, &res.ExpectedAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.CallbackResolution{Outcome: models.CallbackUnknown}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up payment %s: %w", result.CheckoutRequestID, err)
	}
	return res, nil
}
