package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"retailshop/internal/gateway/mpesa"
	"retailshop/internal/models"
	"retailshop/internal/repository"
)

const (
	phoneLength = 12
	phonePrefix = "254"

	defaultPushTimeout = 15 * time.Second
)

// Gateway starts a push payment. *mpesa.Client implements it.
type Gateway interface {
	Push(ctx context.Context, req mpesa.PushRequest) (mpesa.PushResponse, error)
}

type PaymentService struct {
	payments    repository.PaymentRepository
	gateway     Gateway
	completions *Completions
	timeout     time.Duration
}

func NewPaymentService(payments repository.PaymentRepository, gateway Gateway, completions *Completions, timeout time.Duration) *PaymentService {
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	return &PaymentService{
		payments:    payments,
		gateway:     gateway,
		completions: completions,
		timeout:     timeout,
	}
}

// NormalizePhone accepts 2547XXXXXXXX, optionally with a leading +, and
// returns the bare digits.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if len(phone) != phoneLength || !strings.HasPrefix(phone, phonePrefix) {
		return "", ErrInvalidPhone
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}
	return phone, nil
}

// Amount is what the customer is charged: the total rounded up to whole
// shillings, and never less than 1.
func Amount(total decimal.Decimal) int64 {
	amount := total.Ceil().IntPart()
	if amount < 1 {
		return 1
	}
	return amount
}

func Reference(orderID, userID int64) string {
	return fmt.Sprintf("RTS%d-%d", orderID, userID)
}

// InitiateForOrder records a pending payment for the order and then asks the
// gateway to prompt the customer. The record is written first so a callback
// can always be matched. On any gateway failure the order and payment stay
// pending and ErrPaymentInitiation is returned.
func (s *PaymentService) InitiateForOrder(ctx context.Context, order *models.Order, phone string) (*models.Payment, error) {
	phone, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		Reference:   Reference(order.OrderID, order.UserID),
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		PhoneNumber: phone,
		Amount:      Amount(order.TotalAmount),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment for order %d: %w", order.OrderID, err)
	}

	pushCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.gateway.Push(pushCtx, mpesa.PushRequest{
		PhoneNumber:      phone,
		Amount:           payment.Amount,
		AccountReference: payment.Reference,
		Description:      fmt.Sprintf("Order %d", order.OrderID),
	})
	if err != nil {
		log.Printf("mpesa push for %s failed: %v", payment.Reference, err)
		if recErr := s.payments.RecordInitiationFailure(ctx, payment.Reference, err.Error()); recErr != nil {
			log.Printf("failed to record push failure for %s: %v", payment.Reference, recErr)
		}
		return payment, fmt.Errorf("%w: %v", ErrPaymentInitiation, err)
	}

	payment.MerchantRequestID = resp.MerchantRequestID
	payment.CheckoutRequestID = resp.CheckoutRequestID

	if err := s.payments.RecordRequest(ctx, payment.Reference, resp.MerchantRequestID, resp.CheckoutRequestID); err != nil {
		log.Printf("push %s sent but request IDs not stored, callback %s needs manual reconciliation: %v",
			payment.Reference, resp.CheckoutRequestID, err)
	}

	log.Printf("mpesa push %s for order %d: %d to %s (checkout %s)",
		payment.Reference, order.OrderID, payment.Amount, phone, resp.CheckoutRequestID)
	return payment, nil
}

// HandleCallback parses and applies a provider callback. Only a malformed
// body or an infrastructure failure is returned as an error; unknown and
// repeated callbacks are logged and reported in the resolution.
func (s *PaymentService) HandleCallback(ctx context.Context, body []byte) (*models.CallbackResolution, error) {
	result, err := ParseCallback(body)
	if err != nil {
		log.Printf("rejected mpesa callback: %v: %s", err, body)
		return nil, err
	}

	log.Printf("mpesa callback checkout=%s merchant=%s result=%d desc=%q receipt=%s amount=%d",
		result.CheckoutRequestID, result.MerchantRequestID, result.ResultCode, result.ResultDesc,
		result.ReceiptNumber, result.Amount)

	// The audit copy is best effort; settling must not depend on it.
	if err := s.payments.SaveCallback(ctx, result, body); err != nil {
		log.Printf("failed to store mpesa callback %s for audit: %v", result.CheckoutRequestID, err)
	}

	res, err := s.payments.ApplyResult(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("failed to apply callback %s: %w", result.CheckoutRequestID, err)
	}

	switch res.Outcome {
	case models.CallbackUnknown:
		log.Printf("mpesa callback %s matches no payment, needs manual reconciliation", result.CheckoutRequestID)
	case models.CallbackDuplicate:
		log.Printf("mpesa callback %s for %s already applied", result.CheckoutRequestID, res.Reference)
	case models.CallbackApplied:
		if result.Succeeded() && result.Amount != 0 && result.Amount != res.ExpectedAmount {
			log.Printf("mpesa payment %s paid %d, expected %d", res.Reference, result.Amount, res.ExpectedAmount)
		}
		if result.Succeeded() && !res.OrderCompleted {
			log.Printf("mpesa payment %s succeeded but order %d was no longer pending, refund may be due", res.Reference, res.OrderID)
		}
		if res.OrderCompleted && s.completions != nil {
			s.completions.Completed(ctx, res.OrderID, res.Reference, result.ReceiptNumber)
		}
	}

	return res, nil
}

func (s *PaymentService) PaymentsForOrder(ctx context.Context, orderID int64) ([]models.Payment, error) {
	payments, err := s.payments.GetByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return []models.Payment{}, nil
	}
	return payments, err
}
