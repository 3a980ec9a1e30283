package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is the pending push-payment record, written before the gateway is
// called so that a callback always has something to correlate against.
type Payment struct {
	Reference         string        `json:"reference"`
	OrderID           int64         `json:"order_id"`
	UserID            int64         `json:"user_id"`
	PhoneNumber       string        `json:"phone_number"`
	Amount            int64         `json:"amount"`
	Status            PaymentStatus `json:"status"`
	MerchantRequestID string        `json:"merchant_request_id,omitempty"`
	CheckoutRequestID string        `json:"checkout_request_id,omitempty"`
	ReceiptNumber     string        `json:"receipt_number,omitempty"`
	ResultDesc        string        `json:"result_desc,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// PaymentResult is the provider's asynchronous verdict on a push payment.
type PaymentResult struct {
	MerchantRequestID string
	CheckoutRequestID string
	Reference         string
	ResultCode        int
	ResultDesc        string
	ReceiptNumber     string
	Amount            int64
	PhoneNumber       string
}

func (r PaymentResult) Succeeded() bool {
	return r.ResultCode == 0
}

type CallbackOutcome string

const (
	CallbackApplied   CallbackOutcome = "applied"
	CallbackDuplicate CallbackOutcome = "duplicate"
	CallbackUnknown   CallbackOutcome = "unknown"
)

// CallbackResolution reports what applying a PaymentResult did.
type CallbackResolution struct {
	Outcome        CallbackOutcome
	Reference      string
	OrderID        int64
	OrderCompleted bool
	OrderFailed    bool
	ExpectedAmount int64
}
