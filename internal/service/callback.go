package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"retailshop/internal/models"
)

type stkCallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

type stkCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        *int   `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  *struct {
		Item []stkCallbackItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

type stkCallbackEnvelope struct {
	Body struct {
		StkCallback *stkCallback `json:"stkCallback"`
	} `json:"Body"`
}

// ParseCallback reads a Daraja STK push result. Amounts are rounded up to
// whole units, the same way they are charged.
func ParseCallback(body []byte) (models.PaymentResult, error) {
	var env stkCallbackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.PaymentResult{}, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	cb := env.Body.StkCallback
	if cb == nil {
		return models.PaymentResult{}, fmt.Errorf("%w: missing Body.stkCallback", ErrMalformedCallback)
	}
	if cb.ResultCode == nil {
		return models.PaymentResult{}, fmt.Errorf("%w: missing ResultCode", ErrMalformedCallback)
	}

	result := models.PaymentResult{
		MerchantRequestID: cb.MerchantRequestID,
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        *cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}

	if cb.CallbackMetadata != nil {
		for _, item := range cb.CallbackMetadata.Item {
			value := rawValue(item.Value)
			switch item.Name {
			case "Amount":
				amount, err := decimal.NewFromString(value)
				if err != nil {
					return models.PaymentResult{}, fmt.Errorf("%w: bad Amount %q", ErrMalformedCallback, value)
				}
				result.Amount = amount.Ceil().IntPart()
			case "MpesaReceiptNumber":
				result.ReceiptNumber = value
			case "PhoneNumber":
				result.PhoneNumber = value
			case "AccountReference":
				result.Reference = value
			}
		}
	}

	if result.CheckoutRequestID == "" && result.Reference == "" {
		return models.PaymentResult{}, fmt.Errorf("%w: no CheckoutRequestID or AccountReference", ErrMalformedCallback)
	}

	return result, nil
}

// rawValue renders a metadata value as text whether it was sent as a JSON
// string or a bare number.
func rawValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}
