package service

import "errors"

var (
	ErrEmptyCart         = errors.New("your cart is empty")
	ErrInvalidAddress    = errors.New("invalid shipping details")
	ErrInvalidPhone      = errors.New("invalid phone number format, use 2547XXXXXXXX")
	ErrPaymentInitiation = errors.New("mpesa payment initiation failed")
	ErrMalformedCallback = errors.New("malformed payment callback")
	ErrUnauthorized      = errors.New("invalid username or password")
	ErrOrderNotPending   = errors.New("order is not pending")
)
