package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"retailshop/internal/models"
	"retailshop/internal/repository"
)

// PaymentInitiator starts a push payment for an existing order.
type PaymentInitiator interface {
	InitiateForOrder(ctx context.Context, order *models.Order, phone string) (*models.Payment, error)
}

// PlacedOrder is the result of a checkout. Payment is set for mpesa orders
// once a payment record exists, even when the push itself failed.
type PlacedOrder struct {
	Order   *models.OrderWithItems `json:"order"`
	Payment *models.Payment        `json:"payment,omitempty"`
	Message string                 `json:"message"`
}

type CheckoutService struct {
	carts    repository.CartRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	payments PaymentInitiator
	validate *validator.Validate
}

func NewCheckoutService(
	carts repository.CartRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	payments PaymentInitiator,
) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		users:    users,
		payments: payments,
		validate: newValidator(),
	}
}

// Checkout returns the cart about to be ordered.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	return cart, nil
}

func normalizeShipping(d models.ShippingDetails) models.ShippingDetails {
	return models.ShippingDetails{
		FirstName:   strings.TrimSpace(d.FirstName),
		LastName:    strings.TrimSpace(d.LastName),
		PhoneNumber: strings.TrimSpace(d.PhoneNumber),
		Address:     strings.TrimSpace(d.Address),
		City:        strings.TrimSpace(d.City),
	}
}

// PlaceOrder turns the user's cart into a pending order. Nothing is written
// unless the shipping details, and for mpesa the phone number, are valid.
// For mpesa a push payment is started once the order is committed.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID int64, shipping models.ShippingDetails, method models.PaymentMethod) (*PlacedOrder, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method '%s'", repository.ErrInvalidInput, method)
	}

	shipping = normalizeShipping(shipping)
	if err := s.validate.Struct(shipping); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, describe(err))
	}

	var phone string
	if method == models.PaymentMpesa {
		var err error
		if phone, err = NormalizePhone(shipping.PhoneNumber); err != nil {
			return nil, err
		}
	}

	order := &models.Order{UserID: userID, PaymentMethod: method, Shipping: shipping}
	items, err := s.orders.CreateFromCart(ctx, order)
	if err != nil {
		if errors.Is(err, repository.ErrEmptyCart) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	log.Printf("order %d placed by user %d: %s, %d lines, total %s", order.OrderID, userID, method, len(items), order.TotalAmount)

	return s.settle(ctx, &models.OrderWithItems{Order: *order, Items: items}, phone)
}

// BuyNow orders a single product without touching the cart. Shipping
// details default to the user's profile.
func (s *CheckoutService) BuyNow(ctx context.Context, userID, productID int64, rawQuantity string, method models.PaymentMethod, phone string) (*PlacedOrder, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method '%s'", repository.ErrInvalidInput, method)
	}

	if method == models.PaymentMpesa {
		var err error
		if phone, err = NormalizePhone(phone); err != nil {
			return nil, err
		}
	}

	shipping := models.ShippingDetails{PhoneNumber: strings.TrimSpace(phone)}
	if profile, err := s.users.GetProfile(ctx, userID); err != nil {
		log.Printf("no profile defaults for user %d: %v", userID, err)
	} else {
		shipping.Address = profile.Address
		if shipping.PhoneNumber == "" {
			shipping.PhoneNumber = profile.PhoneNumber
		}
	}

	order := &models.Order{UserID: userID, PaymentMethod: method, Shipping: shipping}
	items := []models.OrderItem{{ProductID: productID, Quantity: CoerceQuantity(rawQuantity)}}
	if err := s.orders.CreateOrder(ctx, order, items); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	log.Printf("order %d placed by user %d: %s, buy now product %d x %d", order.OrderID, userID, method, productID, items[0].Quantity)

	return s.settle(ctx, &models.OrderWithItems{Order: *order, Items: items}, phone)
}

func (s *CheckoutService) settle(ctx context.Context, order *models.OrderWithItems, phone string) (*PlacedOrder, error) {
	placed := &PlacedOrder{Order: order}

	if order.PaymentMethod != models.PaymentMpesa {
		placed.Message = fmt.Sprintf("Order %d placed. Pay %s in cash on delivery.", order.OrderID, order.TotalAmount.StringFixed(2))
		return placed, nil
	}

	payment, err := s.payments.InitiateForOrder(ctx, &order.Order, phone)
	placed.Payment = payment
	if err != nil {
		placed.Message = fmt.Sprintf("Order %d is pending but the M-Pesa request failed. It stays pending until the payment is reconciled.", order.OrderID)
		return placed, err
	}

	placed.Message = fmt.Sprintf("M-Pesa STK Push initiated for Ksh %d to %s. Please enter your M-Pesa PIN.", payment.Amount, payment.PhoneNumber)
	return placed, nil
}
