package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"retailshop/internal/models"
	"retailshop/internal/repository"
)

type stubInitiator struct {
	calls   int
	payment *models.Payment
	err     error
}

func (s *stubInitiator) InitiateForOrder(_ context.Context, order *models.Order, phone string) (*models.Payment, error) {
	s.calls++
	if s.payment != nil {
		s.payment.OrderID = order.OrderID
		s.payment.PhoneNumber = phone
	}
	return s.payment, s.err
}

func validShipping(phone string) models.ShippingDetails {
	return models.ShippingDetails{
		FirstName:   " Amina ",
		LastName:    "Otieno",
		PhoneNumber: phone,
		Address:     "Moi Avenue 12",
		City:        "Nairobi",
	}
}

// fromCart makes CreateFromCart behave like the repository: it fills in the
// order from the cart lines and returns them as order items.
func fromCart(orders *mockOrderRepo, lines []models.OrderItem) *mock.Call {
	return orders.On("CreateFromCart", mock.Anything, mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) {
			o := args.Get(1).(*models.Order)
			o.OrderID = 42
			o.Status = models.OrderStatusPending
			total := decimal.Zero
			for _, l := range lines {
				total = total.Add(l.Subtotal())
			}
			o.TotalAmount = total
		}).
		Return(lines, nil)
}

func TestCheckoutEmptyCart(t *testing.T) {
	ctx := context.Background()
	carts := new(mockCartRepo)
	svc := NewCheckoutService(carts, new(mockOrderRepo), new(mockUserRepo), &stubInitiator{})

	carts.On("GetByUserID", ctx, int64(1)).Return(models.NewCart(0, 1, nil), nil)

	_, err := svc.Checkout(ctx, 1)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrderCashCreatesPendingOrder(t *testing.T) {
	ctx := context.Background()
	orders := new(mockOrderRepo)
	payments := &stubInitiator{}
	svc := NewCheckoutService(new(mockCartRepo), orders, new(mockUserRepo), payments)

	fromCart(orders, []models.OrderItem{{ProductID: 5, ProductName: "Kettle", Quantity: 5, Price: decimal.NewFromInt(100)}})

	placed, err := svc.PlaceOrder(ctx, 1, validShipping("0712345678"), models.PaymentCash)
	require.NoError(t, err)

	assert.Equal(t, int64(42), placed.Order.OrderID)
	assert.Equal(t, models.OrderStatusPending, placed.Order.Status)
	assert.True(t, decimal.NewFromInt(500).Equal(placed.Order.TotalAmount))
	assert.Len(t, placed.Order.Items, 1)
	assert.Equal(t, "Amina", placed.Order.Shipping.FirstName)
	assert.Nil(t, placed.Payment)
	assert.Zero(t, payments.calls)
	orders.AssertExpectations(t)
}

func TestPlaceOrderRejectsBadShipping(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewCheckoutService(new(mockCartRepo), orders, new(mockUserRepo), &stubInitiator{})

	shipping := validShipping("254712345678")
	shipping.City = "  "

	_, err := svc.PlaceOrder(context.Background(), 1, shipping, models.PaymentCash)
	require.ErrorIs(t, err, ErrInvalidAddress)
	assert.Contains(t, err.Error(), "city is required")
	orders.AssertNotCalled(t, "CreateFromCart", mock.Anything, mock.Anything)
}

func TestPlaceOrderMpesaBadPhoneWritesNothing(t *testing.T) {
	orders := new(mockOrderRepo)
	payments := &stubInitiator{}
	svc := NewCheckoutService(new(mockCartRepo), orders, new(mockUserRepo), payments)

	_, err := svc.PlaceOrder(context.Background(), 1, validShipping("123"), models.PaymentMpesa)
	require.ErrorIs(t, err, ErrInvalidPhone)
	orders.AssertNotCalled(t, "CreateFromCart", mock.Anything, mock.Anything)
	assert.Zero(t, payments.calls)
}

func TestPlaceOrderMpesaStartsPush(t *testing.T) {
	orders := new(mockOrderRepo)
	payments := &stubInitiator{payment: &models.Payment{Reference: "RTS42-1", Amount: 500}}
	svc := NewCheckoutService(new(mockCartRepo), orders, new(mockUserRepo), payments)

	fromCart(orders, []models.OrderItem{{ProductID: 5, Quantity: 5, Price: decimal.NewFromInt(100)}})

	placed, err := svc.PlaceOrder(context.Background(), 1, validShipping("+254712345678"), models.PaymentMpesa)
	require.NoError(t, err)
	require.NotNil(t, placed.Payment)
	assert.Equal(t, 1, payments.calls)
	assert.Equal(t, "254712345678", placed.Payment.PhoneNumber)
	assert.Contains(t, placed.Message, "Ksh 500")
}

func TestPlaceOrderMpesaPushFailureKeepsOrder(t *testing.T) {
	orders := new(mockOrderRepo)
	payments := &stubInitiator{
		payment: &models.Payment{Reference: "RTS42-1", Amount: 500},
		err:     ErrPaymentInitiation,
	}
	svc := NewCheckoutService(new(mockCartRepo), orders, new(mockUserRepo), payments)

	fromCart(orders, []models.OrderItem{{ProductID: 5, Quantity: 5, Price: decimal.NewFromInt(100)}})

	placed, err := svc.PlaceOrder(context.Background(), 1, validShipping("254712345678"), models.PaymentMpesa)
	require.ErrorIs(t, err, ErrPaymentInitiation)
	require.NotNil(t, placed)
	assert.Equal(t, int64(42), placed.Order.OrderID)
	assert.Contains(t, placed.Message, "stays pending until the payment is reconciled")
	assert.NotContains(t, placed.Message, "try again")
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewCheckoutService(new(mockCartRepo), orders, new(mockUserRepo), &stubInitiator{})

	orders.On("CreateFromCart", mock.Anything, mock.Anything).
		Return(nil, errors.Join(errors.New("checkout"), repository.ErrEmptyCart))

	_, err := svc.PlaceOrder(context.Background(), 1, validShipping("254712345678"), models.PaymentCash)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestBuyNowUsesProfileDefaults(t *testing.T) {
	ctx := context.Background()
	orders := new(mockOrderRepo)
	users := new(mockUserRepo)
	svc := NewCheckoutService(new(mockCartRepo), orders, users, &stubInitiator{})

	users.On("GetProfile", ctx, int64(1)).
		Return(&models.Profile{UserID: 1, PhoneNumber: "0712345678", Address: "Moi Avenue 12"}, nil)
	orders.On("CreateOrder", ctx,
		mock.MatchedBy(func(o *models.Order) bool {
			return o.Shipping.Address == "Moi Avenue 12" && o.Shipping.PhoneNumber == "0712345678"
		}),
		[]models.OrderItem{{ProductID: 5, Quantity: 2}},
	).Run(func(args mock.Arguments) {
		o := args.Get(1).(*models.Order)
		o.OrderID = 7
		o.TotalAmount = decimal.NewFromInt(200)
	}).Return(nil)

	placed, err := svc.BuyNow(ctx, 1, 5, "2", models.PaymentCash, "")
	require.NoError(t, err)
	assert.Equal(t, int64(7), placed.Order.OrderID)
	assert.Contains(t, placed.Message, "200.00")
	orders.AssertExpectations(t)
}

func TestBuyNowMpesaBadPhone(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewCheckoutService(new(mockCartRepo), orders, new(mockUserRepo), &stubInitiator{})

	_, err := svc.BuyNow(context.Background(), 1, 5, "1", models.PaymentMpesa, "0712")
	require.ErrorIs(t, err, ErrInvalidPhone)
	orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}
