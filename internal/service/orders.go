package service

import (
	"context"
	"fmt"
	"log"

	"retailshop/internal/models"
	"retailshop/internal/repository"
)

// OrderDetail is the staff view of an order.
type OrderDetail struct {
	models.OrderWithItems
	Payments   []models.Payment   `json:"payments"`
	Operations []models.Operation `json:"operations"`
}

type OrderService struct {
	orders      repository.OrderRepository
	payments    repository.PaymentRepository
	operations  repository.OperationRepository
	completions *Completions
}

func NewOrderService(
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	operations repository.OperationRepository,
	completions *Completions,
) *OrderService {
	return &OrderService{
		orders:      orders,
		payments:    payments,
		operations:  operations,
		completions: completions,
	}
}

func (s *OrderService) List(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.orders.GetByUserID(ctx, userID)
}

// Get returns one of the user's orders. Other users' orders are reported as
// not found.
func (s *OrderService) Get(ctx context.Context, userID, orderID int64) (*models.OrderWithItems, error) {
	order, err := s.orders.GetOrderWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	return s.orders.GetAll(ctx)
}

func (s *OrderService) Detail(ctx context.Context, orderID int64) (*OrderDetail, error) {
	order, err := s.orders.GetOrderWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	operations, err := s.operations.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderDetail{OrderWithItems: *order, Payments: payments, Operations: operations}, nil
}

// Complete is the staff confirmation of a pending order, typically a cash
// order paid on delivery. Stock is decremented as part of it.
func (s *OrderService) Complete(ctx context.Context, orderID int64) error {
	completed, err := s.orders.Complete(ctx, orderID)
	if err != nil {
		return err
	}
	if !completed {
		return fmt.Errorf("%w: order %d", ErrOrderNotPending, orderID)
	}

	log.Printf("order %d completed by staff", orderID)
	if s.completions != nil {
		s.completions.Completed(ctx, orderID, "", "")
	}
	return nil
}

func (s *OrderService) Cancel(ctx context.Context, orderID int64) error {
	cancelled, err := s.orders.Cancel(ctx, orderID)
	if err != nil {
		return err
	}
	if !cancelled {
		return fmt.Errorf("%w: order %d", ErrOrderNotPending, orderID)
	}

	log.Printf("order %d cancelled by staff", orderID)
	return nil
}
