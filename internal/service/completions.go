package service

import (
	"context"
	"log"

	"retailshop/internal/events"
	"retailshop/internal/repository"
)

// StockCache drops cached product rows whose stock changed in the database.
type StockCache interface {
	Invalidate(ctx context.Context, ids ...int64)
}

// Completions runs the follow-up work for an order that has just moved to
// complete: refreshing cached stock and publishing order.completed. It
// never fails the caller; the order is already committed.
type Completions struct {
	orders    repository.OrderRepository
	publisher events.Publisher
	stock     StockCache
}

func NewCompletions(orders repository.OrderRepository, publisher events.Publisher, stock StockCache) *Completions {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Completions{orders: orders, publisher: publisher, stock: stock}
}

func (c *Completions) Completed(ctx context.Context, orderID int64, reference, receipt string) {
	order, err := c.orders.GetOrderWithItems(ctx, orderID)
	if err != nil {
		log.Printf("order %d completed but could not be reloaded: %v", orderID, err)
		return
	}

	if c.stock != nil {
		ids := make([]int64, 0, len(order.Items))
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
		c.stock.Invalidate(ctx, ids...)
	}

	if err := c.publisher.PublishOrderCompleted(ctx, events.NewOrderCompleted(order, reference, receipt)); err != nil {
		log.Printf("failed to publish completion of order %d: %v", orderID, err)
	}
}
