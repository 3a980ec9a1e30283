package repository

import (
	"context"
	"time"

	"retailshop/internal/models"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, slug string, category *models.Category) error
	Delete(ctx context.Context, slug string) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error

	GetRelated(ctx context.Context, product *models.Product, limit int) ([]models.Product, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByProductID(ctx context.Context, productID int64) ([]models.Review, error)
}

type CartRepository interface {
	AddItem(ctx context.Context, userID, productID int64, quantity int) (int, error)
	SetQuantity(ctx context.Context, userID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, productID int64) error
	HasItem(ctx context.Context, userID, productID int64) (bool, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Cart, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	CreateFromCart(ctx context.Context, order *models.Order) ([]models.OrderItem, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	GetOrderWithItems(ctx context.Context, id int64) (*models.OrderWithItems, error)

	Complete(ctx context.Context, id int64) (bool, error)
	Cancel(ctx context.Context, id int64) (bool, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	RecordRequest(ctx context.Context, reference, merchantRequestID, checkoutRequestID string) error
	RecordInitiationFailure(ctx context.Context, reference, reason string) error
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID int64) ([]models.Payment, error)

	SaveCallback(ctx context.Context, result models.PaymentResult, body []byte) error
	ApplyResult(ctx context.Context, result models.PaymentResult) (*models.CallbackResolution, error)
}

type OperationRepository interface {
	GetByProductID(ctx context.Context, productID int64) ([]models.Operation, error)
	GetByOrderID(ctx context.Context, orderID int64) ([]models.Operation, error)
}

type UserRepository interface {
	Register(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	SetStaff(ctx context.Context, username string, staff bool) error
}

type ReportRepository interface {
	SalesSummary(ctx context.Context, now time.Time, days int) (*models.SalesSummary, error)
}
