package handlers

import (
	"context"

	"retailshop/internal/models"
	"retailshop/internal/service"
)

// The handlers depend on these narrow views of the services so they can be
// exercised with mocks.

type CatalogService interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Product(ctx context.Context, id int64) (*models.ProductDetail, error)
	AddReview(ctx context.Context, review *models.Review) error
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, slug string, c *models.Category) error
	DeleteCategory(ctx context.Context, slug string) error
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	StockMovements(ctx context.Context, productID int64) ([]models.Operation, error)
}

type CartService interface {
	AddItem(ctx context.Context, userID, productID int64, rawQuantity string) (*service.CartUpdate, error)
	UpdateItem(ctx context.Context, userID, productID int64, rawQuantity string) (*service.CartUpdate, error)
	View(ctx context.Context, userID int64) (*models.Cart, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID int64) (*models.Cart, error)
	PlaceOrder(ctx context.Context, userID int64, shipping models.ShippingDetails, method models.PaymentMethod) (*service.PlacedOrder, error)
	BuyNow(ctx context.Context, userID, productID int64, rawQuantity string, method models.PaymentMethod, phone string) (*service.PlacedOrder, error)
}

type PaymentService interface {
	HandleCallback(ctx context.Context, body []byte) (*models.CallbackResolution, error)
}

type OrderService interface {
	List(ctx context.Context, userID int64) ([]models.Order, error)
	Get(ctx context.Context, userID, orderID int64) (*models.OrderWithItems, error)
	All(ctx context.Context) ([]models.Order, error)
	Detail(ctx context.Context, orderID int64) (*service.OrderDetail, error)
	Complete(ctx context.Context, orderID int64) error
	Cancel(ctx context.Context, orderID int64) error
}

type ReportService interface {
	Sales(ctx context.Context, days int) (*models.SalesSummary, error)
}

type AccountService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*service.Session, error)
	Profile(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
}
