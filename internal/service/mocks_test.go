package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"retailshop/internal/events"
	"retailshop/internal/gateway/mpesa"
	"retailshop/internal/models"
)

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) Create(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	args := m.Called(ctx, f)
	p, _ := args.Get(0).([]models.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) GetRelated(ctx context.Context, p *models.Product, limit int) ([]models.Product, error) {
	args := m.Called(ctx, p, limit)
	r, _ := args.Get(0).([]models.Product)
	return r, args.Error(1)
}

type mockCategoryRepo struct{ mock.Mock }

func (m *mockCategoryRepo) Create(ctx context.Context, c *models.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	c, _ := args.Get(0).(*models.Category)
	return c, args.Error(1)
}

func (m *mockCategoryRepo) GetAll(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]models.Category)
	return c, args.Error(1)
}

func (m *mockCategoryRepo) Update(ctx context.Context, slug string, c *models.Category) error {
	return m.Called(ctx, slug, c).Error(0)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

type mockReviewRepo struct{ mock.Mock }

func (m *mockReviewRepo) Create(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockReviewRepo) GetByProductID(ctx context.Context, productID int64) ([]models.Review, error) {
	args := m.Called(ctx, productID)
	r, _ := args.Get(0).([]models.Review)
	return r, args.Error(1)
}

type mockOperationRepo struct{ mock.Mock }

func (m *mockOperationRepo) GetByProductID(ctx context.Context, productID int64) ([]models.Operation, error) {
	args := m.Called(ctx, productID)
	o, _ := args.Get(0).([]models.Operation)
	return o, args.Error(1)
}

func (m *mockOperationRepo) GetByOrderID(ctx context.Context, orderID int64) ([]models.Operation, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).([]models.Operation)
	return o, args.Error(1)
}

type mockCartRepo struct{ mock.Mock }

func (m *mockCartRepo) AddItem(ctx context.Context, userID, productID int64, quantity int) (int, error) {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Int(0), args.Error(1)
}

func (m *mockCartRepo) SetQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	return m.Called(ctx, userID, productID, quantity).Error(0)
}

func (m *mockCartRepo) RemoveItem(ctx context.Context, userID, productID int64) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *mockCartRepo) HasItem(ctx context.Context, userID, productID int64) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartRepo) GetByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(*models.Cart)
	return c, args.Error(1)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	return m.Called(ctx, o, items).Error(0)
}

func (m *mockOrderRepo) CreateFromCart(ctx context.Context, o *models.Order) ([]models.OrderItem, error) {
	args := m.Called(ctx, o)
	items, _ := args.Get(0).([]models.OrderItem)
	return items, args.Error(1)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) GetAll(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	o, _ := args.Get(0).([]models.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) GetByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	o, _ := args.Get(0).([]models.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) GetOrderWithItems(ctx context.Context, id int64) (*models.OrderWithItems, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.OrderWithItems)
	return o, args.Error(1)
}

func (m *mockOrderRepo) Complete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) Cancel(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockPaymentRepo struct{ mock.Mock }

func (m *mockPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPaymentRepo) RecordRequest(ctx context.Context, reference, merchantID, checkoutID string) error {
	return m.Called(ctx, reference, merchantID, checkoutID).Error(0)
}

func (m *mockPaymentRepo) RecordInitiationFailure(ctx context.Context, reference, reason string) error {
	return m.Called(ctx, reference, reason).Error(0)
}

func (m *mockPaymentRepo) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	args := m.Called(ctx, reference)
	p, _ := args.Get(0).(*models.Payment)
	return p, args.Error(1)
}

func (m *mockPaymentRepo) GetByOrderID(ctx context.Context, orderID int64) ([]models.Payment, error) {
	args := m.Called(ctx, orderID)
	p, _ := args.Get(0).([]models.Payment)
	return p, args.Error(1)
}

func (m *mockPaymentRepo) SaveCallback(ctx context.Context, result models.PaymentResult, body []byte) error {
	return m.Called(ctx, result, body).Error(0)
}

func (m *mockPaymentRepo) ApplyResult(ctx context.Context, result models.PaymentResult) (*models.CallbackResolution, error) {
	args := m.Called(ctx, result)
	r, _ := args.Get(0).(*models.CallbackResolution)
	return r, args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Register(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	return m.Called(ctx, p).Error(0)
}

type mockReportRepo struct{ mock.Mock }

func (m *mockReportRepo) SalesSummary(ctx context.Context, now time.Time, days int) (*models.SalesSummary, error) {
	args := m.Called(ctx, now, days)
	s, _ := args.Get(0).(*models.SalesSummary)
	return s, args.Error(1)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Push(ctx context.Context, req mpesa.PushRequest) (mpesa.PushResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(mpesa.PushResponse), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishOrderCompleted(ctx context.Context, e events.OrderCompleted) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

type mockStockCache struct{ mock.Mock }

func (m *mockStockCache) Invalidate(ctx context.Context, ids ...int64) {
	m.Called(ctx, ids)
}

func (m *mockUserRepo) SetStaff(ctx context.Context, username string, staff bool) error {
	return m.Called(ctx, username, staff).Error(0)
}
