package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"retailshop/internal/models"
	"retailshop/internal/repository"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, p *models.Product) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ProductID = 1
	}
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*models.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	args := m.Called(ctx, filter)
	if p, ok := args.Get(0).([]models.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) GetRelated(ctx context.Context, p *models.Product, limit int) ([]models.Product, error) {
	args := m.Called(ctx, p, limit)
	return args.Get(0).([]models.Product), args.Error(1)
}

func setup(t *testing.T) (*CachedProductRepository, *mockProductRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	backing := &mockProductRepo{}
	return NewCachedProductRepository(backing, rdb, time.Minute), backing, mr
}

func kettle() *models.Product {
	return &models.Product{ProductID: 1, CategoryID: 2, Name: "Kettle", Price: decimal.NewFromInt(100), Stock: 4}
}

func TestGetByIDReadsThrough(t *testing.T) {
	cache, backing, mr := setup(t)
	ctx := context.Background()

	backing.On("GetByID", ctx, int64(1)).Return(kettle(), nil).Once()

	first, err := cache.GetByID(ctx, 1)
	require.NoError(t, err)
	second, err := cache.GetByID(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, "Kettle", second.Name)
	assert.True(t, first.Price.Equal(second.Price))
	assert.True(t, mr.Exists("product:1"))
	assert.Equal(t, time.Minute, mr.TTL("product:1"))
	backing.AssertExpectations(t)
}

func TestGetByIDCachesNotFound(t *testing.T) {
	cache, backing, mr := setup(t)
	ctx := context.Background()

	backing.On("GetByID", ctx, int64(9)).Return(nil, repository.ErrNotFound).Once()

	_, err := cache.GetByID(ctx, 9)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = cache.GetByID(ctx, 9)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	value, _ := mr.Get("product:9")
	assert.Equal(t, notFoundMarker, value)
	backing.AssertExpectations(t)
}

func TestListSkipsCacheForSearches(t *testing.T) {
	cache, backing, mr := setup(t)
	ctx := context.Background()

	filter := models.ProductFilter{Query: "kettle"}
	backing.On("List", ctx, filter).Return([]models.Product{*kettle()}, nil).Twice()

	_, err := cache.List(ctx, filter)
	require.NoError(t, err)
	_, err = cache.List(ctx, filter)
	require.NoError(t, err)

	assert.Empty(t, mr.Keys())
	backing.AssertExpectations(t)
}

func TestUpdateInvalidatesProductAndListings(t *testing.T) {
	cache, backing, mr := setup(t)
	ctx := context.Background()

	byCategory := models.ProductFilter{Category: "kitchen"}
	backing.On("GetByID", ctx, int64(1)).Return(kettle(), nil)
	backing.On("List", ctx, models.ProductFilter{}).Return([]models.Product{*kettle()}, nil)
	backing.On("List", ctx, byCategory).Return([]models.Product{*kettle()}, nil)
	backing.On("Update", ctx, mock.Anything).Return(nil)

	_, err := cache.GetByID(ctx, 1)
	require.NoError(t, err)
	_, err = cache.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	_, err = cache.List(ctx, byCategory)
	require.NoError(t, err)
	require.True(t, mr.Exists("products:category:kitchen"))

	require.NoError(t, cache.Update(ctx, kettle()))

	assert.False(t, mr.Exists("product:1"))
	assert.False(t, mr.Exists(allProductsKey))
	assert.False(t, mr.Exists("products:category:kitchen"))
	assert.False(t, mr.Exists(listKeysSet))
}

func TestInvalidateDropsStaleStock(t *testing.T) {
	cache, backing, _ := setup(t)
	ctx := context.Background()

	updated := kettle()
	updated.Stock = 1
	backing.On("GetByID", ctx, int64(1)).Return(kettle(), nil).Once()
	backing.On("GetByID", ctx, int64(1)).Return(updated, nil).Once()

	p, err := cache.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Stock)

	cache.Invalidate(ctx, 1)

	p, err = cache.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)
	backing.AssertExpectations(t)
}
