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

const relatedProducts = 3

// ListingCache is implemented by the product cache; catalog changes that
// alter listings outside the product repository call it.
type ListingCache interface {
	InvalidateLists(ctx context.Context)
}

type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	reviews    repository.ReviewRepository
	operations repository.OperationRepository
	listings   ListingCache
	validate   *validator.Validate
}

func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	operations repository.OperationRepository,
	listings ListingCache,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		reviews:    reviews,
		operations: operations,
		listings:   listings,
		validate:   newValidator(),
	}
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.GetAll(ctx)
}

func (s *CatalogService) Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Query = strings.TrimSpace(filter.Query)
	return s.products.List(ctx, filter)
}

// Product returns a product with its reviews, newest first, the average
// rating (nil without reviews) and a few other products from its category.
func (s *CatalogService) Product(ctx context.Context, id int64) (*models.ProductDetail, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.GetByProductID(ctx, id)
	if err != nil {
		return nil, err
	}

	related, err := s.products.GetRelated(ctx, product, relatedProducts)
	if err != nil {
		log.Printf("failed to load related products for %d: %v", id, err)
		related = []models.Product{}
	}

	return &models.ProductDetail{
		Product:       *product,
		Reviews:       reviews,
		AverageRating: averageRating(reviews),
		Related:       related,
	}, nil
}

func averageRating(reviews []models.Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return &avg
}

func (s *CatalogService) AddReview(ctx context.Context, review *models.Review) error {
	review.Text = strings.TrimSpace(review.Text)
	if err := s.validate.Struct(review); err != nil {
		return fmt.Errorf("%w: %s", repository.ErrInvalidInput, describe(err))
	}
	if _, err := s.products.GetByID(ctx, review.ProductID); err != nil {
		return err
	}

	err := s.reviews.Create(ctx, review)
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%w: you have already reviewed this product", repository.ErrDuplicate)
	}
	return err
}

func (s *CatalogService) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := s.validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", repository.ErrInvalidInput, describe(err))
	}
	return s.categories.Create(ctx, c)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, slug string, c *models.Category) error {
	if err := s.validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", repository.ErrInvalidInput, describe(err))
	}
	if err := s.categories.Update(ctx, slug, c); err != nil {
		return err
	}
	s.invalidateListings(ctx)
	return nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	if err := s.categories.Delete(ctx, slug); err != nil {
		return err
	}
	s.invalidateListings(ctx)
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", repository.ErrInvalidInput, describe(err))
	}
	return s.products.Create(ctx, p)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", repository.ErrInvalidInput, describe(err))
	}
	return s.products.Update(ctx, p)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.products.Delete(ctx, id)
}

// StockMovements lists the inventory journal of a product.
func (s *CatalogService) StockMovements(ctx context.Context, productID int64) ([]models.Operation, error) {
	return s.operations.GetByProductID(ctx, productID)
}

func (s *CatalogService) invalidateListings(ctx context.Context) {
	if s.listings != nil {
		s.listings.InvalidateLists(ctx)
	}
}
