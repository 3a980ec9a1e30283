package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"retailshop/internal/models"
	"retailshop/internal/repository"
)

const (
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute
	defaultTTL     = 5 * time.Minute

	allProductsKey = "products:all"
	listKeysSet    = "products:lists"
)

// CachedProductRepository is a read-through cache in front of a
// ProductRepository. Single products and unfiltered or category-only
// listings are cached; text searches always go to the database.
type CachedProductRepository struct {
	realRepo repository.ProductRepository
	redis    *redis.Client
	ttl      time.Duration
}

var _ repository.ProductRepository = (*CachedProductRepository)(nil)

func NewCachedProductRepository(realRepo repository.ProductRepository, redis *redis.Client, ttl time.Duration) *CachedProductRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    redis,
		ttl:      ttl,
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func listKey(filter models.ProductFilter) string {
	if filter.Category == "" {
		return allProductsKey
	}
	return fmt.Sprintf("products:category:%s", filter.Category)
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}

		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			log.Printf("Failed to unmarshal cached product (continuing with DB): %v", err)
			break
		}

		return &product, nil

	case errors.Is(err, redis.Nil):

	default:
		log.Printf("Redis error (continuing with DB): %v", err)
	}

	product, err := c.realRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
				log.Printf("Failed to cache notfound: %v", setErr)
			}
		}
		return nil, err
	}

	jsonData, err := json.Marshal(product)
	if err != nil {
		log.Printf("Failed to marshal product: %v", err)
		return product, nil
	}

	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		log.Printf("failed to cache product: %v", err)
	}

	return product, nil
}

func (c *CachedProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if filter.Query != "" {
		return c.realRepo.List(ctx, filter)
	}

	key := listKey(filter)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		log.Printf("Failed to unmarshal cached products %s (continuing with DB): %v", key, err)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("Redis error: %v (continuing with DB)", err)
	}

	products, err := c.realRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(products)
	if err != nil {
		log.Printf("failed to marshal products: %v", err)
		return products, nil
	}

	pipe := c.redis.TxPipeline()
	pipe.Set(ctx, key, jsonData, c.ttl)
	pipe.SAdd(ctx, listKeysSet, key)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("failed to cache products %s: %v", key, err)
	}

	return products, nil
}

// GetRelated is random by nature and is never cached.
func (c *CachedProductRepository) GetRelated(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	return c.realRepo.GetRelated(ctx, product, limit)
}

func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.realRepo.Create(ctx, product); err != nil {
		return err
	}
	c.InvalidateLists(ctx)
	c.invalidateProduct(ctx, product.ProductID)
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	err := c.realRepo.Update(ctx, product)
	c.invalidateProduct(ctx, product.ProductID)
	c.InvalidateLists(ctx)
	return err
}

func (c *CachedProductRepository) Delete(ctx context.Context, id int64) error {
	err := c.realRepo.Delete(ctx, id)
	c.invalidateProduct(ctx, id)
	c.InvalidateLists(ctx)
	return err
}

// Invalidate drops the cached copies of the given products, for callers that
// change product rows behind the repository's back, such as stock updates.
func (c *CachedProductRepository) Invalidate(ctx context.Context, ids ...int64) {
	for _, id := range ids {
		c.invalidateProduct(ctx, id)
	}
	c.InvalidateLists(ctx)
}

func (c *CachedProductRepository) invalidateProduct(ctx context.Context, id int64) {
	key := productKey(id)
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		log.Printf("Failed to delete product cache %s: %v", key, err)
	}
}

// InvalidateLists drops every cached listing. Category renames and deletes
// call it too, since listings embed category names.
func (c *CachedProductRepository) InvalidateLists(ctx context.Context) {
	keys, err := c.redis.SMembers(ctx, listKeysSet).Result()
	if err != nil {
		log.Printf("Failed to read cached listing keys: %v", err)
	}
	keys = append(keys, allProductsKey, listKeysSet)

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Failed to delete listing caches: %v", err)
	}
}
