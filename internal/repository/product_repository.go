package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"retailshop/internal/models"
)

type productRepo struct {
	db DB
}

func NewProductRepository(db DB) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `
	p.product_id,
	p.category_id,
	c.name,
	p.name,
	p.price,
	p.description,
	p.stock,
	p.image_url,
	p.created_at,
	p.updated_at`

func scanProduct(row pgx.Row, p *models.Product) error {
	return row.Scan(
		&p.ProductID,
		&p.CategoryID,
		&p.CategoryName,
		&p.Name,
		&p.Price,
		&p.Description,
		&p.Stock,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func collectProducts(rows pgx.Rows) ([]models.Product, error) {
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name required", ErrInvalidInput)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: product price cannot be negative", ErrInvalidInput)
	}
	if p.CategoryID <= 0 {
		return fmt.Errorf("%w: category ID cannot be empty", ErrInvalidInput)
	}
	return nil
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	sql := `
		INSERT INTO products (
			category_id,
			name,
			price,
			description,
			stock,
			image_url
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING product_id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, sql,
		p.CategoryID,
		p.Name,
		p.Price,
		p.Description,
		p.Stock,
		p.ImageURL,
	).Scan(&p.ProductID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translatePgError("failed to create product", err)
	}

	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT` + productColumns + `
		FROM products p
		JOIN categories c ON c.category_id = p.category_id
		WHERE p.product_id = $1
	`

	var product models.Product
	if err := scanProduct(r.db.QueryRow(ctx, sql, id), &product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by id %d: %w", id, err)
	}

	return &product, nil
}

func (r *productRepo) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	sql := `SELECT` + productColumns + `
		FROM products p
		JOIN categories c ON c.category_id = p.category_id
		WHERE ($1 = '' OR c.slug = $1 OR c.name = $1)
		  AND ($2 = '' OR p.name ILIKE '%' || $2 || '%' OR p.description ILIKE '%' || $2 || '%')
		ORDER BY p.product_id
	`

	rows, err := r.db.Query(ctx, sql, filter.Category, escapeLike(filter.Query))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return collectProducts(rows)
}

func (r *productRepo) GetRelated(ctx context.Context, p *models.Product, limit int) ([]models.Product, error) {
	sql := `SELECT` + productColumns + `
		FROM products p
		JOIN categories c ON c.category_id = p.category_id
		WHERE p.category_id = $1 AND p.product_id <> $2
		ORDER BY random()
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, sql, p.CategoryID, p.ProductID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get related products %d: %w", p.ProductID, err)
	}

	return collectProducts(rows)
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	if p.ProductID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}
	if err := validateProduct(p); err != nil {
		return err
	}

	sql := `
		UPDATE products
		SET
			category_id = $1,
			name = $2,
			price = $3,
			description = $4,
			stock = $5,
			image_url = $6,
			updated_at = NOW()
		WHERE product_id = $7
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, sql,
		p.CategoryID,
		p.Name,
		p.Price,
		p.Description,
		p.Stock,
		p.ImageURL,
		p.ProductID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return translatePgError(fmt.Sprintf("failed to update product %d", p.ProductID), err)
	}

	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	result, err := r.db.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(strings.TrimSpace(s))
}
