package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"retailshop/internal/models"
)

type categoryRepo struct {
	db DB
}

func NewCategoryRepository(db DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	sql := `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING category_id
	`

	if err := r.db.QueryRow(ctx, sql, c.Name, c.Slug, c.Description).Scan(&c.CategoryID); err != nil {
		return translatePgError("failed to create category", err)
	}
	return nil
}

func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	sql := `SELECT category_id, name, slug, description FROM categories WHERE slug = $1`

	var c models.Category
	err := r.db.QueryRow(ctx, sql, slug).Scan(&c.CategoryID, &c.Name, &c.Slug, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category %q: %w", slug, err)
	}
	return &c, nil
}

func (r *categoryRepo) GetAll(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT category_id, name, slug, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan categories: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return categories, nil
}

func (r *categoryRepo) Update(ctx context.Context, slug string, c *models.Category) error {
	sql := `
		UPDATE categories
		SET name = $1, slug = $2, description = $3
		WHERE slug = $4
		RETURNING category_id
	`

	err := r.db.QueryRow(ctx, sql, c.Name, c.Slug, c.Description, slug).Scan(&c.CategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return translatePgError(fmt.Sprintf("failed to update category %q", slug), err)
	}
	return nil
}

// Delete refuses to remove a category that still has products.
func (r *categoryRepo) Delete(ctx context.Context, slug string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM categories WHERE slug = $1`, slug)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("%w: category %q still has products", ErrConflict, slug)
		}
		return fmt.Errorf("failed to delete category %q: %w", slug, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
