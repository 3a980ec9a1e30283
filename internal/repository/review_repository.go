package repository

import (
	"context"
	"fmt"

	"retailshop/internal/models"
)

type reviewRepo struct {
	db DB
}

func NewReviewRepository(db DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, review *models.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}

	sql := `
		INSERT INTO reviews (product_id, user_id, rating, text)
		VALUES ($1, $2, $3, $4)
		RETURNING review_id, created_at
	`

	err := r.db.QueryRow(ctx, sql, review.ProductID, review.UserID, review.Rating, review.Text).
		Scan(&review.ReviewID, &review.CreatedAt)
	if err != nil {
		return translatePgError("failed to create review", err)
	}
	return nil
}

func (r *reviewRepo) GetByProductID(ctx context.Context, productID int64) ([]models.Review, error) {
	sql := `
		SELECT r.review_id, r.product_id, r.user_id, u.username, r.rating, r.text, r.created_at
		FROM reviews r
		JOIN users u ON u.user_id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.Query(ctx, sql, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews for product %d: %w", productID, err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ReviewID, &rv.ProductID, &rv.UserID, &rv.Username, &rv.Rating, &rv.Text, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reviews: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return reviews, nil
}
