package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"retailshop/internal/models"
)

type userRepo struct {
	db DB
}

var validate = validator.New()

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

// Register stores the user together with an empty profile.
func (r *userRepo) Register(ctx context.Context, u *models.User) error {
	if err := validate.Struct(u); err != nil {
		var validationErr validator.ValidationErrors
		if errors.As(err, &validationErr) {
			switch validationErr[0].Field() {
			case "Email":
				return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
			case "Username":
				return fmt.Errorf("%w: username must be 3-150 letters or digits", ErrInvalidInput)
			}
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("%w: password hash cannot be empty", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql := `
		INSERT INTO users (
			username,
			email,
			password_hash,
			is_staff
	) VALUES ($1, $2, $3, $4)
	RETURNING user_id, created_at
	`

	err = tx.QueryRow(ctx, sql,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.IsStaff,
	).Scan(&u.UserID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return fmt.Errorf("%w: email already exists", ErrDuplicate)
			}
			if strings.Contains(pgErr.ConstraintName, "username") {
				return fmt.Errorf("%w: username already exists", ErrDuplicate)
			}
		}
		return fmt.Errorf("create user: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1)`, u.UserID); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	sql := `SELECT
		user_id,
		username,
		email,
		password_hash,
		is_staff,
		created_at
		FROM users
		WHERE username = $1
	`

	var u models.User
	err := r.db.QueryRow(ctx, sql, username).Scan(
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsStaff,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &u, nil
}

// GetProfile returns the user's profile, creating an empty one for users
// that predate profiles.
func (r *userRepo) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	sql := `
		INSERT INTO profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, phone_number, address, updated_at
	`

	var p models.Profile
	err := r.db.QueryRow(ctx, sql, userID).Scan(&p.UserID, &p.PhoneNumber, &p.Address, &p.UpdatedAt)
	if err != nil {
		return nil, translatePgError(fmt.Sprintf("get profile of user %d", userID), err)
	}
	return &p, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	sql := `
		INSERT INTO profiles (user_id, phone_number, address) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET phone_number = EXCLUDED.phone_number, address = EXCLUDED.address, updated_at = NOW()
		RETURNING updated_at
	`

	if err := r.db.QueryRow(ctx, sql, p.UserID, p.PhoneNumber, p.Address).Scan(&p.UpdatedAt); err != nil {
		return translatePgError(fmt.Sprintf("update profile of user %d", p.UserID), err)
	}
	return nil
}

func (r *userRepo) SetStaff(ctx context.Context, username string, staff bool) error {
	result, err := r.db.Exec(ctx, `UPDATE users SET is_staff = $1 WHERE username = $2`, staff, username)
	if err != nil {
		return fmt.Errorf("set staff flag of %q: %w", username, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
