package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"retailshop/internal/auth"
	"retailshop/internal/models"
	"retailshop/internal/repository"
)

const minPasswordLen = 8

// Session is what a successful login returns.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AccountService struct {
	users  repository.UserRepository
	issuer *auth.Issuer
	cost   int
}

func NewAccountService(users repository.UserRepository, issuer *auth.Issuer) *AccountService {
	return &AccountService{users: users, issuer: issuer, cost: bcrypt.DefaultCost}
}

// Register creates the user and an empty profile in one step.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", repository.ErrInvalidInput, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
	}
	if err := s.users.Register(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	token, err := s.issuer.Issue(auth.Identity{UserID: user.UserID, Username: user.Username, Staff: user.IsStaff})
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

func (s *AccountService) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	return s.users.GetProfile(ctx, userID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	profile.PhoneNumber = strings.TrimSpace(profile.PhoneNumber)
	profile.Address = strings.TrimSpace(profile.Address)
	return s.users.UpdateProfile(ctx, profile)
}

// GrantStaff gives an existing user access to the staff routes.
func (s *AccountService) GrantStaff(ctx context.Context, username string) error {
	return s.users.SetStaff(ctx, strings.TrimSpace(username), true)
}
