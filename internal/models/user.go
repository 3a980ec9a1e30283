package models

import "time"

type User struct {
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username" validate:"required,min=3,max=150,alphanum"`
	Email        string    `json:"email" validate:"required,email,max=254"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

type Profile struct {
	UserID      int64     `json:"user_id"`
	PhoneNumber string    `json:"phone_number" validate:"omitempty,max=15,numeric"`
	Address     string    `json:"address" validate:"max=255"`
	UpdatedAt   time.Time `json:"updated_at"`
}
