package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"required,max=100,slug"`
	Description string `json:"description"`
}

type Product struct {
	ProductID    int64           `json:"product_id"`
	CategoryID   int64           `json:"category_id" validate:"required,gt=0"`
	CategoryName string          `json:"category_name,omitempty"`
	Name         string          `json:"name" validate:"required,max=200"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	Stock        int             `json:"stock"`
	ImageURL     string          `json:"image_url,omitempty" validate:"omitempty,url"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductFilter narrows a product listing. Category matches a category slug
// or name exactly; Query is a case-insensitive substring of name or description.
type ProductFilter struct {
	Category string
	Query    string
}

type Review struct {
	ReviewID  int64     `json:"review_id"`
	ProductID int64     `json:"product_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Text      string    `json:"text" validate:"max=500"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductDetail struct {
	Product       Product   `json:"product"`
	Reviews       []Review  `json:"reviews"`
	AverageRating *float64  `json:"average_rating"`
	Related       []Product `json:"related_products"`
}

type Operation struct {
	OperationID   int64     `json:"operation_id"`
	ProductID     int64     `json:"product_id"`
	OrderID       *int64    `json:"order_id,omitempty"`
	OperationType string    `json:"operation_type"`
	ChangeQuant   int       `json:"change_quant"`
	CreatedAt     time.Time `json:"created_at"`
}
