package model

import (
	"time"
)

type ProductCategory string

const (
	CategoryShirt  ProductCategory = "Shirt"
	CategoryTShirt ProductCategory = "T-shirt"
)

const MaxProductNameLength = 100

func ValidCategory(c ProductCategory) bool {
	return c == CategoryShirt || c == CategoryTShirt
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Category    ProductCategory `json:"category"`
	Seller      string          `json:"seller"`
	Stock       int             `json:"stock"`

	// Review aggregates, recomputed in the same transaction as review writes.
	Ratings      float64 `json:"ratings"`
	NumOfReviews int     `json:"num_of_reviews"`

	CreatedByID *string   `json:"created_by_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Images  []ProductImage `json:"images,omitempty"`
	Reviews []Review       `json:"reviews,omitempty"`
}

type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	PublicID  string `json:"public_id"`
	URL       string `json:"url"`
	SortOrder int    `json:"sort_order"`
}

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
