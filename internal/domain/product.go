package domain

import (
	"time"
)

// Gender values observed in the catalog. A nil gender means unisex.
const (
	GenderMen   = "Hombre"
	GenderWomen = "Mujer"
)

// Product represents a product in the catalog
type Product struct {
	ID          int64         `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Price       string        `json:"price" db:"price"`
	Image       string        `json:"image" db:"image"`
	ImageURL    string        `json:"image_url"`
	Brand       string        `json:"brand" db:"brand"`
	Category    *string       `json:"category" db:"category"`
	Gender      *string       `json:"gender" db:"gender"`
	Description *string       `json:"description" db:"description"`
	Tags        []string      `json:"tags" db:"tags"`
	ExtraImages []*ExtraImage `json:"extra_images"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// ExtraImage is a supplementary image owned by a product
type ExtraImage struct {
	ID        int64  `json:"id" db:"id"`
	Image     string `json:"image" db:"image"`
	ImageURL  string `json:"image_url"`
	ProductID int64  `json:"product_id" db:"product_id"`
}

// ProductInput carries every mutable field of a product. Updates apply it
// wholesale, so a nil optional field clears the stored value.
type ProductInput struct {
	Name        string
	Price       string
	Image       string
	Brand       string
	Category    *string
	Gender      *string
	Description *string
	Tags        []string
	ExtraImages []string
}

// ListCriteria narrows a catalog listing. Empty fields are not constrained.
type ListCriteria struct {
	Brand  string
	Gender string
	Search string
	Tag    string
}

// IsEmpty reports whether no criterion was supplied
func (c ListCriteria) IsEmpty() bool {
	return c.Brand == "" && c.Gender == "" && c.Search == "" && c.Tag == ""
}
