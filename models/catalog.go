package models

import (
	"regexp"
	"strings"
	"time"
)

// CategoryFilters lists the facet values the catalog page offers for a category
type CategoryFilters struct {
	Materials StringList `gorm:"type:text" bson:"materials" json:"materials"`
	Styles    StringList `gorm:"type:text" bson:"styles" json:"styles"`
	Sizes     StringList `gorm:"type:text" bson:"sizes" json:"sizes"`
}

// Category groups catalog products, e.g. "Living Room"
type Category struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Name           string          `gorm:"not null" bson:"name" json:"name"`
	Slug           string          `gorm:"uniqueIndex;not null;type:varchar(128)" bson:"slug" json:"slug"`
	Image          string          `bson:"image,omitempty" json:"image,omitempty"`
	AllowedFilters CategoryFilters `gorm:"embedded;embeddedPrefix:filter_" bson:"allowedFilters" json:"allowedFilters"`
	CreatedAt      time.Time       `gorm:"autoCreateTime:false" bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime:false" bson:"updatedAt" json:"updatedAt"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// ProductDimensions are the showroom measurements of a catalog piece in centimetres
type ProductDimensions struct {
	W float64 `bson:"w" json:"w"`
	D float64 `bson:"d" json:"d"`
	H float64 `bson:"h" json:"h"`
}

// Product is a predefined catalog piece customers can order as a starting point
type Product struct {
	ID          string            `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Title       string            `gorm:"not null" bson:"title" json:"title"`
	Category    string            `gorm:"not null;index" bson:"category" json:"category"`
	Tagline     string            `bson:"tagline,omitempty" json:"tagline,omitempty"`
	Description string            `bson:"description,omitempty" json:"description,omitempty"`
	Materials   StringList        `gorm:"type:text" bson:"materials" json:"materials"`
	Dimensions  ProductDimensions `gorm:"embedded;embeddedPrefix:dim_" bson:"dimensions" json:"dimensions"`
	Image       string            `bson:"image,omitempty" json:"image,omitempty"`
	PriceRange  string            `bson:"priceRange,omitempty" json:"priceRange,omitempty"`
	Tags        StringList        `gorm:"type:text" bson:"tags" json:"tags"`
	Published   bool              `gorm:"not null;index" bson:"published" json:"published"`
	CreatedAt   time.Time         `gorm:"index;autoCreateTime:false" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime:false" bson:"updatedAt" json:"updatedAt"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a display name into a URL segment: "Living Room" -> "living-room"
func Slugify(name string) string {
	return strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
