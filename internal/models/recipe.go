package models

import "time"

// Category ids are a fixed, seeded set; see CategoryBreakfast and friends.
type Category struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null" json:"name"`
}

const (
	CategoryBreakfast int64 = 1
	CategoryLunch     int64 = 2
	CategoryDinner    int64 = 3
	CategoryDessert   int64 = 4
)

// CategoryName returns the display name for a seeded category id, or ""
// for an unknown id.
func CategoryName(id int64) string {
	switch id {
	case CategoryBreakfast:
		return "Breakfast"
	case CategoryLunch:
		return "Lunch"
	case CategoryDinner:
		return "Dinner"
	case CategoryDessert:
		return "Dessert"
	default:
		return ""
	}
}

// Complexity labels accepted on recipes.
const (
	ComplexityBeginner     = "Beginner"
	ComplexityIntermediate = "Intermediate"
	ComplexityAdvanced     = "Advanced"
)

type Recipe struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Instructions string    `gorm:"type:text;not null" json:"instructions"`
	Ingredients  string    `gorm:"type:text;not null" json:"ingredients"`
	PrepTime     string    `gorm:"size:50" json:"prep_time"`
	Complexity   string    `gorm:"size:20;not null;default:'Beginner'" json:"complexity"`
	Servings     int       `gorm:"not null;default:1" json:"servings"`
	CategoryID   int64     `gorm:"not null;index" json:"category_id"`
	AuthorID     int64     `gorm:"not null;index" json:"author_id"`
	ImageURL     string    `gorm:"size:255" json:"image_url"`
}
