package models

import "time"

// Favourite records that a user favourited a recipe. The composite unique
// index makes duplicate inserts conflict, which the ledger turns into a
// no-op.
type Favourite struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipeID  int64     `gorm:"not null;index;uniqueIndex:idx_favourites_recipe_user" json:"recipe_id"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:idx_favourites_recipe_user" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Favourite) TableName() string {
	return "favourites"
}

// RecipeLikeCount is a derived projection over the favourites table. It is
// never stored; the ledger recomputes it whenever the favourite set changes.
type RecipeLikeCount struct {
	RecipeID int64 `json:"recipe_id"`
	Count    int64 `json:"count"`
}
