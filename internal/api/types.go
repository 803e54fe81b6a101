package api

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Username string `json:"username" binding:"required"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateRecipeRequest is the payload for POST /recipes.
type CreateRecipeRequest struct {
	Name         string `json:"name" binding:"required"`
	Instructions string `json:"instructions" binding:"required"`
	Ingredients  string `json:"ingredients" binding:"required"`
	PrepTime     string `json:"prep_time"`
	Complexity   string `json:"complexity"`
	Servings     int    `json:"servings"`
	CategoryID   int64  `json:"category_id" binding:"required"`
	ImageURL     string `json:"image_url"`
}

// UpdateProfileRequest is the payload for PUT /profile.
type UpdateProfileRequest struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// ToggleFavouriteRequest carries the caller's current favourite state for
// POST /recipes/:id/favorite/toggle.
type ToggleFavouriteRequest struct {
	Current bool `json:"current"`
}
