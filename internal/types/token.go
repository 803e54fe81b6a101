package types

// TokenClaims represents the claims carried in a session token.
type TokenClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
