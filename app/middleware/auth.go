package appMiddleware

import "github.com/golang-jwt/jwt/v5"

type contextKey string

const UserIDKey contextKey = "userID"

// Claims is the JWT payload issued by the auth service fronting this API.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var jwtSecretKey []byte

// SetJWTSecret installs the HMAC secret used to validate tokens. Call once
// during startup, before the server accepts requests.
func SetJWTSecret(secret string) {
	jwtSecretKey = []byte(secret)
}
