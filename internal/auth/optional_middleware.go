package auth

import (
	"github.com/Morfeas98/GameCollectionApp/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// OptionalAuthMiddleware inspects for a token and sets the userID if present and valid,
// but does not fail if the token is missing or invalid.
func OptionalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := jwt.ParseToken(secret, token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}
