package auth

import (
	"context"
	"net/http"

	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"github.com/gin-gonic/gin"
)

// UserLookup loads the account behind a token.
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// AdminMiddleware creates a gin middleware to check for admin role.
// It must be used AFTER the standard AuthMiddleware. The role is read from
// the database, not the token, so demotions apply immediately.
func AdminMiddleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Authenticated user not found"})
			return
		}

		if user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		c.Set(roleKey, user.Role)
		c.Next()
	}
}
