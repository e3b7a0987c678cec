package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only when JWTAuth stored requiredRole
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(ContextUserID)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
			return
		}

		userRole, _ := c.Get(ContextUserRole)
		if role, ok := userRole.(string); !ok || role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Insufficient permissions", map[string]interface{}{
				"required_role": requiredRole,
				"user_role":     userRole,
				"user_id":       userID,
			}))
			return
		}

		c.Next()
	}
}
