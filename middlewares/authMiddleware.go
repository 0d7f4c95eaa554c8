package middlewares

import (
	"log"
	"net/http"
	"strings"

	"civicdesk-be/models"
	authUtils "civicdesk-be/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and stores the caller's identity
// and scope on the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "No authorization token provided", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		// Extracting token from "Bearer <token>" format
		tokenString := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = authHeader[7:]
		}

		claims, err := authUtils.ParseToken(tokenString)
		if err != nil {
			log.Printf("Token validation failed: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid authorization token", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", string(claims.Role))
		c.Set("ward_id", claims.WardID)
		c.Set("department", claims.Department)

		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set. It must
// run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		roleStr, _ := role.(string)
		if !allowed[models.Role(roleStr)] {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Insufficient role for this action", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireOfficer rejects callers who are not municipal officers.
func RequireOfficer() gin.HandlerFunc {
	return RequireRoles(models.RoleClassA, models.RoleClassB, models.RoleClassC)
}
