package controllers

import (
	"net/http"

	"civicdesk-be/lifecycle"
	"civicdesk-be/models"

	"github.com/gin-gonic/gin"
)

// actorFrom rebuilds the lifecycle actor from the claims the auth middleware
// stored on the request context.
func actorFrom(c *gin.Context) (lifecycle.Actor, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated", "code": "UNAUTHORIZED"})
		return lifecycle.Actor{}, false
	}

	return lifecycle.Actor{
		ID:         userID.(string),
		Role:       models.Role(c.GetString("role")),
		WardID:     c.GetString("ward_id"),
		Department: c.GetString("department"),
	}, true
}

// respondError maps lifecycle error codes to HTTP statuses and renders the
// categorical error envelope.
func respondError(c *gin.Context, err error) {
	code := lifecycle.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case lifecycle.CodeValidationError:
		status = http.StatusBadRequest
	case lifecycle.CodeNotFound:
		status = http.StatusNotFound
	case lifecycle.CodeUnauthorized, lifecycle.CodeOutOfScope:
		status = http.StatusForbidden
	case lifecycle.CodeInvalidTransition:
		status = http.StatusConflict
	case lifecycle.CodePreconditionFailed:
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, gin.H{"success": false, "error": err.Error(), "code": code})
}
