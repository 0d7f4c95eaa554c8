package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"civicdesk-be/config"
	"civicdesk-be/lifecycle"
	"civicdesk-be/models"
	authUtils "civicdesk-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterUser handles citizen self-registration
func RegisterUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Phone    string `json:"phone,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := userCollection.CountDocuments(ctx, bson.M{"email": input.Email})
	if err != nil {
		log.Println("Error checking existing user:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong", "code": "UPSTREAM_ERROR"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User with this email already exists", "code": "VALIDATION_ERROR"})
		return
	}

	user := models.User{
		Name:      input.Name,
		Email:     input.Email,
		Password:  input.Password,
		Phone:     input.Phone,
		Role:      models.RoleCitizen,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong", "code": "UPSTREAM_ERROR"})
		return
	}

	result, err := userCollection.InsertOne(ctx, user)
	if err != nil {
		log.Println("Error inserting user:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong", "code": "UPSTREAM_ERROR"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"id":        result.InsertedID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	})
}

// RegisterContractor handles contractor self-registration. The account stays
// pending until a class_b or class_a officer approves it.
func RegisterContractor(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Phone    string `json:"phone,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := userCollection.CountDocuments(ctx, bson.M{"email": input.Email})
	if err != nil {
		log.Println("Error checking existing user:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong", "code": "UPSTREAM_ERROR"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User with this email already exists", "code": "VALIDATION_ERROR"})
		return
	}

	user := models.User{
		Name:           input.Name,
		Email:          input.Email,
		Password:       input.Password,
		Phone:          input.Phone,
		Role:           models.RoleContractor,
		ApprovalStatus: models.ContractorPending,
		Active:         true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong", "code": "UPSTREAM_ERROR"})
		return
	}

	result, err := userCollection.InsertOne(ctx, user)
	if err != nil {
		log.Println("Error inserting user:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong", "code": "UPSTREAM_ERROR"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"id":              result.InsertedID,
		"name":            user.Name,
		"email":           user.Email,
		"role":            user.Role,
		"approval_status": user.ApprovalStatus,
	})
}

// LoginUser verifies credentials and issues a JWT
func LoginUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials", "code": "UNAUTHORIZED"})
		return
	}

	if !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials", "code": "UNAUTHORIZED"})
		return
	}

	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Account is deactivated", "code": "UNAUTHORIZED"})
		return
	}

	token, err := authUtils.GenerateToken(&user)
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong", "code": "UPSTREAM_ERROR"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      token,
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"role":       user.Role,
		"ward_id":    user.WardID,
		"department": user.Department,
	})
}

// GetMe returns the authenticated user's profile and permissions
func GetMe(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	userID, err := primitive.ObjectIDFromHex(actor.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID", "code": "VALIDATION_ERROR"})
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found", "code": "NOT_FOUND"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve user", "code": "UPSTREAM_ERROR"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"user":         user,
		"permissions":  lifecycle.PermissionsForRole(user.Role),
		"budget_limit": lifecycle.BudgetLimit(user.Role),
	})
}
