package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"civicdesk-be/lifecycle"
	"civicdesk-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ListUsers retrieves user accounts visible to the calling officer
func ListUsers(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	switch actor.Role {
	case models.RoleClassC:
		filter["ward_id"] = actor.WardID
	case models.RoleClassB:
		filter["department"] = actor.Department
	case models.RoleClassA:
		// city-wide
	default:
		respondError(c, lifecycle.Errorf(lifecycle.CodeUnauthorized, "role %s may not list users", actor.Role))
		return
	}

	if role := c.Query("role"); role != "" && models.IsValidRole(role) {
		filter["role"] = role
	}

	cursor, err := userCollection.Find(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve users", "code": "UPSTREAM_ERROR"})
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode users", "code": "UPSTREAM_ERROR"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// CreateUser lets class_b and class_a officers provision officer and
// contractor accounts
func CreateUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if !lifecycle.HasPermission(actor.Role, lifecycle.UsersCreate) {
		respondError(c, lifecycle.Errorf(lifecycle.CodeUnauthorized, "role %s may not create users", actor.Role))
		return
	}

	var input struct {
		Name       string `json:"name" binding:"required,max=50"`
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required,min=6"`
		Role       string `json:"role" binding:"required"`
		WardID     string `json:"ward_id,omitempty"`
		Department string `json:"department,omitempty"`
		Phone      string `json:"phone,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	if !models.IsValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid role", "code": "VALIDATION_ERROR"})
		return
	}

	role := models.Role(input.Role)
	if role == models.RoleClassC && input.WardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "A class_c officer requires a ward", "code": "VALIDATION_ERROR"})
		return
	}
	if role == models.RoleClassB && input.Department == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "A class_b officer requires a department", "code": "VALIDATION_ERROR"})
		return
	}
	// Only a class_a officer may mint another class_a account.
	if role == models.RoleClassA && actor.Role != models.RoleClassA {
		respondError(c, lifecycle.Errorf(lifecycle.CodeUnauthorized, "only class_a officers may create class_a accounts"))
		return
	}

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
		Name:       input.Name,
		Email:      input.Email,
		Password:   input.Password,
		Phone:      input.Phone,
		Role:       role,
		WardID:     input.WardID,
		Department: input.Department,
		Active:     true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if role == models.RoleContractor {
		user.ApprovalStatus = models.ContractorApproved
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
		"success": true,
		"id":      result.InsertedID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    user.Role,
	})
}

// UpdateUser lets an authorized officer update another user's profile fields
func UpdateUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if !lifecycle.HasPermission(actor.Role, lifecycle.UsersUpdate) {
		respondError(c, lifecycle.Errorf(lifecycle.CodeUnauthorized, "role %s may not update users", actor.Role))
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID", "code": "VALIDATION_ERROR"})
		return
	}

	var input struct {
		Name       *string `json:"name,omitempty"`
		Phone      *string `json:"phone,omitempty"`
		WardID     *string `json:"ward_id,omitempty"`
		Department *string `json:"department,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	update := bson.M{"updated_at": time.Now()}
	if input.Name != nil {
		update["name"] = *input.Name
	}
	if input.Phone != nil {
		update["phone"] = *input.Phone
	}
	if input.WardID != nil {
		update["ward_id"] = *input.WardID
	}
	if input.Department != nil {
		update["department"] = *input.Department
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := userCollection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update user", "code": "UPSTREAM_ERROR"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeactivateUser soft-disables an account without removing its history
func DeactivateUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if !lifecycle.HasPermission(actor.Role, lifecycle.UsersUpdate) {
		respondError(c, lifecycle.Errorf(lifecycle.CodeUnauthorized, "role %s may not deactivate users", actor.Role))
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID", "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := userCollection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to deactivate user", "code": "UPSTREAM_ERROR"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteUser permanently removes an account. Class A only.
func DeleteUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if actor.Role != models.RoleClassA {
		respondError(c, lifecycle.Errorf(lifecycle.CodeUnauthorized, "only class_a officers may delete accounts"))
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID", "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := userCollection.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete user", "code": "UPSTREAM_ERROR"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// setContractorApproval flips a contractor's vetting state
func setContractorApproval(c *gin.Context, approval string, permission lifecycle.Permission) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if !lifecycle.HasPermission(actor.Role, permission) {
		respondError(c, lifecycle.Errorf(lifecycle.CodeUnauthorized, "role %s may not change contractor approval", actor.Role))
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID", "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var contractor models.User
	err = userCollection.FindOne(ctx, bson.M{"_id": userID, "role": models.RoleContractor}).Decode(&contractor)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Contractor not found", "code": "NOT_FOUND"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve contractor", "code": "UPSTREAM_ERROR"})
		}
		return
	}

	_, err = userCollection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"approval_status": approval, "updated_at": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update contractor", "code": "UPSTREAM_ERROR"})
		return
	}

	if approval == models.ContractorApproved {
		notifyUser(contractor.ID.Hex(), "Contractor account approved",
			"<p>Your contractor account has been approved. You can now receive work orders.</p>")
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "approval_status": approval})
}

// ApproveContractor marks a pending contractor as approved for dispatch
func ApproveContractor(c *gin.Context) {
	setContractorApproval(c, models.ContractorApproved, lifecycle.ContractorsApprove)
}

// SuspendContractor blocks a contractor from receiving new work orders
func SuspendContractor(c *gin.Context) {
	setContractorApproval(c, models.ContractorSuspended, lifecycle.ContractorsSuspend)
}
