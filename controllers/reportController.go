package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"civicdesk-be/config"
	"civicdesk-be/lifecycle"
	"civicdesk-be/models"
	authUtils "civicdesk-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var reportCollection *mongo.Collection = config.GetCollection("reports")
var workOrderCollection *mongo.Collection = config.GetCollection("work_orders")
var userCollection *mongo.Collection = config.GetCollection("users")

// CreateReport handles the submission of a new civic report
func CreateReport(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Category     string   `json:"category" binding:"required"`
		Severity     string   `json:"severity,omitempty"`
		Description  string   `json:"description" binding:"required,max=2000"`
		WardID       string   `json:"ward_id" binding:"required"`
		Lat          float64  `json:"lat" binding:"required"`
		Lng          float64  `json:"lng" binding:"required"`
		Accuracy     *float64 `json:"accuracy,omitempty"`
		Address      string   `json:"address,omitempty"`
		Images       []string `json:"images,omitempty"`
		Anonymous    bool     `json:"anonymous,omitempty"`
		AICategory   *string  `json:"ai_category,omitempty"`
		AIConfidence *float64 `json:"ai_confidence,omitempty"`
		AIReasoning  *string  `json:"ai_reasoning,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	if !models.IsValidCategory(input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid category", "code": "VALIDATION_ERROR"})
		return
	}

	severity, ok := models.NormalizeSeverity(input.Severity)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid severity", "code": "VALIDATION_ERROR"})
		return
	}

	now := time.Now()
	category := models.ReportCategory(input.Category)

	report := models.Report{
		ID:        primitive.NewObjectID(),
		ReportID:  models.NewReportCode(),
		UserID:    actor.ID,
		Anonymous: input.Anonymous,
		Location: models.Location{
			Lat:      input.Lat,
			Lng:      input.Lng,
			Accuracy: input.Accuracy,
			Address:  input.Address,
		},
		WardID:       input.WardID,
		Category:     category,
		Severity:     severity,
		Description:  input.Description,
		Images:       input.Images,
		AICategory:   input.AICategory,
		AIConfidence: input.AIConfidence,
		AIReasoning:  input.AIReasoning,
		Status:       models.ReportSubmitted,
		Timeline: []models.TimelineEntry{{
			Status:    string(models.ReportSubmitted),
			Timestamp: now,
			Actor:     actor.ID,
			Note:      "Report submitted",
		}},
		SLAResponseDeadline:   lifecycle.SLADeadline(category, severity, now, lifecycle.ResponseDeadline),
		SLAResolutionDeadline: lifecycle.SLADeadline(category, severity, now, lifecycle.ResolutionDeadline),
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := reportCollection.InsertOne(ctx, report); err != nil {
		log.Println("Error inserting report:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create report", "code": "UPSTREAM_ERROR"})
		return
	}

	notifyUser(actor.ID, "Report received: "+report.ReportID,
		"<p>Your report <b>"+report.ReportID+"</b> has been received and is awaiting validation.</p>")

	c.JSON(http.StatusCreated, gin.H{"success": true, "report": report})
}

// GetReport retrieves a single report by its code
func GetReport(c *gin.Context) {
	reportID := c.Param("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var report models.Report
	err := reportCollection.FindOne(ctx, bson.M{"report_id": reportID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Report not found", "code": "NOT_FOUND"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve report", "code": "UPSTREAM_ERROR"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

// GetMyReports retrieves the authenticated citizen's own reports
func GetMyReports(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"user_id": actor.ID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := reportCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve reports", "code": "UPSTREAM_ERROR"})
		return
	}
	defer cursor.Close(ctx)

	var reports []models.Report
	if err := cursor.All(ctx, &reports); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode reports", "code": "UPSTREAM_ERROR"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reports": reports})
}

// ListReports retrieves reports visible to an officer, with filtering and
// pagination. Ward and department scope is applied from the caller's claims.
func ListReports(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := scopedReportFilter(actor)

	if status := c.Query("status"); status != "" && status != "all" {
		filter["status"] = status
	}
	if category := c.Query("category"); category != "" && category != "all" {
		filter["category"] = category
	}
	if ward := c.Query("ward_id"); ward != "" && actor.Role == models.RoleClassA {
		filter["ward_id"] = ward
	}

	totalCount, err := reportCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to count reports", "code": "UPSTREAM_ERROR"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := reportCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve reports", "code": "UPSTREAM_ERROR"})
		return
	}
	defer cursor.Close(ctx)

	var reports []models.Report
	if err := cursor.All(ctx, &reports); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode reports", "code": "UPSTREAM_ERROR"})
		return
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"reports":      reports,
		"totalReports": totalCount,
		"totalPages":   totalPages,
		"currentPage":  page,
	})
}

// scopedReportFilter restricts a query to the officer's ward or department.
// Class A officers see everything.
func scopedReportFilter(actor lifecycle.Actor) bson.M {
	switch actor.Role {
	case models.RoleClassC:
		return bson.M{"ward_id": actor.WardID}
	case models.RoleClassB:
		return bson.M{"category": bson.M{"$in": categoriesForDepartment(actor.Department)}}
	default:
		return bson.M{}
	}
}

func categoriesForDepartment(department string) []string {
	var categories []string
	for category, dept := range models.CategoryDepartments {
		if dept == department {
			categories = append(categories, string(category))
		}
	}
	return categories
}

// ValidateReport lets a scoped officer accept or reject a submitted report
func ValidateReport(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Accepted bool    `json:"accepted"`
		Reason   string  `json:"reason,omitempty"`
		Notes    string  `json:"notes,omitempty"`
		Category *string `json:"category,omitempty"`
		Severity *string `json:"severity,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var report models.Report
	err := reportCollection.FindOne(ctx, bson.M{"report_id": c.Param("id")}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, lifecycle.Errorf(lifecycle.CodeNotFound, "report not found"))
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve report", "code": "UPSTREAM_ERROR"})
		}
		return
	}

	target := models.ReportAccepted
	if !input.Accepted {
		target = models.ReportRejected
	}

	from := report.Status
	now := time.Now()
	err = lifecycle.TransitionReport(actor, &report, target, lifecycle.Payload{
		Note:   input.Notes,
		Reason: input.Reason,
	}, now)
	if err != nil {
		respondError(c, err)
		return
	}

	set := bson.M{
		"status":           report.Status,
		"updated_at":       report.UpdatedAt,
		"validated_by":     report.ValidatedBy,
		"validated_at":     report.ValidatedAt,
		"validation_notes": report.ValidationNotes,
	}

	// Officers may override the AI or citizen classification during validation.
	if input.Category != nil && models.IsValidCategory(*input.Category) {
		set["category"] = *input.Category
	}
	if input.Severity != nil {
		if severity, ok := models.NormalizeSeverity(*input.Severity); ok {
			set["severity"] = severity
		}
	}

	if !applyReportTransition(c, ctx, &report, from, set) {
		return
	}

	subject := "Report " + report.ReportID + " accepted"
	if target == models.ReportRejected {
		subject = "Report " + report.ReportID + " rejected"
	}
	notifyUser(report.UserID, subject,
		"<p>Your report <b>"+report.ReportID+"</b> is now <b>"+string(report.Status)+"</b>.</p>")

	c.JSON(http.StatusOK, gin.H{"success": true, "status": report.Status})
}

// SubmitFeedback lets the reporting citizen close out a verified report
func SubmitFeedback(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Rating     int    `json:"rating" binding:"required,min=1,max=5"`
		Resolution string `json:"resolution,omitempty"`
		Comment    string `json:"comment,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var report models.Report
	err := reportCollection.FindOne(ctx, bson.M{"report_id": c.Param("id")}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, lifecycle.Errorf(lifecycle.CodeNotFound, "report not found"))
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve report", "code": "UPSTREAM_ERROR"})
		}
		return
	}

	from := report.Status
	now := time.Now()
	err = lifecycle.TransitionReport(actor, &report, models.ReportClosed, lifecycle.Payload{
		Rating:     input.Rating,
		Resolution: input.Resolution,
		Comment:    input.Comment,
		Note:       "Citizen feedback submitted: " + strconv.Itoa(input.Rating) + "/5 stars",
	}, now)
	if err != nil {
		respondError(c, err)
		return
	}

	set := bson.M{
		"status":     report.Status,
		"updated_at": report.UpdatedAt,
		"closed_at":  report.ClosedAt,
		"feedback":   report.Feedback,
	}

	if !applyReportTransition(c, ctx, &report, from, set) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": report.Status})
}

// applyReportTransition persists an already-validated transition with a
// conditional write: the filter pins the status the transition started from,
// so two concurrent updates cannot both land. Returns false after responding
// on failure.
func applyReportTransition(c *gin.Context, ctx context.Context, report *models.Report, from models.ReportStatus, set bson.M) bool {
	entry := report.Timeline[len(report.Timeline)-1]

	res, err := reportCollection.UpdateOne(ctx,
		bson.M{"_id": report.ID, "status": from},
		bson.M{"$set": set, "$push": bson.M{"timeline": entry}},
	)
	if err != nil {
		log.Println("Error updating report:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update report", "code": "UPSTREAM_ERROR"})
		return false
	}
	if res.MatchedCount == 0 {
		respondError(c, lifecycle.Errorf(lifecycle.CodeInvalidTransition, "report was updated concurrently, retry"))
		return false
	}
	return true
}

// GetReportStats returns a status -> count breakdown, scope-filtered for the
// calling officer.
func GetReportStats(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := []bson.M{}
	scope := scopedReportFilter(actor)
	if len(scope) > 0 {
		pipeline = append(pipeline, bson.M{"$match": scope})
	}
	pipeline = append(pipeline,
		bson.M{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
	)

	cursor, err := reportCollection.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to aggregate stats", "code": "UPSTREAM_ERROR"})
		return
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode stats", "code": "UPSTREAM_ERROR"})
		return
	}

	stats := map[string]int64{
		string(models.ReportSubmitted):  0,
		string(models.ReportAccepted):   0,
		string(models.ReportRejected):   0,
		string(models.ReportAssigned):   0,
		string(models.ReportInProgress): 0,
		string(models.ReportCompleted):  0,
		string(models.ReportVerified):   0,
		string(models.ReportClosed):     0,
	}
	for _, row := range rows {
		stats[row.Status] = row.Count
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// notifyUser sends a best-effort email to a user by id. Delivery failures are
// logged and never surfaced to the request that triggered them.
func notifyUser(userID, subject, html string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return
		}

		var user models.User
		if err := userCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
			log.Println("Notify: failed to load user:", err)
			return
		}

		if err := authUtils.SendEmail(user.Email, subject, html); err != nil {
			log.Println("Notify: failed to send email:", err)
		}
	}()
}
