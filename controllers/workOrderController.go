package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"civicdesk-be/lifecycle"
	"civicdesk-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateWorkOrder handles officer creation of a work order, optionally linked
// to a source report. Linking moves the report to assigned and sets its
// write-once work_order_id.
func CreateWorkOrder(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		ReportID          string           `json:"report_id,omitempty"`
		Category          string           `json:"category,omitempty"`
		Priority          string           `json:"priority,omitempty"`
		Description       string           `json:"description,omitempty"`
		WardID            string           `json:"ward_id,omitempty"`
		Location          *models.Location `json:"location,omitempty"`
		EstimatedCost     float64          `json:"estimated_cost,omitempty"`
		MaterialsRequired []string         `json:"materials_required,omitempty"`
		EquipmentRequired []string         `json:"equipment_required,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()

	wo := models.WorkOrder{
		ID:                primitive.NewObjectID(),
		WorkOrderID:       models.NewWorkOrderCode(),
		Source:            models.SourceManual,
		Description:       input.Description,
		WardID:            input.WardID,
		Location:          input.Location,
		EstimatedCost:     input.EstimatedCost,
		MaterialsRequired: input.MaterialsRequired,
		EquipmentRequired: input.EquipmentRequired,
		MaterialsUsed:     []string{},
		Images:            []string{},
		CompletionImages:  []string{},
		Status:            models.WorkOrderCreated,
		CreatedAt:         now,
		CreatedBy:         actor.ID,
		UpdatedAt:         now,
	}

	// When spawned from a report, the work order inherits the report's
	// classification and location.
	var report models.Report
	var reportFrom models.ReportStatus
	if input.ReportID != "" {
		err := reportCollection.FindOne(ctx, bson.M{"report_id": input.ReportID}).Decode(&report)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, lifecycle.Errorf(lifecycle.CodeNotFound, "source report not found"))
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve report", "code": "UPSTREAM_ERROR"})
			}
			return
		}

		reportFrom = report.Status
		err = lifecycle.TransitionReport(actor, &report, models.ReportAssigned, lifecycle.Payload{
			WorkOrderID: wo.WorkOrderID,
		}, now)
		if err != nil {
			respondError(c, err)
			return
		}

		sourceID := report.ReportID
		wo.Source = models.SourceCitizenReport
		wo.SourceID = &sourceID
		wo.Category = report.Category
		wo.WardID = report.WardID
		wo.Location = &report.Location
		if wo.Description == "" {
			wo.Description = report.Description
		}
	} else {
		if !models.IsValidCategory(input.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid category", "code": "VALIDATION_ERROR"})
			return
		}
		wo.Category = models.ReportCategory(input.Category)
	}

	priority, ok := models.NormalizePriority(input.Priority)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid priority", "code": "VALIDATION_ERROR"})
		return
	}
	wo.Priority = priority
	wo.Department = models.DepartmentForCategory(wo.Category)
	wo.SLAResponseHours = lifecycle.SLAHours(wo.Category, lifecycle.ResponseDeadline)
	wo.SLAResolutionHours = lifecycle.SLAHours(wo.Category, lifecycle.ResolutionDeadline)
	deadline := now.Add(time.Duration(wo.SLAResolutionHours) * time.Hour)
	wo.SLADeadline = &deadline

	if !actor.System && actor.Role.IsOfficer() {
		if !lifecycle.CanApproveBudget(actor.Role, wo.EstimatedCost) {
			respondError(c, lifecycle.Errorf(lifecycle.CodePreconditionFailed,
				"estimated cost exceeds the budget ceiling for role %s", actor.Role))
			return
		}
	}

	wo.Timeline = []models.TimelineEntry{{
		Status:    string(models.WorkOrderCreated),
		Timestamp: now,
		Actor:     actor.ID,
		Note:      "Work order created",
	}}

	if _, err := workOrderCollection.InsertOne(ctx, wo); err != nil {
		log.Println("Error inserting work order:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create work order", "code": "UPSTREAM_ERROR"})
		return
	}

	if input.ReportID != "" {
		set := bson.M{
			"status":        report.Status,
			"updated_at":    report.UpdatedAt,
			"work_order_id": report.WorkOrderID,
		}
		if !applyReportTransition(c, ctx, &report, reportFrom, set) {
			return
		}
		notifyUser(report.UserID, "Report "+report.ReportID+" assigned",
			"<p>A work order has been created for your report <b>"+report.ReportID+"</b>.</p>")
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "work_order": wo})
}

// GetWorkOrder retrieves a single work order by its code
func GetWorkOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wo models.WorkOrder
	err := workOrderCollection.FindOne(ctx, bson.M{"work_order_id": c.Param("id")}).Decode(&wo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Work order not found", "code": "NOT_FOUND"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve work order", "code": "UPSTREAM_ERROR"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "work_order": wo})
}

// ListWorkOrders retrieves work orders visible to an officer
func ListWorkOrders(c *gin.Context) {
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

	filter := bson.M{}
	switch actor.Role {
	case models.RoleClassC:
		filter["ward_id"] = actor.WardID
	case models.RoleClassB:
		filter["department"] = actor.Department
	}

	if status := c.Query("status"); status != "" && status != "all" {
		filter["status"] = status
	}
	if priority := c.Query("priority"); priority != "" && priority != "all" {
		filter["priority"] = priority
	}

	totalCount, err := workOrderCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to count work orders", "code": "UPSTREAM_ERROR"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := workOrderCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve work orders", "code": "UPSTREAM_ERROR"})
		return
	}
	defer cursor.Close(ctx)

	var workOrders []models.WorkOrder
	if err := cursor.All(ctx, &workOrders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode work orders", "code": "UPSTREAM_ERROR"})
		return
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"work_orders": workOrders,
		"totalCount":  totalCount,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// GetMyWorkOrders retrieves work orders assigned to the calling contractor
func GetMyWorkOrders(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"assigned_to": actor.ID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := workOrderCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve work orders", "code": "UPSTREAM_ERROR"})
		return
	}
	defer cursor.Close(ctx)

	var workOrders []models.WorkOrder
	if err := cursor.All(ctx, &workOrders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode work orders", "code": "UPSTREAM_ERROR"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "work_orders": workOrders})
}

// AssignWorkOrder dispatches a created work order to an approved contractor
func AssignWorkOrder(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		ContractorID string `json:"contractor_id" binding:"required"`
		Notes        string `json:"notes,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	contractorObjID, err := primitive.ObjectIDFromHex(input.ContractorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid contractor ID", "code": "VALIDATION_ERROR"})
		return
	}

	var contractor models.User
	err = userCollection.FindOne(ctx, bson.M{
		"_id":             contractorObjID,
		"role":            models.RoleContractor,
		"approval_status": models.ContractorApproved,
		"active":          true,
	}).Decode(&contractor)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, lifecycle.Errorf(lifecycle.CodePreconditionFailed, "contractor is not approved or does not exist"))
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve contractor", "code": "UPSTREAM_ERROR"})
		}
		return
	}

	var wo models.WorkOrder
	err = workOrderCollection.FindOne(ctx, bson.M{"work_order_id": c.Param("id")}).Decode(&wo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, lifecycle.Errorf(lifecycle.CodeNotFound, "work order not found"))
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve work order", "code": "UPSTREAM_ERROR"})
		}
		return
	}

	from := wo.Status
	now := time.Now()
	err = lifecycle.TransitionWorkOrder(actor, &wo, models.WorkOrderAssigned, lifecycle.Payload{
		ContractorID:   input.ContractorID,
		ContractorName: contractor.Name,
		Note:           input.Notes,
	}, now)
	if err != nil {
		respondError(c, err)
		return
	}

	set := bson.M{
		"status":          wo.Status,
		"updated_at":      wo.UpdatedAt,
		"assigned_to":     wo.AssignedTo,
		"assigned_by":     wo.AssignedBy,
		"contractor_name": wo.ContractorName,
		"assigned_at":     wo.AssignedAt,
	}

	if !applyWorkOrderTransition(c, ctx, &wo, from, set) {
		return
	}

	notifyUser(input.ContractorID, "New work order "+wo.WorkOrderID,
		"<p>You have been assigned work order <b>"+wo.WorkOrderID+"</b> ("+string(wo.Category)+").</p>")

	c.JSON(http.StatusOK, gin.H{"success": true, "status": wo.Status})
}

// UpdateWorkOrderStatus handles contractor self-service progress updates:
// accept/decline, en_route, on_site, in_progress, delayed, completed.
func UpdateWorkOrderStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Status           string     `json:"status" binding:"required"`
		Note             string     `json:"note,omitempty"`
		Reason           string     `json:"reason,omitempty"`
		ETA              *time.Time `json:"eta,omitempty"`
		NewETA           *time.Time `json:"new_eta,omitempty"`
		CompletionImages []string   `json:"completion_images,omitempty"`
		CompletionNotes  string     `json:"completion_notes,omitempty"`
		ActualCost       *float64   `json:"actual_cost,omitempty"`
		MaterialsUsed    []string   `json:"materials_used,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wo models.WorkOrder
	err := workOrderCollection.FindOne(ctx, bson.M{"work_order_id": c.Param("id")}).Decode(&wo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, lifecycle.Errorf(lifecycle.CodeNotFound, "work order not found"))
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve work order", "code": "UPSTREAM_ERROR"})
		}
		return
	}

	target := models.WorkOrderStatus(input.Status)
	from := wo.Status
	now := time.Now()
	err = lifecycle.TransitionWorkOrder(actor, &wo, target, lifecycle.Payload{
		Note:             input.Note,
		Reason:           input.Reason,
		ETA:              input.ETA,
		NewETA:           input.NewETA,
		CompletionImages: input.CompletionImages,
		CompletionNotes:  input.CompletionNotes,
		ActualCost:       input.ActualCost,
		MaterialsUsed:    input.MaterialsUsed,
	}, now)
	if err != nil {
		respondError(c, err)
		return
	}

	if !applyWorkOrderTransition(c, ctx, &wo, from, workOrderTransitionSet(&wo, target)) {
		return
	}

	mirrorToReport(&wo, target, now)

	c.JSON(http.StatusOK, gin.H{"success": true, "status": wo.Status})
}

// VerifyWorkOrder lets an inspecting officer approve or reject completed work
func VerifyWorkOrder(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Approved bool   `json:"approved"`
		Notes    string `json:"notes,omitempty"`
		Reason   string `json:"reason,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wo models.WorkOrder
	err := workOrderCollection.FindOne(ctx, bson.M{"work_order_id": c.Param("id")}).Decode(&wo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, lifecycle.Errorf(lifecycle.CodeNotFound, "work order not found"))
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to retrieve work order", "code": "UPSTREAM_ERROR"})
		}
		return
	}

	target := models.WorkOrderVerified
	if !input.Approved {
		target = models.WorkOrderRejected
	}

	from := wo.Status
	now := time.Now()
	err = lifecycle.TransitionWorkOrder(actor, &wo, target, lifecycle.Payload{
		VerificationNotes: input.Notes,
		Reason:            input.Reason,
	}, now)
	if err != nil {
		respondError(c, err)
		return
	}

	set := bson.M{
		"status":             wo.Status,
		"updated_at":         wo.UpdatedAt,
		"verified_by":        wo.VerifiedBy,
		"verified_at":        wo.VerifiedAt,
		"verification_notes": wo.VerificationNotes,
	}

	if !applyWorkOrderTransition(c, ctx, &wo, from, set) {
		return
	}

	if input.Approved {
		mirrorToReport(&wo, models.WorkOrderVerified, now)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": wo.Status})
}

// workOrderTransitionSet builds the $set document for the fields a transition
// touched. The timeline append rides separately as $push.
func workOrderTransitionSet(wo *models.WorkOrder, target models.WorkOrderStatus) bson.M {
	set := bson.M{
		"status":     wo.Status,
		"updated_at": wo.UpdatedAt,
	}
	switch target {
	case models.WorkOrderAssigned:
		set["assigned_to"] = wo.AssignedTo
		set["assigned_by"] = wo.AssignedBy
		set["contractor_name"] = wo.ContractorName
		set["assigned_at"] = wo.AssignedAt
	case models.WorkOrderAccepted:
		set["eta"] = wo.ETA
	case models.WorkOrderOnSite:
		set["actual_arrival"] = wo.ActualArrival
	case models.WorkOrderDelayed:
		set["delay_reason"] = wo.DelayReason
		set["eta"] = wo.ETA
	case models.WorkOrderCompleted:
		set["completion_images"] = wo.CompletionImages
		set["completion_notes"] = wo.CompletionNotes
		set["completed_at"] = wo.CompletedAt
		set["actual_cost"] = wo.ActualCost
		set["materials_used"] = wo.MaterialsUsed
	case models.WorkOrderVerified, models.WorkOrderRejected:
		set["verified_by"] = wo.VerifiedBy
		set["verified_at"] = wo.VerifiedAt
		set["verification_notes"] = wo.VerificationNotes
	case models.WorkOrderClosed:
		set["closed_at"] = wo.ClosedAt
	}
	return set
}

// applyWorkOrderTransition persists an already-validated transition with a
// conditional write pinned to the starting status. Returns false after
// responding on failure.
func applyWorkOrderTransition(c *gin.Context, ctx context.Context, wo *models.WorkOrder, from models.WorkOrderStatus, set bson.M) bool {
	entry := wo.Timeline[len(wo.Timeline)-1]

	res, err := workOrderCollection.UpdateOne(ctx,
		bson.M{"_id": wo.ID, "status": from},
		bson.M{"$set": set, "$push": bson.M{"timeline": entry}},
	)
	if err != nil {
		log.Println("Error updating work order:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update work order", "code": "UPSTREAM_ERROR"})
		return false
	}
	if res.MatchedCount == 0 {
		respondError(c, lifecycle.Errorf(lifecycle.CodeInvalidTransition, "work order was updated concurrently, retry"))
		return false
	}
	return true
}

// mirrorToReport pushes work order progress onto the linked source report as
// the system actor. Mirror failures are logged, never surfaced: the work
// order update already landed.
func mirrorToReport(wo *models.WorkOrder, target models.WorkOrderStatus, now time.Time) {
	if wo.SourceID == nil {
		return
	}
	mirror, ok := lifecycle.MirrorReportStatus(target)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var report models.Report
	if err := reportCollection.FindOne(ctx, bson.M{"report_id": *wo.SourceID}).Decode(&report); err != nil {
		log.Println("Mirror: failed to load report:", err)
		return
	}

	from := report.Status
	err := lifecycle.TransitionReport(lifecycle.SystemActor, &report, mirror, lifecycle.Payload{
		Note: "Work order " + wo.WorkOrderID + " moved to " + string(target),
	}, now)
	if err != nil {
		log.Println("Mirror: transition not applicable:", err)
		return
	}

	entry := report.Timeline[len(report.Timeline)-1]
	set := bson.M{"status": report.Status, "updated_at": report.UpdatedAt}

	res, err := reportCollection.UpdateOne(ctx,
		bson.M{"_id": report.ID, "status": from},
		bson.M{"$set": set, "$push": bson.M{"timeline": entry}},
	)
	if err != nil || res.MatchedCount == 0 {
		log.Println("Mirror: failed to update report:", err)
		return
	}

	if mirror == models.ReportVerified {
		notifyUser(report.UserID, "Report "+report.ReportID+" resolved",
			"<p>The work on your report <b>"+report.ReportID+"</b> has been verified. Please review and share feedback.</p>")
	}
}
