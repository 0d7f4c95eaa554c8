package lifecycle

import (
	"time"

	"civicdesk-be/models"
)

// Actor is whoever is attempting a transition. System is set for internal
// updates that mirror work-order progress onto the linked report.
type Actor struct {
	ID         string
	Role       models.Role
	WardID     string
	Department string
	System     bool
}

// SystemActor performs mirrored and automatic transitions.
var SystemActor = Actor{ID: "system", System: true}

// Payload carries the transition-specific inputs. Fields irrelevant to the
// edge being taken are ignored.
type Payload struct {
	Note   string
	Reason string

	// Report accepted -> assigned
	WorkOrderID string

	// Work order assignment
	ContractorID   string
	ContractorName string

	// Work order completion
	CompletionImages []string
	CompletionNotes  string
	ActualCost       *float64
	MaterialsUsed    []string

	// Contractor progress
	ETA    *time.Time
	NewETA *time.Time

	// Verification
	VerificationNotes string

	// Citizen feedback on close
	Rating     int
	Resolution string
	Comment    string
}

// officerInScope applies the ward/department scope rule. Class A officers
// bypass the scope check unconditionally.
func officerInScope(a Actor, wardID, department string) bool {
	switch a.Role {
	case models.RoleClassA:
		return true
	case models.RoleClassB:
		return a.Department == department
	case models.RoleClassC:
		return a.WardID == wardID
	}
	return false
}

// edgeRule describes who may take one transition edge and what it requires.
type edgeRule struct {
	officers   bool // scoped officer classes (class_a bypasses scope)
	owner      bool // the citizen owning the report
	contractor bool // the contractor in assigned_to
	system     bool // internal mirrored updates
}

func (r edgeRule) permits(a Actor, ownerID string, assignedTo *string) bool {
	if a.System {
		return r.system
	}
	if r.officers && a.Role.IsOfficer() {
		return true
	}
	if r.owner && a.Role == models.RoleCitizen && a.ID == ownerID {
		return true
	}
	if r.contractor && a.Role == models.RoleContractor &&
		assignedTo != nil && *assignedTo == a.ID {
		return true
	}
	return false
}

// reportEdges is the transition table for reports. rejected is absorbing and
// reachable only from submitted.
var reportEdges = map[models.ReportStatus]map[models.ReportStatus]edgeRule{
	models.ReportSubmitted: {
		models.ReportAccepted: {officers: true},
		models.ReportRejected: {officers: true},
	},
	models.ReportAccepted: {
		models.ReportAssigned: {officers: true, system: true},
	},
	models.ReportAssigned: {
		models.ReportInProgress: {officers: true, system: true},
	},
	models.ReportInProgress: {
		models.ReportCompleted: {officers: true, system: true},
	},
	models.ReportCompleted: {
		models.ReportVerified: {officers: true, system: true},
	},
	models.ReportVerified: {
		models.ReportClosed: {owner: true, system: true},
	},
}

// workOrderEdges is the transition table for work orders. delayed and
// reopened are exceptional side-states re-entering the main path; verified
// without a reopen, closed, and rejected are terminal.
var workOrderEdges = map[models.WorkOrderStatus]map[models.WorkOrderStatus]edgeRule{
	models.WorkOrderCreated: {
		models.WorkOrderAssigned: {officers: true},
	},
	models.WorkOrderAssigned: {
		models.WorkOrderAccepted:   {contractor: true, officers: true},
		models.WorkOrderRejected:   {contractor: true},
		models.WorkOrderInProgress: {contractor: true, officers: true},
	},
	models.WorkOrderAccepted: {
		models.WorkOrderEnRoute:    {contractor: true},
		models.WorkOrderOnSite:     {contractor: true},
		models.WorkOrderInProgress: {contractor: true},
	},
	models.WorkOrderEnRoute: {
		models.WorkOrderOnSite:  {contractor: true},
		models.WorkOrderDelayed: {contractor: true},
	},
	models.WorkOrderOnSite: {
		models.WorkOrderInProgress: {contractor: true},
	},
	models.WorkOrderDelayed: {
		models.WorkOrderEnRoute:    {contractor: true},
		models.WorkOrderOnSite:     {contractor: true},
		models.WorkOrderInProgress: {contractor: true},
	},
	models.WorkOrderInProgress: {
		models.WorkOrderCompleted: {contractor: true},
		models.WorkOrderDelayed:   {contractor: true},
	},
	models.WorkOrderCompleted: {
		models.WorkOrderVerified: {officers: true},
		models.WorkOrderRejected: {officers: true},
		models.WorkOrderReopened: {officers: true},
	},
	models.WorkOrderVerified: {
		models.WorkOrderClosed:   {officers: true, system: true},
		models.WorkOrderReopened: {officers: true},
	},
	models.WorkOrderReopened: {
		models.WorkOrderInProgress: {contractor: true},
	},
}

func validReportStatus(s models.ReportStatus) bool {
	switch s {
	case models.ReportSubmitted, models.ReportAccepted, models.ReportRejected,
		models.ReportAssigned, models.ReportInProgress, models.ReportCompleted,
		models.ReportVerified, models.ReportClosed:
		return true
	}
	return false
}

func validWorkOrderStatus(s models.WorkOrderStatus) bool {
	switch s {
	case models.WorkOrderCreated, models.WorkOrderAssigned, models.WorkOrderAccepted,
		models.WorkOrderRejected, models.WorkOrderEnRoute, models.WorkOrderOnSite,
		models.WorkOrderInProgress, models.WorkOrderDelayed, models.WorkOrderCompleted,
		models.WorkOrderVerified, models.WorkOrderClosed, models.WorkOrderReopened:
		return true
	}
	return false
}

// CanTransitionReport checks reachability, actor role, and officer scope for a
// report transition without applying it.
func CanTransitionReport(actor Actor, report *models.Report, target models.ReportStatus) error {
	if !validReportStatus(target) {
		return Errorf(CodeInvalidTransition, "unknown report status %q", target)
	}
	rule, ok := reportEdges[report.Status][target]
	if !ok {
		return Errorf(CodeInvalidTransition, "cannot move report from %s to %s", report.Status, target)
	}
	if !rule.permits(actor, report.UserID, nil) {
		return Errorf(CodeUnauthorized, "role %s may not move a report from %s to %s", actor.Role, report.Status, target)
	}
	if !actor.System && actor.Role.IsOfficer() && !officerInScope(actor, report.WardID, report.Department()) {
		return Errorf(CodeOutOfScope, "report %s is outside the officer's scope", report.ReportID)
	}
	return nil
}

// TransitionReport validates and applies a report transition: the status
// change, its side effects, and exactly one timeline append.
func TransitionReport(actor Actor, report *models.Report, target models.ReportStatus, p Payload, now time.Time) error {
	if err := CanTransitionReport(actor, report, target); err != nil {
		return err
	}

	note := p.Note
	switch target {
	case models.ReportRejected:
		if p.Reason == "" {
			return Errorf(CodeValidationError, "a rejection reason is required")
		}
		report.ValidatedBy = actor.ID
		report.ValidatedAt = &now
		report.ValidationNotes = p.Reason
		if note == "" {
			note = "Report rejected: " + p.Reason
		}
	case models.ReportAccepted:
		report.ValidatedBy = actor.ID
		report.ValidatedAt = &now
		report.ValidationNotes = p.Note
		if note == "" {
			note = "Report validated"
		}
	case models.ReportAssigned:
		if p.WorkOrderID == "" {
			return Errorf(CodePreconditionFailed, "a work order is required to assign a report")
		}
		if report.WorkOrderID != nil && *report.WorkOrderID != p.WorkOrderID {
			return Errorf(CodePreconditionFailed, "report %s is already linked to work order %s", report.ReportID, *report.WorkOrderID)
		}
		woID := p.WorkOrderID
		report.WorkOrderID = &woID
		if note == "" {
			note = "Work order " + woID + " created and assigned"
		}
	case models.ReportVerified:
		if note == "" {
			note = "Work verified and approved"
		}
	case models.ReportClosed:
		if p.Rating != 0 && (p.Rating < 1 || p.Rating > 5) {
			return Errorf(CodeValidationError, "feedback rating must be between 1 and 5")
		}
		if p.Rating != 0 {
			report.Feedback = &models.Feedback{
				UserID:      actor.ID,
				Rating:      p.Rating,
				Resolution:  p.Resolution,
				Comment:     p.Comment,
				SubmittedAt: now,
			}
		}
		report.ClosedAt = &now
		if note == "" {
			note = "Case closed"
		}
	}
	if note == "" {
		note = "Status updated to " + string(target)
	}

	report.Status = target
	report.UpdatedAt = now
	report.Timeline = append(report.Timeline, models.TimelineEntry{
		Status:    string(target),
		Timestamp: now,
		Actor:     actor.ID,
		Note:      note,
	})
	return nil
}

// CanTransitionWorkOrder checks reachability, actor role, and officer scope
// for a work order transition without applying it.
func CanTransitionWorkOrder(actor Actor, wo *models.WorkOrder, target models.WorkOrderStatus) error {
	if !validWorkOrderStatus(target) {
		return Errorf(CodeInvalidTransition, "unknown work order status %q", target)
	}
	rule, ok := workOrderEdges[wo.Status][target]
	if !ok {
		return Errorf(CodeInvalidTransition, "cannot move work order from %s to %s", wo.Status, target)
	}
	if !rule.permits(actor, "", wo.AssignedTo) {
		return Errorf(CodeUnauthorized, "role %s may not move a work order from %s to %s", actor.Role, wo.Status, target)
	}
	if !actor.System && actor.Role.IsOfficer() && !officerInScope(actor, wo.WardID, wo.Department) {
		return Errorf(CodeOutOfScope, "work order %s is outside the officer's scope", wo.WorkOrderID)
	}
	return nil
}

// TransitionWorkOrder validates and applies a work order transition: the
// status change, its side effects, and exactly one timeline append.
func TransitionWorkOrder(actor Actor, wo *models.WorkOrder, target models.WorkOrderStatus, p Payload, now time.Time) error {
	if err := CanTransitionWorkOrder(actor, wo, target); err != nil {
		return err
	}

	note := p.Note
	switch target {
	case models.WorkOrderAssigned:
		if p.ContractorID == "" {
			return Errorf(CodePreconditionFailed, "a contractor is required to assign a work order")
		}
		contractorID := p.ContractorID
		wo.AssignedTo = &contractorID
		wo.ContractorName = p.ContractorName
		wo.AssignedBy = actor.ID
		wo.AssignedAt = &now
		if note == "" {
			note = "Assigned to contractor: " + p.ContractorName
		}
	case models.WorkOrderRejected:
		if wo.Status == models.WorkOrderAssigned && p.Reason == "" {
			return Errorf(CodeValidationError, "a reason is required to decline an assignment")
		}
		if wo.Status == models.WorkOrderCompleted {
			reason := p.Reason
			if reason == "" {
				reason = "Quality standards not met"
			}
			wo.VerifiedBy = actor.ID
			wo.VerifiedAt = &now
			wo.VerificationNotes = p.VerificationNotes
			if note == "" {
				note = "Work rejected: " + reason
			}
		} else if note == "" {
			note = "Assignment declined: " + p.Reason
		}
	case models.WorkOrderAccepted:
		if p.ETA != nil {
			wo.ETA = p.ETA
		}
	case models.WorkOrderOnSite:
		wo.ActualArrival = &now
	case models.WorkOrderDelayed:
		wo.DelayReason = p.Reason
		if wo.DelayReason == "" {
			wo.DelayReason = "Not specified"
		}
		if p.NewETA != nil {
			wo.ETA = p.NewETA
		}
		if note == "" {
			note = "Work delayed: " + wo.DelayReason
		}
	case models.WorkOrderCompleted:
		if len(wo.CompletionImages)+len(p.CompletionImages) == 0 {
			return Errorf(CodePreconditionFailed, "at least one completion image is required")
		}
		wo.CompletionImages = append(wo.CompletionImages, p.CompletionImages...)
		wo.CompletionNotes = p.CompletionNotes
		wo.CompletedAt = &now
		if p.ActualCost != nil {
			wo.ActualCost = p.ActualCost
		}
		if len(p.MaterialsUsed) > 0 {
			wo.MaterialsUsed = append(wo.MaterialsUsed, p.MaterialsUsed...)
		}
	case models.WorkOrderVerified:
		wo.VerifiedBy = actor.ID
		wo.VerifiedAt = &now
		wo.VerificationNotes = p.VerificationNotes
		if note == "" {
			note = "Work verified and approved"
		}
	case models.WorkOrderClosed:
		wo.ClosedAt = &now
	case models.WorkOrderReopened:
		if note == "" {
			note = "Work order reopened: " + p.Reason
		}
	}
	if note == "" {
		note = "Status updated to " + string(target)
	}

	wo.Status = target
	wo.UpdatedAt = now
	wo.Timeline = append(wo.Timeline, models.TimelineEntry{
		Status:    string(target),
		Timestamp: now,
		Actor:     actor.ID,
		Note:      note,
	})
	return nil
}

// MirrorReportStatus maps a work order status to the report status a linked
// report should mirror, if any.
func MirrorReportStatus(target models.WorkOrderStatus) (models.ReportStatus, bool) {
	switch target {
	case models.WorkOrderInProgress:
		return models.ReportInProgress, true
	case models.WorkOrderCompleted:
		return models.ReportCompleted, true
	case models.WorkOrderVerified:
		return models.ReportVerified, true
	}
	return "", false
}
