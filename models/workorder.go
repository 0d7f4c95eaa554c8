package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkOrderStatus enum
type WorkOrderStatus string

const (
	WorkOrderCreated    WorkOrderStatus = "created"
	WorkOrderAssigned   WorkOrderStatus = "assigned"
	WorkOrderAccepted   WorkOrderStatus = "accepted"
	WorkOrderRejected   WorkOrderStatus = "rejected"
	WorkOrderEnRoute    WorkOrderStatus = "en_route"
	WorkOrderOnSite     WorkOrderStatus = "on_site"
	WorkOrderInProgress WorkOrderStatus = "in_progress"
	WorkOrderDelayed    WorkOrderStatus = "delayed"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderVerified   WorkOrderStatus = "verified"
	WorkOrderClosed     WorkOrderStatus = "closed"
	WorkOrderReopened   WorkOrderStatus = "reopened"
)

// Priority enum
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// NormalizePriority maps input priority strings to the canonical set.
// "emergency" is accepted from older call sites and treated as critical.
func NormalizePriority(p string) (Priority, bool) {
	switch p {
	case "", "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	case "high":
		return PriorityHigh, true
	case "critical", "emergency":
		return PriorityCritical, true
	default:
		return "", false
	}
}

// WorkOrderSource enum: how the work order came to exist.
const (
	SourceManual        = "manual"
	SourceCitizenReport = "citizen_report"
	SourceSensorAlert   = "sensor_alert"
)

// WorkOrder is the dispatchable unit of field work, distinct from the
// citizen-facing report that may have spawned it.
type WorkOrder struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkOrderID string             `bson:"work_order_id" json:"work_order_id"`

	Source   string  `bson:"source" json:"source"`
	SourceID *string `bson:"source_id,omitempty" json:"source_id,omitempty"`

	Category    ReportCategory `bson:"category" json:"category"`
	Priority    Priority       `bson:"priority" json:"priority"`
	Description string         `bson:"description" json:"description"`

	Location   *Location `bson:"location,omitempty" json:"location,omitempty"`
	WardID     string    `bson:"ward_id" json:"ward_id"`
	Department string    `bson:"department" json:"department"`

	AssignedTo     *string    `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	AssignedBy     string     `bson:"assigned_by,omitempty" json:"assigned_by,omitempty"`
	ContractorName string     `bson:"contractor_name,omitempty" json:"contractor_name,omitempty"`
	AssignedAt     *time.Time `bson:"assigned_at,omitempty" json:"assigned_at,omitempty"`

	Status   WorkOrderStatus `bson:"status" json:"status"`
	Timeline []TimelineEntry `bson:"timeline" json:"timeline"`

	SLAResponseHours   int        `bson:"sla_response_hours" json:"sla_response_hours"`
	SLAResolutionHours int        `bson:"sla_resolution_hours" json:"sla_resolution_hours"`
	SLADeadline        *time.Time `bson:"sla_deadline,omitempty" json:"sla_deadline,omitempty"`
	SLABreached        bool       `bson:"sla_breached" json:"sla_breached"`

	EstimatedCost     float64  `bson:"estimated_cost" json:"estimated_cost"`
	ActualCost        *float64 `bson:"actual_cost,omitempty" json:"actual_cost,omitempty"`
	MaterialsRequired []string `bson:"materials_required" json:"materials_required"`
	MaterialsUsed     []string `bson:"materials_used" json:"materials_used"`
	EquipmentRequired []string `bson:"equipment_required" json:"equipment_required"`

	Images           []string `bson:"images" json:"images"`
	CompletionImages []string `bson:"completion_images" json:"completion_images"`
	CompletionNotes  string   `bson:"completion_notes,omitempty" json:"completion_notes,omitempty"`

	VerifiedBy        string     `bson:"verified_by,omitempty" json:"verified_by,omitempty"`
	VerifiedAt        *time.Time `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
	VerificationNotes string     `bson:"verification_notes,omitempty" json:"verification_notes,omitempty"`

	ETA           *time.Time `bson:"eta,omitempty" json:"eta,omitempty"`
	ActualArrival *time.Time `bson:"actual_arrival,omitempty" json:"actual_arrival,omitempty"`
	DelayReason   string     `bson:"delay_reason,omitempty" json:"delay_reason,omitempty"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	CreatedBy   string     `bson:"created_by" json:"created_by"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	ClosedAt    *time.Time `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
}

// NewWorkOrderCode generates a human-facing work order code, e.g. WO-2026-08-29-9C41D2.
func NewWorkOrderCode() string {
	return newRecordCode("WO")
}
