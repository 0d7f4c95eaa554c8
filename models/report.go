package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportStatus enum
type ReportStatus string

const (
	ReportSubmitted  ReportStatus = "submitted"
	ReportAccepted   ReportStatus = "accepted"
	ReportRejected   ReportStatus = "rejected"
	ReportAssigned   ReportStatus = "assigned"
	ReportInProgress ReportStatus = "in_progress"
	ReportCompleted  ReportStatus = "completed"
	ReportVerified   ReportStatus = "verified"
	ReportClosed     ReportStatus = "closed"
)

// ReportCategory enum
type ReportCategory string

const (
	Pothole           ReportCategory = "pothole"
	RoadCrack         ReportCategory = "road_crack"
	WaterLeak         ReportCategory = "water_leak"
	SewageOverflow    ReportCategory = "sewage_overflow"
	Garbage           ReportCategory = "garbage"
	Streetlight       ReportCategory = "streetlight"
	TreeFallen        ReportCategory = "tree_fallen"
	Encroachment      ReportCategory = "encroachment"
	Drainage          ReportCategory = "drainage"
	BuildingViolation ReportCategory = "building_violation"
	NoisePollution    ReportCategory = "noise_pollution"
	AirPollution      ReportCategory = "air_pollution"
	IllegalParking    ReportCategory = "illegal_parking"
	PublicSafety      ReportCategory = "public_safety"
	OtherCategory     ReportCategory = "other"
)

// CategoryDepartments maps each report category to its owning department.
var CategoryDepartments = map[ReportCategory]string{
	Pothole:           "roads_traffic",
	RoadCrack:         "roads_traffic",
	WaterLeak:         "water_sewage",
	SewageOverflow:    "water_sewage",
	Garbage:           "public_health",
	Streetlight:       "roads_traffic",
	TreeFallen:        "gardens",
	Encroachment:      "estate",
	Drainage:          "hydraulic",
	BuildingViolation: "planning",
	NoisePollution:    "environment",
	AirPollution:      "environment",
	IllegalParking:    "roads_traffic",
	PublicSafety:      "security",
	OtherCategory:     "general_admin",
}

// DepartmentForCategory returns the owning department for a category,
// defaulting to general_admin for unknown values.
func DepartmentForCategory(category ReportCategory) string {
	if dept, ok := CategoryDepartments[category]; ok {
		return dept
	}
	return "general_admin"
}

// IsValidCategory reports whether the category is one of the known values.
func IsValidCategory(category string) bool {
	_, ok := CategoryDepartments[ReportCategory(category)]
	return ok
}

// Severity enum
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// NormalizeSeverity maps input severity strings to the canonical set.
// "emergency" appears in older clients and is treated as critical.
func NormalizeSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "", "medium":
		return SeverityMedium, true
	case "low":
		return SeverityLow, true
	case "high":
		return SeverityHigh, true
	case "critical", "emergency":
		return SeverityCritical, true
	default:
		return "", false
	}
}

// Location is the geographic position a report or work order refers to.
type Location struct {
	Lat      float64  `bson:"lat" json:"lat"`
	Lng      float64  `bson:"lng" json:"lng"`
	Accuracy *float64 `bson:"accuracy,omitempty" json:"accuracy,omitempty"`
	Address  string   `bson:"address,omitempty" json:"address,omitempty"`
}

// Feedback is the citizen's closing feedback on a resolved report.
type Feedback struct {
	UserID      string    `bson:"user_id" json:"user_id"`
	Rating      int       `bson:"rating" json:"rating"`
	Resolution  string    `bson:"resolution" json:"resolution"`
	Comment     string    `bson:"comment,omitempty" json:"comment,omitempty"`
	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`
}

// Report represents a citizen-submitted civic complaint.
type Report struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReportID  string             `bson:"report_id" json:"report_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Anonymous bool               `bson:"anonymous" json:"anonymous"`

	Location Location       `bson:"location" json:"location"`
	WardID   string         `bson:"ward_id" json:"ward_id"`
	Category ReportCategory `bson:"category" json:"category"`
	Severity Severity       `bson:"severity" json:"severity"`

	Description string   `bson:"description" json:"description"`
	Images      []string `bson:"images" json:"images"`

	// AI triage fields, populated when a report arrives through the
	// automated intake channel.
	AICategory   *string  `bson:"ai_category,omitempty" json:"ai_category,omitempty"`
	AIConfidence *float64 `bson:"ai_confidence,omitempty" json:"ai_confidence,omitempty"`
	AIReasoning  *string  `bson:"ai_reasoning,omitempty" json:"ai_reasoning,omitempty"`

	Status   ReportStatus    `bson:"status" json:"status"`
	Timeline []TimelineEntry `bson:"timeline" json:"timeline"`

	SLAResponseDeadline   time.Time `bson:"sla_response_deadline" json:"sla_response_deadline"`
	SLAResolutionDeadline time.Time `bson:"sla_resolution_deadline" json:"sla_resolution_deadline"`
	SLABreached           bool      `bson:"sla_breached" json:"sla_breached"`

	ValidatedBy     string     `bson:"validated_by,omitempty" json:"validated_by,omitempty"`
	ValidatedAt     *time.Time `bson:"validated_at,omitempty" json:"validated_at,omitempty"`
	ValidationNotes string     `bson:"validation_notes,omitempty" json:"validation_notes,omitempty"`

	// WorkOrderID is write-once: once a work order is linked it is never cleared.
	WorkOrderID *string   `bson:"work_order_id,omitempty" json:"work_order_id,omitempty"`
	Feedback    *Feedback `bson:"feedback,omitempty" json:"feedback,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	ClosedAt  *time.Time `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
}

// Department returns the department that owns this report's category.
func (r *Report) Department() string {
	return DepartmentForCategory(r.Category)
}

// NewReportCode generates a human-facing report code, e.g. RPT-2026-08-29-3FA8B1.
func NewReportCode() string {
	return newRecordCode("RPT")
}

func newRecordCode(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("2006-01-02"), suffix)
}
