package lifecycle

import (
	"time"

	"civicdesk-be/models"
)

// slaWindow holds the response and resolution targets for a category, in hours.
type slaWindow struct {
	ResponseHours   int
	ResolutionHours int
}

// slaConfig is the per-category SLA table. Deadlines computed from it are
// display-only; no scheduler enforces them.
var slaConfig = map[models.ReportCategory]slaWindow{
	models.Pothole:           {6, 48},
	models.RoadCrack:         {24, 168},
	models.WaterLeak:         {2, 24},
	models.SewageOverflow:    {4, 24},
	models.Garbage:           {12, 72},
	models.Streetlight:       {24, 72},
	models.TreeFallen:        {24, 72},
	models.Encroachment:      {48, 168},
	models.Drainage:          {6, 48},
	models.BuildingViolation: {72, 336},
	models.NoisePollution:    {24, 72},
	models.AirPollution:      {48, 168},
	models.IllegalParking:    {4, 24},
	models.PublicSafety:      {1, 12},
	models.OtherCategory:     {48, 168},
}

// severityMultipliers scale SLA windows: higher severity means a tighter deadline.
var severityMultipliers = map[models.Severity]float64{
	models.SeverityLow:      1.5,
	models.SeverityMedium:   1.0,
	models.SeverityHigh:     0.75,
	models.SeverityCritical: 0.5,
}

// DeadlineKind selects the response or resolution SLA window.
type DeadlineKind int

const (
	ResponseDeadline DeadlineKind = iota
	ResolutionDeadline
)

// SLAHours returns the base SLA window in hours for a category.
func SLAHours(category models.ReportCategory, kind DeadlineKind) int {
	window, ok := slaConfig[category]
	if !ok {
		window = slaConfig[models.OtherCategory]
	}
	if kind == ResponseDeadline {
		return window.ResponseHours
	}
	return window.ResolutionHours
}

// SLADeadline computes the severity-adjusted deadline for a report created at
// the given time.
func SLADeadline(category models.ReportCategory, severity models.Severity, createdAt time.Time, kind DeadlineKind) time.Time {
	multiplier, ok := severityMultipliers[severity]
	if !ok {
		multiplier = severityMultipliers[models.SeverityMedium]
	}
	hours := float64(SLAHours(category, kind)) * multiplier
	return createdAt.Add(time.Duration(hours * float64(time.Hour)))
}
