package lifecycle

import (
	"testing"
	"time"

	"civicdesk-be/models"

	"github.com/stretchr/testify/assert"
)

func TestSLAHours(t *testing.T) {
	assert.Equal(t, 6, SLAHours(models.Pothole, ResponseDeadline))
	assert.Equal(t, 48, SLAHours(models.Pothole, ResolutionDeadline))
	assert.Equal(t, 1, SLAHours(models.PublicSafety, ResponseDeadline))
	assert.Equal(t, 336, SLAHours(models.BuildingViolation, ResolutionDeadline))
}

func TestSLAHoursUnknownCategoryFallsBack(t *testing.T) {
	assert.Equal(t, SLAHours(models.OtherCategory, ResponseDeadline),
		SLAHours(models.ReportCategory("meteor_strike"), ResponseDeadline))
	assert.Equal(t, SLAHours(models.OtherCategory, ResolutionDeadline),
		SLAHours(models.ReportCategory("meteor_strike"), ResolutionDeadline))
}

func TestSLADeadlineSeverityMultiplier(t *testing.T) {
	created := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)

	// Pothole response window is 6h; medium keeps it, critical halves it,
	// low stretches it by half.
	assert.Equal(t, created.Add(6*time.Hour),
		SLADeadline(models.Pothole, models.SeverityMedium, created, ResponseDeadline))
	assert.Equal(t, created.Add(3*time.Hour),
		SLADeadline(models.Pothole, models.SeverityCritical, created, ResponseDeadline))
	assert.Equal(t, created.Add(9*time.Hour),
		SLADeadline(models.Pothole, models.SeverityLow, created, ResponseDeadline))
}

func TestSLADeadlineUnknownSeverityDefaultsToMedium(t *testing.T) {
	created := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	assert.Equal(t,
		SLADeadline(models.WaterLeak, models.SeverityMedium, created, ResolutionDeadline),
		SLADeadline(models.WaterLeak, models.Severity("weird"), created, ResolutionDeadline))
}

func TestSLADeadlineOrdering(t *testing.T) {
	created := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	for category := range slaConfig {
		response := SLADeadline(category, models.SeverityHigh, created, ResponseDeadline)
		resolution := SLADeadline(category, models.SeverityHigh, created, ResolutionDeadline)
		assert.Truef(t, response.Before(resolution),
			"response deadline should precede resolution for %s", category)
	}
}
