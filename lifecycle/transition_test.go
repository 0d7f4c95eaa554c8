package lifecycle

import (
	"testing"
	"time"

	"civicdesk-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func newSubmittedReport(ward string) *models.Report {
	return &models.Report{
		ReportID: "RPT-2026-08-29-TEST01",
		UserID:   "citizen-1",
		WardID:   ward,
		Category: models.Pothole,
		Severity: models.SeverityHigh,
		Status:   models.ReportSubmitted,
		Timeline: []models.TimelineEntry{{
			Status:    string(models.ReportSubmitted),
			Timestamp: testNow.Add(-time.Hour),
			Actor:     "citizen-1",
			Note:      "Report submitted",
		}},
	}
}

func newWorkOrder(status models.WorkOrderStatus, contractorID string) *models.WorkOrder {
	wo := &models.WorkOrder{
		WorkOrderID: "WO-2026-08-29-TEST01",
		Category:    models.Pothole,
		Priority:    models.PriorityHigh,
		WardID:      "ward_a",
		Department:  "roads_traffic",
		Status:      status,
		Timeline: []models.TimelineEntry{{
			Status:    string(models.WorkOrderCreated),
			Timestamp: testNow.Add(-time.Hour),
			Actor:     "officer-1",
			Note:      "Work order created",
		}},
	}
	if contractorID != "" {
		wo.AssignedTo = &contractorID
	}
	return wo
}

var (
	wardAOfficer = Actor{ID: "officer-c", Role: models.RoleClassC, WardID: "ward_a"}
	wardBOfficer = Actor{ID: "officer-c2", Role: models.RoleClassC, WardID: "ward_b"}
	deptOfficer  = Actor{ID: "officer-b", Role: models.RoleClassB, Department: "roads_traffic"}
	cityOfficer  = Actor{ID: "officer-a", Role: models.RoleClassA}
	citizen      = Actor{ID: "citizen-1", Role: models.RoleCitizen}
	contractor   = Actor{ID: "contractor-1", Role: models.RoleContractor}
)

func TestReportAcceptByScopedOfficer(t *testing.T) {
	report := newSubmittedReport("ward_a")

	err := TransitionReport(wardAOfficer, report, models.ReportAccepted, Payload{}, testNow)
	require.NoError(t, err)

	assert.Equal(t, models.ReportAccepted, report.Status)
	assert.Len(t, report.Timeline, 2)
	assert.Equal(t, string(models.ReportAccepted), report.Timeline[1].Status)
	assert.Equal(t, wardAOfficer.ID, report.Timeline[1].Actor)
	assert.Equal(t, wardAOfficer.ID, report.ValidatedBy)
	require.NotNil(t, report.ValidatedAt)
}

func TestReportAcceptOutOfScope(t *testing.T) {
	report := newSubmittedReport("ward_a")

	err := TransitionReport(wardBOfficer, report, models.ReportAccepted, Payload{}, testNow)
	require.Error(t, err)
	assert.Equal(t, CodeOutOfScope, CodeOf(err))

	// Record must be untouched on failure.
	assert.Equal(t, models.ReportSubmitted, report.Status)
	assert.Len(t, report.Timeline, 1)
}

func TestReportAcceptDepartmentScope(t *testing.T) {
	report := newSubmittedReport("ward_a") // pothole -> roads_traffic

	err := TransitionReport(deptOfficer, report, models.ReportAccepted, Payload{}, testNow)
	require.NoError(t, err)

	outOfDept := Actor{ID: "officer-b2", Role: models.RoleClassB, Department: "water_sewage"}
	other := newSubmittedReport("ward_a")
	err = TransitionReport(outOfDept, other, models.ReportAccepted, Payload{}, testNow)
	assert.Equal(t, CodeOutOfScope, CodeOf(err))
}

func TestClassABypassesScope(t *testing.T) {
	report := newSubmittedReport("ward_z")

	err := TransitionReport(cityOfficer, report, models.ReportAccepted, Payload{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.ReportAccepted, report.Status)
}

func TestReportRejectRequiresReason(t *testing.T) {
	report := newSubmittedReport("ward_a")

	err := TransitionReport(wardAOfficer, report, models.ReportRejected, Payload{}, testNow)
	require.Error(t, err)
	assert.Equal(t, CodeValidationError, CodeOf(err))
	assert.Equal(t, models.ReportSubmitted, report.Status)

	err = TransitionReport(wardAOfficer, report, models.ReportRejected, Payload{Reason: "duplicate report"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.ReportRejected, report.Status)
	assert.Equal(t, "duplicate report", report.ValidationNotes)
}

func TestReportRejectedOnlyFromSubmitted(t *testing.T) {
	report := newSubmittedReport("ward_a")
	require.NoError(t, TransitionReport(wardAOfficer, report, models.ReportAccepted, Payload{}, testNow))

	err := TransitionReport(wardAOfficer, report, models.ReportRejected, Payload{Reason: "no"}, testNow)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestReportTransitionUnauthorizedRoles(t *testing.T) {
	cases := []struct {
		name   string
		actor  Actor
		target models.ReportStatus
	}{
		{"citizen cannot validate", citizen, models.ReportAccepted},
		{"contractor cannot validate", contractor, models.ReportAccepted},
		{"citizen cannot reject", citizen, models.ReportRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := newSubmittedReport("ward_a")
			err := TransitionReport(tc.actor, report, tc.target, Payload{Reason: "x"}, testNow)
			require.Error(t, err)
			assert.Equal(t, CodeUnauthorized, CodeOf(err))
			assert.Equal(t, models.ReportSubmitted, report.Status)
			assert.Len(t, report.Timeline, 1)
		})
	}
}

func TestReportUnknownStatus(t *testing.T) {
	report := newSubmittedReport("ward_a")
	err := TransitionReport(wardAOfficer, report, models.ReportStatus("bogus"), Payload{}, testNow)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestReportWorkOrderLinkIsWriteOnce(t *testing.T) {
	report := newSubmittedReport("ward_a")
	require.NoError(t, TransitionReport(wardAOfficer, report, models.ReportAccepted, Payload{}, testNow))

	err := TransitionReport(wardAOfficer, report, models.ReportAssigned, Payload{}, testNow)
	assert.Equal(t, CodePreconditionFailed, CodeOf(err))

	require.NoError(t, TransitionReport(wardAOfficer, report, models.ReportAssigned,
		Payload{WorkOrderID: "WO-2026-08-29-AAAAAA"}, testNow))
	require.NotNil(t, report.WorkOrderID)
	assert.Equal(t, "WO-2026-08-29-AAAAAA", *report.WorkOrderID)
}

func TestReportFeedbackRatingRange(t *testing.T) {
	report := newSubmittedReport("ward_a")
	report.Status = models.ReportVerified

	err := TransitionReport(citizen, report, models.ReportClosed, Payload{Rating: 9}, testNow)
	assert.Equal(t, CodeValidationError, CodeOf(err))
	assert.Equal(t, models.ReportVerified, report.Status)

	require.NoError(t, TransitionReport(citizen, report, models.ReportClosed,
		Payload{Rating: 4, Resolution: "resolved", Comment: "thanks"}, testNow))
	require.NotNil(t, report.Feedback)
	assert.Equal(t, 4, report.Feedback.Rating)
	require.NotNil(t, report.ClosedAt)
}

func TestReportCloseOnlyByOwnerOrSystem(t *testing.T) {
	report := newSubmittedReport("ward_a")
	report.Status = models.ReportVerified

	stranger := Actor{ID: "citizen-2", Role: models.RoleCitizen}
	err := TransitionReport(stranger, report, models.ReportClosed, Payload{}, testNow)
	assert.Equal(t, CodeUnauthorized, CodeOf(err))

	require.NoError(t, TransitionReport(SystemActor, report, models.ReportClosed, Payload{}, testNow))
	assert.Equal(t, models.ReportClosed, report.Status)
}

func TestWorkOrderAssignRequiresContractor(t *testing.T) {
	wo := newWorkOrder(models.WorkOrderCreated, "")

	err := TransitionWorkOrder(wardAOfficer, wo, models.WorkOrderAssigned, Payload{}, testNow)
	assert.Equal(t, CodePreconditionFailed, CodeOf(err))
	assert.Nil(t, wo.AssignedTo)

	require.NoError(t, TransitionWorkOrder(wardAOfficer, wo, models.WorkOrderAssigned, Payload{
		ContractorID:   "contractor-1",
		ContractorName: "Acme Roadworks",
	}, testNow))
	require.NotNil(t, wo.AssignedTo)
	assert.Equal(t, "contractor-1", *wo.AssignedTo)
	assert.Equal(t, "Acme Roadworks", wo.ContractorName)
	assert.Equal(t, wardAOfficer.ID, wo.AssignedBy)
	require.NotNil(t, wo.AssignedAt)
}

func TestWorkOrderCompletionRequiresImage(t *testing.T) {
	wo := newWorkOrder(models.WorkOrderInProgress, "contractor-1")

	err := TransitionWorkOrder(contractor, wo, models.WorkOrderCompleted, Payload{}, testNow)
	require.Error(t, err)
	assert.Equal(t, CodePreconditionFailed, CodeOf(err))
	assert.Equal(t, models.WorkOrderInProgress, wo.Status)
	assert.Nil(t, wo.CompletedAt)

	require.NoError(t, TransitionWorkOrder(contractor, wo, models.WorkOrderCompleted, Payload{
		CompletionImages: []string{"https://storage.example/wo/1.jpg"},
	}, testNow))
	assert.Equal(t, models.WorkOrderCompleted, wo.Status)
	require.NotNil(t, wo.CompletedAt)
	assert.Equal(t, testNow, *wo.CompletedAt)
	assert.Len(t, wo.CompletionImages, 1)
}

func TestWorkOrderOnlyAssignedContractorMayProgress(t *testing.T) {
	wo := newWorkOrder(models.WorkOrderAccepted, "contractor-1")

	other := Actor{ID: "contractor-2", Role: models.RoleContractor}
	err := TransitionWorkOrder(other, wo, models.WorkOrderEnRoute, Payload{}, testNow)
	assert.Equal(t, CodeUnauthorized, CodeOf(err))
	assert.Equal(t, models.WorkOrderAccepted, wo.Status)

	require.NoError(t, TransitionWorkOrder(contractor, wo, models.WorkOrderEnRoute, Payload{}, testNow))
	assert.Equal(t, models.WorkOrderEnRoute, wo.Status)
}

func TestWorkOrderDeclineRequiresReason(t *testing.T) {
	wo := newWorkOrder(models.WorkOrderAssigned, "contractor-1")

	err := TransitionWorkOrder(contractor, wo, models.WorkOrderRejected, Payload{}, testNow)
	assert.Equal(t, CodeValidationError, CodeOf(err))

	require.NoError(t, TransitionWorkOrder(contractor, wo, models.WorkOrderRejected,
		Payload{Reason: "equipment unavailable"}, testNow))
	assert.Equal(t, models.WorkOrderRejected, wo.Status)
}

func TestWorkOrderOnSiteRecordsArrival(t *testing.T) {
	wo := newWorkOrder(models.WorkOrderEnRoute, "contractor-1")

	require.NoError(t, TransitionWorkOrder(contractor, wo, models.WorkOrderOnSite, Payload{}, testNow))
	require.NotNil(t, wo.ActualArrival)
	assert.Equal(t, testNow, *wo.ActualArrival)
}

func TestWorkOrderDelayReEntersMainPath(t *testing.T) {
	wo := newWorkOrder(models.WorkOrderEnRoute, "contractor-1")
	eta := testNow.Add(4 * time.Hour)

	require.NoError(t, TransitionWorkOrder(contractor, wo, models.WorkOrderDelayed,
		Payload{Reason: "road blocked", NewETA: &eta}, testNow))
	assert.Equal(t, "road blocked", wo.DelayReason)
	require.NotNil(t, wo.ETA)

	require.NoError(t, TransitionWorkOrder(contractor, wo, models.WorkOrderEnRoute, Payload{}, testNow))
	assert.Equal(t, models.WorkOrderEnRoute, wo.Status)
}

func TestWorkOrderVerificationByOfficer(t *testing.T) {
	wo := newWorkOrder(models.WorkOrderCompleted, "contractor-1")

	// The contractor cannot verify their own work.
	err := TransitionWorkOrder(contractor, wo, models.WorkOrderVerified, Payload{}, testNow)
	assert.Equal(t, CodeUnauthorized, CodeOf(err))

	require.NoError(t, TransitionWorkOrder(deptOfficer, wo, models.WorkOrderVerified,
		Payload{VerificationNotes: "good work"}, testNow))
	assert.Equal(t, deptOfficer.ID, wo.VerifiedBy)
	require.NotNil(t, wo.VerifiedAt)
	assert.Equal(t, "good work", wo.VerificationNotes)
}

func TestWorkOrderFailedVerification(t *testing.T) {
	wo := newWorkOrder(models.WorkOrderCompleted, "contractor-1")

	require.NoError(t, TransitionWorkOrder(deptOfficer, wo, models.WorkOrderRejected, Payload{}, testNow))
	assert.Equal(t, models.WorkOrderRejected, wo.Status)
	assert.Equal(t, deptOfficer.ID, wo.VerifiedBy)
	assert.Contains(t, wo.Timeline[len(wo.Timeline)-1].Note, "Quality standards not met")
}

func TestWorkOrderReopenFlow(t *testing.T) {
	wo := newWorkOrder(models.WorkOrderVerified, "contractor-1")

	require.NoError(t, TransitionWorkOrder(wardAOfficer, wo, models.WorkOrderReopened,
		Payload{Reason: "pothole resurfaced"}, testNow))
	assert.Equal(t, models.WorkOrderReopened, wo.Status)

	require.NoError(t, TransitionWorkOrder(contractor, wo, models.WorkOrderInProgress, Payload{}, testNow))
	assert.Equal(t, models.WorkOrderInProgress, wo.Status)
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, status := range []models.WorkOrderStatus{models.WorkOrderClosed, models.WorkOrderRejected} {
		assert.Empty(t, workOrderEdges[status], "expected %s to be terminal", status)
	}
	for _, status := range []models.ReportStatus{models.ReportClosed, models.ReportRejected} {
		assert.Empty(t, reportEdges[status], "expected %s to be terminal", status)
	}
}

func TestTimelineLastEntryMatchesStatus(t *testing.T) {
	report := newSubmittedReport("ward_a")

	steps := []struct {
		actor   Actor
		target  models.ReportStatus
		payload Payload
	}{
		{wardAOfficer, models.ReportAccepted, Payload{}},
		{wardAOfficer, models.ReportAssigned, Payload{WorkOrderID: "WO-1"}},
		{SystemActor, models.ReportInProgress, Payload{}},
		{SystemActor, models.ReportCompleted, Payload{}},
		{SystemActor, models.ReportVerified, Payload{}},
		{citizen, models.ReportClosed, Payload{Rating: 5}},
	}

	for i, step := range steps {
		require.NoError(t, TransitionReport(step.actor, report, step.target, step.payload, testNow))
		last := report.Timeline[len(report.Timeline)-1]
		assert.Equal(t, string(report.Status), last.Status)
		assert.Len(t, report.Timeline, i+2)
	}
}

func TestMirrorReportStatus(t *testing.T) {
	cases := []struct {
		wo     models.WorkOrderStatus
		report models.ReportStatus
		ok     bool
	}{
		{models.WorkOrderInProgress, models.ReportInProgress, true},
		{models.WorkOrderCompleted, models.ReportCompleted, true},
		{models.WorkOrderVerified, models.ReportVerified, true},
		{models.WorkOrderEnRoute, "", false},
		{models.WorkOrderDelayed, "", false},
	}

	for _, tc := range cases {
		got, ok := MirrorReportStatus(tc.wo)
		assert.Equal(t, tc.ok, ok)
		if tc.ok {
			assert.Equal(t, tc.report, got)
		}
	}
}

// Scenario: a citizen submits a pothole report in ward_a, the ward officer
// accepts it and spawns a work order, and the report follows the work order
// through to closure.
func TestScenarioReportLifecycle(t *testing.T) {
	report := newSubmittedReport("ward_a")
	assert.Equal(t, models.ReportSubmitted, report.Status)

	require.NoError(t, TransitionReport(wardAOfficer, report, models.ReportAccepted, Payload{}, testNow))
	assert.Len(t, report.Timeline, 2)

	require.NoError(t, TransitionReport(wardAOfficer, report, models.ReportAssigned,
		Payload{WorkOrderID: "WO-2026-08-29-XYZ123"}, testNow))
	assert.Equal(t, models.ReportAssigned, report.Status)
	require.NotNil(t, report.WorkOrderID)
}

// Scenario: the assigned contractor moves a work order to in_progress, fails
// to complete without photos, then succeeds with proof of work.
func TestScenarioContractorCompletion(t *testing.T) {
	wo := newWorkOrder(models.WorkOrderAssigned, "contractor-1")

	require.NoError(t, TransitionWorkOrder(contractor, wo, models.WorkOrderInProgress, Payload{}, testNow))

	err := TransitionWorkOrder(contractor, wo, models.WorkOrderCompleted, Payload{}, testNow)
	assert.Equal(t, CodePreconditionFailed, CodeOf(err))

	require.NoError(t, TransitionWorkOrder(contractor, wo, models.WorkOrderCompleted,
		Payload{CompletionImages: []string{"https://storage.example/proof.jpg"}}, testNow))
	assert.Equal(t, models.WorkOrderCompleted, wo.Status)
	require.NotNil(t, wo.CompletedAt)
}

// Scenario: an officer scoped to ward_b cannot touch a ward_a report.
func TestScenarioOutOfScopeOfficer(t *testing.T) {
	report := newSubmittedReport("ward_a")

	err := TransitionReport(wardBOfficer, report, models.ReportAccepted, Payload{}, testNow)
	assert.Equal(t, CodeOutOfScope, CodeOf(err))
	assert.Equal(t, models.ReportSubmitted, report.Status)
	assert.Len(t, report.Timeline, 1)
}
