package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tahfiz-go-api/internal/config"
	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/models"
	"github.com/noah-isme/tahfiz-go-api/internal/repository"
)

type alertFixture struct {
	svc         *alertService
	alerts      *fakeAlertRepo
	assignments *fakeAssignmentRepo
	curricula   *fakeCurriculumRepo
	content     *fakeContentService
	notifier    *fakeNotifier
}

func newAlertFixture(t *testing.T) alertFixture {
	t.Helper()
	assignments := newFakeAssignmentRepo()
	alerts := newFakeAlertRepo(assignments)
	curricula := newFakeCurriculumRepo()
	students := newFakeStudentRepo(models.Student{ID: 1, Name: "أحمد", Phone: "+9665xxxxxxx", IsActive: true})
	content := &fakeContentService{}
	notifier := &fakeNotifier{ok: true}

	svc := NewAlertService(
		alerts,
		assignments,
		curricula,
		students,
		content,
		notifier,
		nil,
		validator.New(validator.WithRequiredStructEnabled()),
		config.DefaultEngineConfig(),
		testLogger(),
	).(*alertService)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }

	return alertFixture{
		svc:         svc,
		alerts:      alerts,
		assignments: assignments,
		curricula:   curricula,
		content:     content,
		notifier:    notifier,
	}
}

func readyReadiness(score float64) dto.ReadinessResult {
	return dto.ReadinessResult{Score: score, Ready: score >= 65, Tier: dto.TierExcellent}
}

func alertAssignment() models.StudentCurriculum {
	return models.StudentCurriculum{
		ID:            1,
		StudentID:     1,
		CurriculumID:  3,
		TeacherID:     9,
		Status:        models.AssignmentStatusInProgress,
		CompletionPct: 80,
	}
}

func TestRaiseProgressionAlertForReadyStudent(t *testing.T) {
	fx := newAlertFixture(t)

	created, err := fx.svc.RaiseFromEvaluation(context.Background(), alertAssignment(), dto.PerformanceAnalysis{AverageScore: 92}, readyReadiness(90))
	require.NoError(t, err)

	require.Len(t, created, 1)
	alert := created[0]
	require.Equal(t, models.AlertTypeLevelProgression, alert.AlertType)
	require.Equal(t, models.PriorityHigh, alert.Priority)
	require.Equal(t, models.AlertStatusPending, alert.Status)
	require.True(t, alert.RequiresTeacherApproval)
	require.InDelta(t, 90.0, alert.Snapshot.ReadinessScore, 0.01)
	require.NotNil(t, alert.ExpiresAt)

	// Teacher was notified about the new alert.
	require.Equal(t, []string{"teacher:9"}, fx.notifier.recipients)
	require.Equal(t, []string{"alert_created"}, fx.notifier.templates)
}

func TestRaiseSuppresssesDuplicateWithinCooldown(t *testing.T) {
	fx := newAlertFixture(t)

	created, err := fx.svc.RaiseFromEvaluation(context.Background(), alertAssignment(), dto.PerformanceAnalysis{}, readyReadiness(90))
	require.NoError(t, err)
	require.Len(t, created, 1)

	again, err := fx.svc.RaiseFromEvaluation(context.Background(), alertAssignment(), dto.PerformanceAnalysis{}, readyReadiness(90))
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestRaiseAfterCooldownExpires(t *testing.T) {
	fx := newAlertFixture(t)

	_, err := fx.svc.RaiseFromEvaluation(context.Background(), alertAssignment(), dto.PerformanceAnalysis{}, readyReadiness(90))
	require.NoError(t, err)

	fx.svc.now = func() time.Time { return time.Date(2026, 3, 23, 12, 0, 0, 0, time.UTC) }
	again, err := fx.svc.RaiseFromEvaluation(context.Background(), alertAssignment(), dto.PerformanceAnalysis{}, readyReadiness(90))
	require.NoError(t, err)
	require.Len(t, again, 1)
}

func TestRaiseUrgentAttentionForDecliningWeakStudent(t *testing.T) {
	fx := newAlertFixture(t)

	created, err := fx.svc.RaiseFromEvaluation(context.Background(), alertAssignment(),
		dto.PerformanceAnalysis{Trend: dto.TrendDeclining},
		dto.ReadinessResult{Score: 25, Tier: dto.TierNotReady})
	require.NoError(t, err)

	require.Len(t, created, 1)
	require.Equal(t, models.AlertTypeAttentionNeeded, created[0].AlertType)
	require.Equal(t, models.PriorityUrgent, created[0].Priority)
}

func TestRaiseCompletionMilestone(t *testing.T) {
	fx := newAlertFixture(t)

	assignment := alertAssignment()
	assignment.CompletionPct = 100

	created, err := fx.svc.RaiseFromEvaluation(context.Background(), assignment,
		dto.PerformanceAnalysis{}, dto.ReadinessResult{Score: 55, Tier: dto.TierNeedsImprovement})
	require.NoError(t, err)

	require.Len(t, created, 2)
	types := []string{created[0].AlertType, created[1].AlertType}
	require.Contains(t, types, models.AlertTypePerformance)
	require.Contains(t, types, models.AlertTypeCompletionMilestone)
}

func TestRaiseSuggestsNextLevel(t *testing.T) {
	fx := newAlertFixture(t)

	curriculum := models.Curriculum{
		Name: "منهج المستويات",
		Type: models.CurriculumTypeTeacherLed,
		Levels: []models.CurriculumLevel{
			{Order: 1, Name: "المستوى الأول"},
			{Order: 2, Name: "المستوى الثاني"},
		},
	}
	require.NoError(t, fx.curricula.Create(context.Background(), &curriculum))

	assignment := alertAssignment()
	assignment.CurriculumID = curriculum.ID
	levelID := curriculum.Levels[0].ID
	assignment.LevelID = &levelID

	created, err := fx.svc.RaiseFromEvaluation(context.Background(), assignment, dto.PerformanceAnalysis{}, readyReadiness(90))
	require.NoError(t, err)

	require.Len(t, created, 1)
	require.NotNil(t, created[0].SuggestedCurriculumID)
	require.Equal(t, curriculum.ID, *created[0].SuggestedCurriculumID)
	require.NotNil(t, created[0].SuggestedLevelID)
	require.Equal(t, curriculum.Levels[1].ID, *created[0].SuggestedLevelID)
}

// seedPendingAlert raises a progression alert for a student whose active
// assignment lives in the fixture's assignment repo.
func seedPendingAlert(t *testing.T, fx alertFixture) models.CurriculumAlert {
	t.Helper()

	curriculum := seedCurriculum(t, fx.curricula)

	assignment := alertAssignment()
	assignment.ID = 0
	assignment.CurriculumID = curriculum.ID
	require.NoError(t, fx.assignments.Create(context.Background(), &assignment))

	created, err := fx.svc.RaiseFromEvaluation(context.Background(), assignment, dto.PerformanceAnalysis{}, readyReadiness(90))
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func TestDecideApproveAppliesTransition(t *testing.T) {
	fx := newAlertFixture(t)
	alert := seedPendingAlert(t, fx)

	target := models.Curriculum{Name: "منهج متقدم", Type: models.CurriculumTypeTeacherLed}
	require.NoError(t, fx.curricula.Create(context.Background(), &target))

	result, err := fx.svc.Decide(context.Background(), alert.ID, dto.DecideAlertRequest{
		Decision:           models.DecisionApprove,
		ReviewerID:         9,
		TargetCurriculumID: &target.ID,
	})
	require.NoError(t, err)

	require.Equal(t, models.AlertStatusApplied, result.Alert.Status)
	require.Equal(t, target.ID, result.Assignment.CurriculumID)
	require.Equal(t, 1, result.Assignment.CurrentPage)
	require.Equal(t, 1, result.Assignment.CurrentSurah)
	require.Equal(t, 1, result.Assignment.CurrentAyah)

	// Daily tracking is reset and the student is notified on their phone.
	require.Equal(t, []uint{1}, fx.content.resetCalls)
	require.Contains(t, fx.notifier.recipients, "+9665xxxxxxx")

	// The previous position is preserved for rollback.
	stored, err := fx.assignments.GetActiveByStudent(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored.PreviousSnapshot.TransitionedAt)
}

func TestDecideRejectLeavesAssignmentUntouched(t *testing.T) {
	fx := newAlertFixture(t)
	alert := seedPendingAlert(t, fx)

	result, err := fx.svc.Decide(context.Background(), alert.ID, dto.DecideAlertRequest{
		Decision:   models.DecisionReject,
		ReviewerID: 9,
		Notes:      "يحتاج مزيدا من المراجعة",
	})
	require.NoError(t, err)

	require.Equal(t, models.AlertStatusReviewed, result.Alert.Status)
	require.Equal(t, models.DecisionReject, result.Alert.Decision)
	require.Empty(t, fx.content.resetCalls)

	stored, err := fx.assignments.GetActiveByStudent(context.Background(), 1)
	require.NoError(t, err)
	require.Nil(t, stored.PreviousSnapshot.TransitionedAt)
}

func TestDecideApproveWithoutTargetFails(t *testing.T) {
	fx := newAlertFixture(t)
	alert := seedPendingAlert(t, fx)

	_, err := fx.svc.Decide(context.Background(), alert.ID, dto.DecideAlertRequest{
		Decision:   models.DecisionApprove,
		ReviewerID: 9,
	})
	require.ErrorIs(t, err, ErrMissingTargetCurriculum)
}

func TestDecideOnAppliedAlertConflicts(t *testing.T) {
	fx := newAlertFixture(t)
	alert := seedPendingAlert(t, fx)

	target := models.Curriculum{Name: "منهج متقدم", Type: models.CurriculumTypeTeacherLed}
	require.NoError(t, fx.curricula.Create(context.Background(), &target))

	payload := dto.DecideAlertRequest{
		Decision:           models.DecisionApprove,
		ReviewerID:         9,
		TargetCurriculumID: &target.ID,
	}
	_, err := fx.svc.Decide(context.Background(), alert.ID, payload)
	require.NoError(t, err)

	_, err = fx.svc.Decide(context.Background(), alert.ID, payload)
	require.ErrorIs(t, err, ErrAlertNotActionable)
}

func TestDecideApproveConcurrentOnlyOneApplies(t *testing.T) {
	fx := newAlertFixture(t)
	alert := seedPendingAlert(t, fx)

	target := models.Curriculum{Name: "منهج متقدم", Type: models.CurriculumTypeTeacherLed}
	require.NoError(t, fx.curricula.Create(context.Background(), &target))

	payload := dto.DecideAlertRequest{
		Decision:           models.DecisionApprove,
		ReviewerID:         9,
		TargetCurriculumID: &target.ID,
	}

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.svc.Decide(context.Background(), alert.ID, payload)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.True(t,
			errors.Is(err, ErrAlertConflict) || errors.Is(err, ErrAlertNotActionable),
			"unexpected error: %v", err)
		conflicted++
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, conflicted)

	// The transition landed exactly once.
	stored, err := fx.alerts.GetByID(context.Background(), alert.ID)
	require.NoError(t, err)
	require.Equal(t, models.AlertStatusApplied, stored.Status)

	assignment, err := fx.assignments.GetActiveByStudent(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, target.ID, assignment.CurriculumID)
	require.Equal(t, []uint{1}, fx.content.resetCalls)
}

func TestDecideApproveLosingApplyRaceConflicts(t *testing.T) {
	fx := newAlertFixture(t)
	alert := seedPendingAlert(t, fx)

	target := models.Curriculum{Name: "منهج متقدم", Type: models.CurriculumTypeTeacherLed}
	require.NoError(t, fx.curricula.Create(context.Background(), &target))

	// The alert is already reviewed; a competing approver applies it between
	// this call's read and its compare-and-set.
	decision := models.DecisionApprove
	reviewed := alert
	reviewed.Status = models.AlertStatusReviewed
	reviewed.Decision = decision
	require.NoError(t, fx.alerts.MarkReviewed(context.Background(), &reviewed))

	fx.alerts.afterGet = func() {
		fx.alerts.mu.Lock()
		stored := fx.alerts.alerts[alert.ID]
		stored.Status = models.AlertStatusApplied
		fx.alerts.alerts[alert.ID] = stored
		fx.alerts.mu.Unlock()
	}

	_, err := fx.svc.Decide(context.Background(), alert.ID, dto.DecideAlertRequest{
		Decision:           models.DecisionApprove,
		ReviewerID:         9,
		TargetCurriculumID: &target.ID,
	})
	require.ErrorIs(t, err, ErrAlertConflict)
	require.Empty(t, fx.content.resetCalls)
}

func TestDismissPendingAlert(t *testing.T) {
	fx := newAlertFixture(t)
	alert := seedPendingAlert(t, fx)

	dismissed, err := fx.svc.Dismiss(context.Background(), alert.ID, 9, "تمت المتابعة شفهيا")
	require.NoError(t, err)

	require.Equal(t, models.AlertStatusDismissed, dismissed.Status)
	require.NotNil(t, dismissed.ReviewedBy)
	require.Equal(t, uint(9), *dismissed.ReviewedBy)

	_, err = fx.svc.Dismiss(context.Background(), alert.ID, 9, "")
	require.ErrorIs(t, err, ErrAlertNotActionable)
}

func TestListPendingExcludesExpired(t *testing.T) {
	fx := newAlertFixture(t)
	seedPendingAlert(t, fx)

	pending, err := fx.svc.ListPending(context.Background(), repository.AlertFilter{})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// Jump past the expiry horizon.
	fx.svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	pending, err = fx.svc.ListPending(context.Background(), repository.AlertFilter{})
	require.NoError(t, err)
	require.Empty(t, pending)
}
