package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/config"
	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/models"
	"github.com/noah-isme/tahfiz-go-api/internal/observability"
	"github.com/noah-isme/tahfiz-go-api/internal/repository"
)

const alertsSubject = "tahfiz.alerts.created"

// AlertService owns the alert state machine: creation with cooldown
// de-duplication, teacher review, the atomic curriculum transition, and
// dismissal.
type AlertService interface {
	RaiseFromEvaluation(ctx context.Context, assignment models.StudentCurriculum, analysis dto.PerformanceAnalysis, readiness dto.ReadinessResult) ([]models.CurriculumAlert, error)
	Decide(ctx context.Context, alertID uint, payload dto.DecideAlertRequest) (dto.AppliedResult, error)
	Dismiss(ctx context.Context, alertID uint, reviewerID uint, notes string) (dto.AlertResponse, error)
	ListPending(ctx context.Context, filter repository.AlertFilter) ([]dto.AlertResponse, error)
}

type alertService struct {
	alerts      repository.AlertRepository
	assignments repository.StudentCurriculumRepository
	curricula   repository.CurriculumRepository
	students    repository.StudentRepository
	content     DailyContentService
	notifier    Notifier
	nats        *nats.Conn
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	cfg         config.EngineConfig
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAlertService constructs the alert manager. The NATS connection and
// notifier may be nil; event fan-out is then skipped.
func NewAlertService(
	alerts repository.AlertRepository,
	assignments repository.StudentCurriculumRepository,
	curricula repository.CurriculumRepository,
	students repository.StudentRepository,
	content DailyContentService,
	notifier Notifier,
	natsConn *nats.Conn,
	validate *validator.Validate,
	cfg config.EngineConfig,
	logger zerolog.Logger,
) AlertService {
	return &alertService{
		alerts:      alerts,
		assignments: assignments,
		curricula:   curricula,
		students:    students,
		content:     content,
		notifier:    notifier,
		nats:        natsConn,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		cfg:         cfg,
		logger:      logger.With().Str("component", "alert_service").Logger(),
		now:         time.Now,
	}
}

// RaiseFromEvaluation converts scorer output into alert records. An alert of
// a given type is suppressed while a pending one of the same type is younger
// than the cooldown window.
func (s *alertService) RaiseFromEvaluation(ctx context.Context, assignment models.StudentCurriculum, analysis dto.PerformanceAnalysis, readiness dto.ReadinessResult) ([]models.CurriculumAlert, error) {
	now := s.now()
	snapshot := models.PerformanceSnapshot{
		ReadinessScore:      readiness.Score,
		ConsecutiveSessions: assignment.ConsecutiveDays,
		CompletionPct:       assignment.CompletionPct,
		AverageScore:        analysis.AverageScore,
	}

	var candidates []models.CurriculumAlert

	switch {
	case readiness.Ready && readiness.Score >= 85:
		candidates = append(candidates, s.candidate(assignment, models.AlertTypeLevelProgression, models.PriorityHigh, snapshot,
			"الطالب جاهز للانتقال إلى المستوى التالي بدرجة جاهزية عالية"))
	case readiness.Ready:
		candidates = append(candidates, s.candidate(assignment, models.AlertTypeLevelProgression, models.PriorityMedium, snapshot,
			"الطالب جاهز للانتقال إلى المستوى التالي"))
	case readiness.Tier == dto.TierNeedsImprovement:
		candidates = append(candidates, s.candidate(assignment, models.AlertTypePerformance, models.PriorityMedium, snapshot,
			"أداء الطالب يحتاج إلى تحسين قبل النظر في الانتقال"))
	}

	if analysis.Trend == dto.TrendDeclining {
		priority := models.PriorityHigh
		if readiness.Score < 30 {
			priority = models.PriorityUrgent
		}
		candidates = append(candidates, s.candidate(assignment, models.AlertTypeAttentionNeeded, priority, snapshot,
			"مستوى أداء الطالب في تراجع ويحتاج إلى متابعة"))
	}

	if assignment.CompletionPct >= 100 {
		candidates = append(candidates, s.candidate(assignment, models.AlertTypeCompletionMilestone, models.PriorityLow, snapshot,
			"أتم الطالب المنهج الحالي"))
	}

	var created []models.CurriculumAlert
	for i := range candidates {
		candidate := candidates[i]

		recent, err := s.alerts.HasRecentPending(ctx, candidate.StudentID, candidate.AlertType, now.Add(-s.cfg.AlertCooldown))
		if err != nil {
			return created, err
		}
		if recent {
			continue
		}

		if candidate.AlertType == models.AlertTypeLevelProgression {
			s.suggestNext(ctx, assignment, &candidate)
		}

		if err := s.alerts.Create(ctx, &candidate); err != nil {
			return created, err
		}

		observability.AlertsCreated().WithLabelValues(candidate.AlertType, candidate.Priority).Inc()
		s.publish(candidate)
		s.notifyTeacher(ctx, candidate)
		created = append(created, candidate)
	}

	return created, nil
}

// Decide applies a teacher decision. Approve with a target curriculum also
// performs the atomic transition; a lost race returns ErrAlertConflict and
// leaves the alert reviewed.
func (s *alertService) Decide(ctx context.Context, alertID uint, payload dto.DecideAlertRequest) (dto.AppliedResult, error) {
	tracer := otel.Tracer("github.com/noah-isme/tahfiz-go-api/internal/service/alert")
	ctx, span := tracer.Start(ctx, "alert.decide")
	span.SetAttributes(
		attribute.Int64("alert.id", int64(alertID)),
		attribute.String("alert.decision", payload.Decision),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AppliedResult{}, err
	}

	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AppliedResult{}, ErrAlertNotFound
		}
		return dto.AppliedResult{}, err
	}

	if alert.IsTerminal() {
		return dto.AppliedResult{}, ErrAlertNotActionable
	}

	now := s.now()
	if alert.Status == models.AlertStatusPending {
		alert.Status = models.AlertStatusReviewed
		alert.Decision = payload.Decision
		alert.ReviewedAt = &now
		reviewer := payload.ReviewerID
		alert.ReviewedBy = &reviewer
		alert.ReviewNotes = s.sanitizer.Sanitize(strings.TrimSpace(payload.Notes))
		// Compare-and-set on pending: a competing reviewer who got there
		// first wins, this call reports the conflict.
		if err := s.alerts.MarkReviewed(ctx, &alert); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				span.SetStatus(codes.Error, "review_conflict")
				return dto.AppliedResult{}, ErrAlertConflict
			}
			return dto.AppliedResult{}, err
		}
	}

	if payload.Decision != models.DecisionApprove {
		return dto.AppliedResult{Alert: dto.NewAlertResponse(alert)}, nil
	}

	targetCurriculum := payload.TargetCurriculumID
	if targetCurriculum == nil {
		targetCurriculum = alert.SuggestedCurriculumID
	}
	if targetCurriculum == nil {
		return dto.AppliedResult{}, ErrMissingTargetCurriculum
	}

	targetLevel := payload.TargetLevelID
	if targetLevel == nil {
		targetLevel = alert.SuggestedLevelID
	}

	if _, err := s.curricula.GetByID(ctx, *targetCurriculum); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AppliedResult{}, ErrCurriculumNotFound
		}
		return dto.AppliedResult{}, err
	}

	next := models.StudentCurriculum{
		StudentID:    alert.StudentID,
		CurriculumID: *targetCurriculum,
		LevelID:      targetLevel,
		CurrentPage:  1,
		CurrentSurah: 1,
		CurrentAyah:  1,
	}

	assignment, err := s.alerts.ApplyTransition(ctx, alert.ID, next, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "apply_conflict")
			return dto.AppliedResult{}, ErrAlertConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply_failed")
		return dto.AppliedResult{}, fmt.Errorf("apply curriculum transition: %w", err)
	}

	alert.Status = models.AlertStatusApplied
	alert.AppliedAt = &now

	if err := s.content.ResetDailyTracking(ctx, alert.StudentID); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", alert.StudentID).Msg("failed to reset daily tracking after transition")
	}

	s.notifyStudent(ctx, alert)

	span.SetAttributes(attribute.Int64("alert.target_curriculum", int64(*targetCurriculum)))

	return dto.AppliedResult{
		Alert:      dto.NewAlertResponse(alert),
		Assignment: dto.NewAssignmentResponse(assignment),
	}, nil
}

// Dismiss closes the alert without side effects. Allowed from pending or
// reviewed.
func (s *alertService) Dismiss(ctx context.Context, alertID uint, reviewerID uint, notes string) (dto.AlertResponse, error) {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AlertResponse{}, ErrAlertNotFound
		}
		return dto.AlertResponse{}, err
	}

	if alert.IsTerminal() {
		return dto.AlertResponse{}, ErrAlertNotActionable
	}

	now := s.now()
	alert.Status = models.AlertStatusDismissed
	if alert.ReviewedAt == nil {
		alert.ReviewedAt = &now
	}
	reviewer := reviewerID
	alert.ReviewedBy = &reviewer
	if notes != "" {
		alert.ReviewNotes = s.sanitizer.Sanitize(strings.TrimSpace(notes))
	}

	if err := s.alerts.Update(ctx, &alert); err != nil {
		return dto.AlertResponse{}, err
	}

	return dto.NewAlertResponse(alert), nil
}

func (s *alertService) ListPending(ctx context.Context, filter repository.AlertFilter) ([]dto.AlertResponse, error) {
	alerts, err := s.alerts.ListPending(ctx, filter, s.now())
	if err != nil {
		return nil, err
	}

	return dto.NewAlertResponseSlice(alerts), nil
}

func (s *alertService) candidate(assignment models.StudentCurriculum, alertType, priority string, snapshot models.PerformanceSnapshot, message string) models.CurriculumAlert {
	now := s.now()
	expires := now.Add(s.cfg.AlertExpiry)

	return models.CurriculumAlert{
		StudentID:               assignment.StudentID,
		TeacherID:               assignment.TeacherID,
		CurrentCurriculumID:     assignment.CurriculumID,
		CurrentLevelID:          assignment.LevelID,
		AlertType:               alertType,
		Priority:                priority,
		Message:                 message,
		Snapshot:                snapshot,
		Status:                  models.AlertStatusPending,
		RequiresTeacherApproval: true,
		TriggeredAt:             now,
		ExpiresAt:               &expires,
	}
}

// suggestNext fills the suggested curriculum/level for a progression alert
// from the level ordering. Failure to resolve a next level leaves the
// suggestion empty; the teacher picks a target at review time.
func (s *alertService) suggestNext(ctx context.Context, assignment models.StudentCurriculum, alert *models.CurriculumAlert) {
	currentOrder := 0
	if assignment.LevelID != nil {
		levels, err := s.curricula.ListLevels(ctx, assignment.CurriculumID)
		if err != nil {
			return
		}
		for _, level := range levels {
			if level.ID == *assignment.LevelID {
				currentOrder = level.Order
				break
			}
		}
	}

	next, err := s.curricula.NextLevel(ctx, assignment.CurriculumID, currentOrder)
	if err != nil {
		return
	}

	curriculum := assignment.CurriculumID
	levelID := next.ID
	alert.SuggestedCurriculumID = &curriculum
	alert.SuggestedLevelID = &levelID
}

func (s *alertService) publish(alert models.CurriculumAlert) {
	if s.nats == nil {
		return
	}

	payload, err := json.Marshal(dto.NewAlertResponse(alert))
	if err != nil {
		return
	}
	if err := s.nats.Publish(alertsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish alert event")
	}
}

func (s *alertService) notifyTeacher(ctx context.Context, alert models.CurriculumAlert) {
	if s.notifier == nil {
		return
	}

	vars := map[string]string{
		"alert_type": alert.AlertType,
		"priority":   alert.Priority,
		"student_id": fmt.Sprintf("%d", alert.StudentID),
	}
	if !s.notifier.Notify(ctx, fmt.Sprintf("teacher:%d", alert.TeacherID), "alert_created", vars) {
		observability.NotificationFailures().Inc()
		s.logger.Warn().Uint("alert_id", alert.ID).Msg("teacher notification failed")
	}
}

func (s *alertService) notifyStudent(ctx context.Context, alert models.CurriculumAlert) {
	if s.notifier == nil {
		return
	}

	student, err := s.students.GetByID(ctx, alert.StudentID)
	if err != nil {
		return
	}

	recipient := student.Phone
	if recipient == "" {
		recipient = student.GuardianPhone
	}
	if recipient == "" {
		return
	}

	vars := map[string]string{"student_name": student.Name}
	if !s.notifier.Notify(ctx, recipient, "curriculum_transition", vars) {
		observability.NotificationFailures().Inc()
		s.logger.Warn().Uint("student_id", alert.StudentID).Msg("student notification failed")
	}
}
