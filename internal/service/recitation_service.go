package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/tahfiz-go-api/internal/config"
	"github.com/noah-isme/tahfiz-go-api/internal/dto"
	"github.com/noah-isme/tahfiz-go-api/internal/models"
	"github.com/noah-isme/tahfiz-go-api/internal/repository"
	"github.com/noah-isme/tahfiz-go-api/pkg/quran"
)

// StudentEvaluator is the slice of the evaluation pipeline the recorder
// triggers after a session completes. Kept narrow so the recorder does not
// depend on the full evaluation service.
type StudentEvaluator interface {
	EvaluateStudent(ctx context.Context, studentID uint) (dto.EvaluationResponse, error)
}

// RecitationService records recitation attempts, classifies grades into
// qualitative ratings and drives the post-completion pipeline.
type RecitationService interface {
	Record(ctx context.Context, payload dto.RecordSessionRequest) (dto.SessionResponse, error)
	Finalize(ctx context.Context, sessionID string, payload dto.FinalizeSessionRequest) (dto.SessionResponse, error)
	Get(ctx context.Context, sessionID string) (dto.SessionResponse, error)
}

type recitationService struct {
	sessions    repository.SessionRepository
	students    repository.StudentRepository
	curricula   repository.CurriculumRepository
	progress    repository.ProgressRepository
	assignments repository.StudentCurriculumRepository
	content     DailyContentService
	evaluator   StudentEvaluator
	reference   quran.Provider
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	cfg         config.EngineConfig
	logger      zerolog.Logger
	now         func() time.Time
}

// NewRecitationService constructs the recorder. The evaluator may be nil in
// tests that exercise recording in isolation.
func NewRecitationService(
	sessions repository.SessionRepository,
	students repository.StudentRepository,
	curricula repository.CurriculumRepository,
	progress repository.ProgressRepository,
	assignments repository.StudentCurriculumRepository,
	content DailyContentService,
	evaluator StudentEvaluator,
	reference quran.Provider,
	validate *validator.Validate,
	cfg config.EngineConfig,
	logger zerolog.Logger,
) RecitationService {
	return &recitationService{
		sessions:    sessions,
		students:    students,
		curricula:   curricula,
		progress:    progress,
		assignments: assignments,
		content:     content,
		evaluator:   evaluator,
		reference:   reference,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		cfg:         cfg,
		logger:      logger.With().Str("component", "recitation_service").Logger(),
		now:         time.Now,
	}
}

func (s *recitationService) Record(ctx context.Context, payload dto.RecordSessionRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	if !s.reference.ValidateRange(payload.StartSurah, payload.StartVerse, payload.EndSurah, payload.EndVerse) {
		return dto.SessionResponse{}, ErrInvalidVerseRange
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrStudentNotFound
		}
		return dto.SessionResponse{}, err
	}

	grade, err := normalizeGrade(payload.Grade, payload.GradeScale)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	session := models.RecitationSession{
		SessionID:       uuid.NewString(),
		StudentID:       payload.StudentID,
		TeacherID:       payload.TeacherID,
		CircleID:        payload.CircleID,
		CurriculumID:    payload.CurriculumID,
		StartSurah:      payload.StartSurah,
		StartVerse:      payload.StartVerse,
		EndSurah:        payload.EndSurah,
		EndVerse:        payload.EndVerse,
		RecitationType:  payload.RecitationType,
		DurationMinutes: payload.DurationMinutes,
		Grade:           grade,
		Status:          models.SessionStatusOngoing,
		Notes:           s.sanitizer.Sanitize(strings.TrimSpace(payload.Notes)),
		TotalErrors:     len(payload.Errors),
	}
	if grade != nil {
		session.Rating = s.rating(*grade)
	}

	for _, mistake := range payload.Errors {
		severity := mistake.Severity
		if severity == "" {
			severity = models.SeverityLight
		}
		session.Errors = append(session.Errors, models.RecitationError{
			Surah:      mistake.Surah,
			Verse:      mistake.Verse,
			Word:       s.sanitizer.Sanitize(mistake.Word),
			ErrorType:  mistake.ErrorType,
			Severity:   severity,
			IsRepeated: mistake.IsRepeated,
		})
	}

	if payload.Finalize {
		completed := s.now()
		session.Status = models.SessionStatusCompleted
		session.CompletedAt = &completed
	}

	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}

	if session.IsCompleted() {
		s.afterCompletion(ctx, session)
	}

	return s.response(session), nil
}

func (s *recitationService) Finalize(ctx context.Context, sessionID string, payload dto.FinalizeSessionRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	session, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrSessionNotFound
		}
		return dto.SessionResponse{}, err
	}

	if session.IsCompleted() {
		return dto.SessionResponse{}, ErrSessionAlreadyCompleted
	}

	if payload.Grade != nil {
		grade, err := normalizeGrade(payload.Grade, payload.GradeScale)
		if err != nil {
			return dto.SessionResponse{}, err
		}
		session.Grade = grade
		session.Rating = s.rating(*grade)
	}
	if notes := strings.TrimSpace(payload.Notes); notes != "" {
		session.Notes = s.sanitizer.Sanitize(notes)
	}

	completed := s.now()
	session.Status = models.SessionStatusCompleted
	session.CompletedAt = &completed

	if err := s.sessions.Update(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}

	s.afterCompletion(ctx, session)

	return s.response(session), nil
}

func (s *recitationService) Get(ctx context.Context, sessionID string) (dto.SessionResponse, error) {
	session, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrSessionNotFound
		}
		return dto.SessionResponse{}, err
	}

	return s.response(session), nil
}

// afterCompletion runs the ordered post-session pipeline: advance daily
// tracking, update plan progress, then re-evaluate the student. Failures
// here are logged, not returned: the session itself is already durable.
func (s *recitationService) afterCompletion(ctx context.Context, session models.RecitationSession) {
	if session.RecitationType == models.RecitationTypeMemorization {
		end := quran.Position{Surah: session.EndSurah, Verse: session.EndVerse}
		if err := s.content.Advance(ctx, session.StudentID, end); err != nil && !errors.Is(err, ErrAssignmentNotFound) {
			s.logger.Error().Err(err).Uint("student_id", session.StudentID).Msg("failed to advance daily tracking")
		}
	}

	s.updatePlanProgress(ctx, session)

	if s.evaluator != nil {
		if _, err := s.evaluator.EvaluateStudent(ctx, session.StudentID); err != nil && !errors.Is(err, ErrAssignmentNotFound) {
			s.logger.Warn().Err(err).Uint("student_id", session.StudentID).Msg("post-session evaluation failed")
		}
	}
}

// updatePlanProgress lazily creates the progress row for the plan the
// session touched and recomputes the derived completion percentage.
func (s *recitationService) updatePlanProgress(ctx context.Context, session models.RecitationSession) {
	if session.CurriculumID == nil {
		return
	}

	assignment, err := s.assignments.GetActiveByStudent(ctx, session.StudentID)
	if err != nil || assignment.CurriculumID != *session.CurriculumID {
		return
	}

	plans, err := s.curricula.ListPlans(ctx, *session.CurriculumID, planTypeFor(session.RecitationType))
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list plans for progress update")
		return
	}

	for _, plan := range plans {
		if !rangeContains(plan, session.StartSurah, session.StartVerse) {
			continue
		}

		progress, err := s.progress.GetOrCreate(ctx, assignment.ID, plan.ID, dateOnly(s.now()))
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to load progress row")
			return
		}

		if progress.Status != models.ProgressStatusCompleted && sessionCovers(session, plan) {
			completed := s.now()
			progress.Status = models.ProgressStatusCompleted
			progress.CompletionDate = &completed
			if err := s.progress.Update(ctx, &progress); err != nil {
				s.logger.Warn().Err(err).Msg("failed to update progress row")
				return
			}
		}

		s.recomputeCompletionPct(ctx, assignment)
		return
	}
}

// recomputeCompletionPct derives completed-plans / total-plans for the
// assignment and rewrites it on every progress row, so siblings never hold a
// stale percentage. Runs after the touched row's status is persisted.
func (s *recitationService) recomputeCompletionPct(ctx context.Context, assignment models.StudentCurriculum) {
	total, done, err := s.progress.CountByAssignment(ctx, assignment.ID)
	if err != nil || total == 0 {
		return
	}

	denominator := total
	if planCount, err := s.curricula.CountPlans(ctx, assignment.CurriculumID); err == nil && planCount > 0 {
		denominator = planCount
	}

	pct := round1(float64(done) / float64(denominator) * 100)
	if err := s.progress.SetCompletionPct(ctx, assignment.ID, pct); err != nil {
		s.logger.Warn().Err(err).Msg("failed to update progress percentage")
	}
}

func (s *recitationService) rating(grade float64) string {
	switch {
	case grade >= s.cfg.GradeExcellent:
		return models.RatingExcellent
	case grade >= s.cfg.GradeVeryGood:
		return models.RatingVeryGood
	case grade >= s.cfg.GradeGood:
		return models.RatingGood
	case grade >= s.cfg.GradeAcceptable:
		return models.RatingAcceptable
	default:
		return models.RatingWeak
	}
}

func (s *recitationService) response(session models.RecitationSession) dto.SessionResponse {
	content := s.reference.FormatRange(session.StartSurah, session.StartVerse, session.EndSurah, session.EndVerse)
	return dto.NewSessionResponse(session, content)
}

// normalizeGrade converts the caller's scale to the canonical 0-100 scale.
func normalizeGrade(grade *float64, scale string) (*float64, error) {
	if grade == nil {
		return nil, nil
	}

	value := *grade
	if scale == dto.GradeScaleTen {
		if value > 10 {
			return nil, ErrInvalidGrade
		}
		value *= 10
	}
	if value < 0 || value > 100 {
		return nil, ErrInvalidGrade
	}

	return &value, nil
}

// planTypeFor maps a recitation type to the plan type it progresses. New
// material is recorded against lesson plans.
func planTypeFor(recitationType string) string {
	if recitationType == models.RecitationTypeMemorization {
		return models.PlanTypeLesson
	}
	return recitationType
}

func rangeContains(plan models.CurriculumPlan, surah, verse int) bool {
	afterStart := surah > plan.StartSurah || (surah == plan.StartSurah && verse >= plan.StartVerse)
	beforeEnd := surah < plan.EndSurah || (surah == plan.EndSurah && verse <= plan.EndVerse)
	return afterStart && beforeEnd
}

func sessionCovers(session models.RecitationSession, plan models.CurriculumPlan) bool {
	return session.EndSurah > plan.EndSurah ||
		(session.EndSurah == plan.EndSurah && session.EndVerse >= plan.EndVerse)
}
